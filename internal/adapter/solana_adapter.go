package adapter

import (
	"context"
	"fmt"
	"math"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/wallet-fortune/internal/models"
)

// wrappedSolMint is the canonical wrapped SOL mint address
const wrappedSolMint = "So11111111111111111111111111111111111111112"

// knownMints maps SPL mint addresses to their symbol and decimals. Unlisted
// mints are still surfaced, with decimals resolved from the mint's supply
// record and a truncated mint string standing in for the symbol.
var knownMints = map[string]struct {
	symbol   string
	name     string
	decimals int
}{
	wrappedSolMint: {"SOL", "Wrapped SOL", 9},
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": {"USDC", "USD Coin", 6},
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": {"USDT", "Tether USD", 6},
	"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {"BONK", "Bonk", 5},
	"EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm": {"WIF", "dogwifhat", 6},
	"JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN":  {"JUP", "Jupiter", 6},
	"4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R": {"RAY", "Raydium", 6},
	"orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE":  {"ORCA", "Orca", 6},
	"HZ1JovNiVvGrGNiiYvEozEVgZ58xaU3RKwX8eACQBCt3": {"PYTH", "Pyth Network", 6},
	"jtojtomepa8beP8AuQc6eXt5FriJwfFMwQx2v2f9mCL":  {"JTO", "Jito", 9},
	"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So":  {"MSOL", "Marinade staked SOL", 9},
}

// SolanaAdapter implements ChainProvider for Solana wallets over plain RPC
type SolanaAdapter struct {
	client *rpc.Client
	now    func() time.Time
	logger zerolog.Logger
}

// NewSolanaAdapter creates an adapter against the given RPC endpoint
func NewSolanaAdapter(rpcURL string, logger zerolog.Logger) *SolanaAdapter {
	return &SolanaAdapter{
		client: rpc.New(rpcURL),
		now:    time.Now,
		logger: logger.With().Str("component", "solana_adapter").Logger(),
	}
}

// Holdings returns the native SOL balance plus SPL token balances for mints
// the adapter recognizes
func (a *SolanaAdapter) Holdings(ctx context.Context, address string) ([]models.RawHolding, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("parsing solana address: %w", err)
	}

	var holdings []models.RawHolding

	balance, err := a.client.GetBalance(ctx, owner, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("fetching sol balance: %w", err)
	}
	if balance.Value > 0 {
		holdings = append(holdings, models.RawHolding{
			Symbol:        "SOL",
			Name:          "Solana",
			Amount:        float64(balance.Value) / 1e9,
			SourceAddress: wrappedSolMint,
		})
	}

	accounts, err := a.client.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: solana.TokenProgramID.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64},
	)
	if err != nil {
		// native balance alone is still a usable portfolio
		a.logger.Warn().Err(err).Str("address", address).Msg("token account fetch failed")
		return holdings, nil
	}

	for _, keyed := range accounts.Value {
		var acc token.Account
		if err := bin.NewBinDecoder(keyed.Account.Data.GetBinary()).Decode(&acc); err != nil {
			a.logger.Debug().Err(err).Msg("skipping undecodable token account")
			continue
		}
		if acc.Amount == 0 {
			continue
		}

		holding, ok := a.tokenHolding(ctx, acc)
		if !ok {
			continue
		}
		holdings = append(holdings, holding)
	}

	return holdings, nil
}

// tokenHolding converts a decoded SPL token account into a raw holding. Known
// mints carry their own metadata; for the rest, decimals come from the mint's
// supply record and the symbol is the truncated mint address, leaving pricing
// to decide whether the token is worth anything. Accounts whose mint metadata
// cannot be resolved are dropped.
func (a *SolanaAdapter) tokenHolding(ctx context.Context, acc token.Account) (models.RawHolding, bool) {
	mint := acc.Mint.String()
	if meta, ok := knownMints[mint]; ok {
		return models.RawHolding{
			Symbol:        meta.symbol,
			Name:          meta.name,
			Amount:        float64(acc.Amount) / math.Pow10(meta.decimals),
			SourceAddress: mint,
		}, true
	}

	supply, err := a.client.GetTokenSupply(ctx, acc.Mint, rpc.CommitmentFinalized)
	if err != nil || supply.Value == nil {
		a.logger.Debug().Err(err).Str("mint", mint).Msg("skipping mint without supply metadata")
		return models.RawHolding{}, false
	}

	return models.RawHolding{
		Symbol:        shortMint(mint),
		Amount:        float64(acc.Amount) / math.Pow10(int(supply.Value.Decimals)),
		SourceAddress: mint,
	}, true
}

// shortMint abbreviates a mint address for use as a display symbol
func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + ".." + mint[len(mint)-4:]
}

// TxCount30d counts signatures with a block time inside the trailing 30 days
func (a *SolanaAdapter) TxCount30d(ctx context.Context, address string) (int, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("parsing solana address: %w", err)
	}

	limit := txHistoryLimit
	signatures, err := a.client.GetSignaturesForAddressWithOpts(ctx, owner, &rpc.GetSignaturesForAddressOpts{
		Limit: &limit,
	})
	if err != nil {
		return 0, fmt.Errorf("fetching signatures: %w", err)
	}

	cutoff := a.now().Add(-30 * 24 * time.Hour).Unix()
	count := 0
	for _, sig := range signatures {
		if sig.BlockTime != nil && int64(*sig.BlockTime) >= cutoff {
			count++
		}
	}
	return count, nil
}

// FirstTxDate returns the block time of the oldest signature in the most
// recent window. Wallets older than the window read as the window's start,
// which still classifies them as veterans.
func (a *SolanaAdapter) FirstTxDate(ctx context.Context, address string) (time.Time, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing solana address: %w", err)
	}

	limit := txHistoryLimit
	signatures, err := a.client.GetSignaturesForAddressWithOpts(ctx, owner, &rpc.GetSignaturesForAddressOpts{
		Limit: &limit,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("fetching signatures: %w", err)
	}

	// signatures are newest-first; the oldest is last
	for i := len(signatures) - 1; i >= 0; i-- {
		if signatures[i].BlockTime != nil {
			return signatures[i].BlockTime.Time().UTC(), nil
		}
	}

	return a.now().UTC(), nil
}
