package adapter

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/wallet-fortune/internal/models"
)

// txHistoryLimit bounds how many records one listing call may return
const txHistoryLimit = 1000

// EthereumAdapter implements ChainProvider for EVM wallets. Native balance
// comes from an RPC node; token balances and transaction history come from
// the Etherscan API, with ERC20 balances reconstructed from transfer deltas.
type EthereumAdapter struct {
	rpc       *ethclient.Client
	etherscan *EtherscanClient
	now       func() time.Time
	logger    zerolog.Logger
}

// NewEthereumAdapter dials the RPC endpoint and wires the Etherscan client
func NewEthereumAdapter(rpcURL, etherscanKey string, logger zerolog.Logger) (*EthereumAdapter, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing ethereum rpc: %w", err)
	}

	return &EthereumAdapter{
		rpc:       client,
		etherscan: NewEtherscanClient(etherscanKey),
		now:       time.Now,
		logger:    logger.With().Str("component", "ethereum_adapter").Logger(),
	}, nil
}

// Holdings reconstructs the wallet's balances: native ETH from the node, and
// per-contract ERC20 balances by netting transfer history. Tokens whose net
// balance rounds to zero or negative are dropped.
func (a *EthereumAdapter) Holdings(ctx context.Context, address string) ([]models.RawHolding, error) {
	var holdings []models.RawHolding

	ethBalance, err := a.nativeBalance(ctx, address)
	if err != nil {
		a.logger.Warn().Err(err).Str("address", address).Msg("native balance fetch failed")
	} else if ethBalance > 0 {
		holdings = append(holdings, models.RawHolding{
			Symbol:        "ETH",
			Name:          "Ethereum",
			Amount:        ethBalance,
			SourceAddress: "0x0000000000000000000000000000000000000000",
		})
	}

	transfers, err := a.etherscan.TokenTransfers(ctx, address, SortAscending, txHistoryLimit)
	if err != nil {
		if len(holdings) > 0 {
			a.logger.Warn().Err(err).Str("address", address).Msg("token transfer fetch failed, returning native balance only")
			return holdings, nil
		}
		return nil, err
	}

	holdings = append(holdings, nettedTokenBalances(transfers, address)...)
	return holdings, nil
}

func (a *EthereumAdapter) nativeBalance(ctx context.Context, address string) (float64, error) {
	wei, err := a.rpc.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return 0, err
	}
	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return eth, nil
}

// nettedTokenBalances sums incoming minus outgoing transfer amounts per token
// contract. This undercounts tokens acquired through mechanisms Etherscan's
// transfer listing misses, which is acceptable for a portfolio sketch.
func nettedTokenBalances(transfers []EtherscanTokenTransfer, address string) []models.RawHolding {
	address = strings.ToLower(address)

	type tokenAccum struct {
		symbol  string
		name    string
		balance float64
	}
	byContract := make(map[string]*tokenAccum)
	var order []string

	for _, tr := range transfers {
		decimals, err := strconv.Atoi(tr.TokenDecimal)
		if err != nil || decimals < 0 || decimals > 36 {
			continue
		}
		raw, ok := new(big.Float).SetString(tr.Value)
		if !ok {
			continue
		}
		amount, _ := new(big.Float).Quo(raw, big.NewFloat(math.Pow10(decimals))).Float64()

		acc, seen := byContract[tr.ContractAddress]
		if !seen {
			acc = &tokenAccum{symbol: tr.TokenSymbol, name: tr.TokenName}
			byContract[tr.ContractAddress] = acc
			order = append(order, tr.ContractAddress)
		}

		if strings.ToLower(tr.To) == address {
			acc.balance += amount
		}
		if strings.ToLower(tr.From) == address {
			acc.balance -= amount
		}
	}

	var holdings []models.RawHolding
	for _, contract := range order {
		acc := byContract[contract]
		if acc.balance <= 0 || acc.symbol == "" {
			continue
		}
		holdings = append(holdings, models.RawHolding{
			Symbol:        acc.symbol,
			Name:          acc.name,
			Amount:        acc.balance,
			SourceAddress: contract,
		})
	}
	return holdings
}

// TxCount30d counts distinct transactions in the trailing 30 days across
// normal and token transfer listings
func (a *EthereumAdapter) TxCount30d(ctx context.Context, address string) (int, error) {
	cutoff := a.now().Add(-30 * 24 * time.Hour)
	seen := make(map[string]bool)

	txs, err := a.etherscan.Transactions(ctx, address, SortDescending, txHistoryLimit)
	if err != nil {
		return 0, err
	}
	for _, tx := range txs {
		if tx.Time().After(cutoff) {
			seen[tx.Hash] = true
		}
	}

	transfers, err := a.etherscan.TokenTransfers(ctx, address, SortDescending, txHistoryLimit)
	if err != nil {
		a.logger.Warn().Err(err).Str("address", address).Msg("token transfer count unavailable")
		return len(seen), nil
	}
	for _, tr := range transfers {
		if tr.Time().After(cutoff) {
			seen[tr.Hash] = true
		}
	}

	return len(seen), nil
}

// FirstTxDate returns the timestamp of the wallet's oldest transaction,
// falling back to the oldest token transfer for contract-only wallets and to
// the current time for wallets with no history at all.
func (a *EthereumAdapter) FirstTxDate(ctx context.Context, address string) (time.Time, error) {
	txs, err := a.etherscan.Transactions(ctx, address, SortAscending, 1)
	if err != nil {
		return time.Time{}, err
	}
	if len(txs) > 0 {
		return txs[0].Time(), nil
	}

	transfers, err := a.etherscan.TokenTransfers(ctx, address, SortAscending, 1)
	if err != nil {
		return time.Time{}, err
	}
	if len(transfers) > 0 {
		return transfers[0].Time(), nil
	}

	return a.now().UTC(), nil
}
