package service

import (
	"regexp"
	"strings"

	"github.com/wallet-fortune/internal/types"
)

var (
	evmAddressPattern    = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	solanaAddressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// DetectChain determines which chain family an address belongs to from its
// format alone. The EVM pattern is checked first: it is fully unambiguous,
// while Base58 could in principle match other encodings.
func DetectChain(address string) types.ChainType {
	trimmed := strings.TrimSpace(address)
	if evmAddressPattern.MatchString(trimmed) {
		return types.ChainEVM
	}
	if solanaAddressPattern.MatchString(trimmed) {
		return types.ChainSolana
	}
	return types.ChainUnknown
}

// NormalizeAddress canonicalizes an address for cache keys and comparisons.
// EVM addresses are case-insensitive hex so they are lowercased; Solana
// addresses are case-sensitive Base58 and pass through unchanged.
func NormalizeAddress(address string, chain types.ChainType) string {
	trimmed := strings.TrimSpace(address)
	if chain == types.ChainEVM {
		return strings.ToLower(trimmed)
	}
	return trimmed
}
