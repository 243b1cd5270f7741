// Package rewards decides token rewards for finished games and hands them
// to a Minter.
package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Errors returned by the rewards package.
var (
	ErrInvalidWallet = errors.New("rewards: invalid wallet address")
	ErrZeroAmount    = errors.New("rewards: amount must be positive")
)

// WalletLength is the decoded size of a wallet public key.
const WalletLength = 32

// ValidateWallet checks that addr is a base58-encoded 32-byte public key.
func ValidateWallet(addr string) error {
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidWallet)
	}
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	if len(raw) != WalletLength {
		return fmt.Errorf("%w: decodes to %d bytes, want %d", ErrInvalidWallet, len(raw), WalletLength)
	}
	return nil
}

// Minter credits tokens to a wallet and returns the transaction signature.
type Minter interface {
	Mint(ctx context.Context, wallet string, baseUnits uint64) (string, error)
}

// Policy converts a final score into a token reward.
type Policy struct {
	Threshold int // Minimum final score for a reward
	Divisor   int // Points per whole token
	Decimals  int // Token decimals
}

// DefaultPolicy returns the standard reward policy: scores of 1024 or more
// earn one token per 512 points, with 6 decimals.
func DefaultPolicy() Policy {
	return Policy{
		Threshold: 1024,
		Divisor:   512,
		Decimals:  6,
	}
}

// Amount returns the whole tokens earned for score and whether a reward is due.
func (p Policy) Amount(score int) (int64, bool) {
	if p.Divisor <= 0 || score < p.Threshold {
		return 0, false
	}
	tokens := int64(score / p.Divisor)
	return tokens, tokens > 0
}

// BaseUnits converts whole tokens into the smallest token unit.
func (p Policy) BaseUnits(tokens int64) uint64 {
	if tokens <= 0 {
		return 0
	}
	units := uint64(tokens)
	for range p.Decimals {
		units *= 10
	}
	return units
}
