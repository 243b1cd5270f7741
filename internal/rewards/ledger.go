package rewards

import (
	"context"
	"crypto/sha512"
	"encoding/binary"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// LedgerEntry is one mint recorded by a LedgerMinter.
type LedgerEntry struct {
	Signature string
	Wallet    string
	BaseUnits uint64
}

// LedgerMinter is a local Minter that records mints in memory instead of
// submitting them to a chain. Signatures are 64-byte base58 strings.
type LedgerMinter struct {
	logger *log.Logger

	mu      sync.Mutex
	entries []LedgerEntry
}

// NewLedgerMinter creates a ledger minter. A nil logger uses the default logger.
func NewLedgerMinter(logger *log.Logger) *LedgerMinter {
	if logger == nil {
		logger = log.Default()
	}
	return &LedgerMinter{logger: logger.WithPrefix("ledger")}
}

// Mint records a mint of baseUnits to wallet.
func (m *LedgerMinter) Mint(ctx context.Context, wallet string, baseUnits uint64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ValidateWallet(wallet); err != nil {
		return "", err
	}
	if baseUnits == 0 {
		return "", ErrZeroAmount
	}

	nonce := uuid.New()
	var amount [8]byte
	binary.BigEndian.PutUint64(amount[:], baseUnits)

	h := sha512.New()
	h.Write([]byte(wallet))
	h.Write(amount[:])
	h.Write(nonce[:])
	sig := base58.Encode(h.Sum(nil))

	m.mu.Lock()
	m.entries = append(m.entries, LedgerEntry{
		Signature: sig,
		Wallet:    wallet,
		BaseUnits: baseUnits,
	})
	m.mu.Unlock()

	m.logger.Info("minted reward", "wallet", wallet, "units", baseUnits, "signature", sig)
	return sig, nil
}

// Entries returns a copy of all recorded mints.
func (m *LedgerMinter) Entries() []LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LedgerEntry(nil), m.entries...)
}

var _ Minter = (*LedgerMinter)(nil)
