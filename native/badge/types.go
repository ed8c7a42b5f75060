package badge

import (
	"errors"
	"strings"
)

// Badge is a non-transferable achievement credential. Once issued a badge is
// never mutated or deleted; the ledger deliberately exposes no transfer or
// burn operation.
type Badge struct {
	ID          uint64
	Recipient   [20]byte
	Category    string
	Achievement string
	IssuedAt    int64
}

// Validate ensures the badge payload is well formed.
func (b *Badge) Validate() error {
	if b == nil {
		return errors.New("badge: badge nil")
	}
	if b.Recipient == ([20]byte{}) {
		return errors.New("badge: recipient required")
	}
	if len(strings.TrimSpace(b.Category)) == 0 {
		return errors.New("badge: category required")
	}
	if len(strings.TrimSpace(b.Achievement)) == 0 {
		return errors.New("badge: achievement required")
	}
	if b.IssuedAt <= 0 {
		return errors.New("badge: issuedAt must be positive")
	}
	return nil
}

// Clone returns a copy of the badge so callers can hold it without aliasing
// ledger state.
func (b *Badge) Clone() *Badge {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
