package bounty

import (
	"math/big"

	"bountyboard/native/badge"
	"bountyboard/native/token"
)

// VaultMover adapts the token ledger to the TokenMover capability. Escrow
// pulls spend the allowance the payer granted to the vault address.
type VaultMover struct {
	ledger *token.Ledger
	vault  [20]byte
}

// NewVaultMover binds the token ledger to the custody vault.
func NewVaultMover(ledger *token.Ledger, vault [20]byte) VaultMover {
	return VaultMover{ledger: ledger, vault: vault}
}

// TransferFrom pulls pre-approved funds on behalf of the vault.
func (m VaultMover) TransferFrom(from, to [20]byte, amount *big.Int) error {
	return m.ledger.TransferFrom(m.vault, from, to, amount)
}

// Transfer moves funds directly between accounts.
func (m VaultMover) Transfer(from, to [20]byte, amount *big.Int) error {
	return m.ledger.Transfer(from, to, amount)
}

// LedgerIssuer adapts the badge ledger to the BadgeIssuer capability, minting
// on behalf of the board address registered as an authorised issuer.
type LedgerIssuer struct {
	ledger *badge.Ledger
	board  [20]byte
}

// NewLedgerIssuer binds the badge ledger to the board's issuer identity.
func NewLedgerIssuer(ledger *badge.Ledger, board [20]byte) LedgerIssuer {
	return LedgerIssuer{ledger: ledger, board: board}
}

// Issue mints one badge and returns its identifier.
func (i LedgerIssuer) Issue(recipient [20]byte, category, achievement string) (uint64, error) {
	record, err := i.ledger.Issue(i.board, recipient, category, achievement)
	if err != nil {
		return 0, err
	}
	return record.ID, nil
}
