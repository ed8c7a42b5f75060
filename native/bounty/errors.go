package bounty

import "errors"

var (
	// ErrInvalidInput marks empty descriptions, non-positive rewards and
	// other malformed caller input.
	ErrInvalidInput = errors.New("bounty: invalid input")
	// ErrNotFound marks unknown bounty identifiers.
	ErrNotFound = errors.New("bounty: bounty not found")
	// ErrUnauthorized marks callers lacking the role a transition requires.
	ErrUnauthorized = errors.New("bounty: unauthorized caller")
	// ErrWrongState marks transitions the current status forbids.
	ErrWrongState = errors.New("bounty: wrong state for transition")
	// ErrInsufficientFunds marks escrow locks the payer cannot cover.
	ErrInsufficientFunds = errors.New("bounty: insufficient funds")
	// ErrInsufficientAllowance marks escrow locks the payer has not approved.
	ErrInsufficientAllowance = errors.New("bounty: insufficient allowance")
	// ErrNoEscrow marks release or refund attempts with no locked amount,
	// including double releases.
	ErrNoEscrow = errors.New("bounty: no escrow locked")
	// ErrEscrowLocked marks attempts to lock escrow twice for one bounty.
	ErrEscrowLocked = errors.New("bounty: escrow already locked")
	// ErrIssuanceFailure marks badge minting failures during approval.
	ErrIssuanceFailure = errors.New("bounty: badge issuance failed")

	errNilState = errors.New("bounty engine: state not configured")
	errNilToken = errors.New("bounty engine: token mover not configured")
	errNilBadge = errors.New("bounty engine: badge issuer not configured")
	errNilVault = errors.New("bounty engine: vault not configured")
)
