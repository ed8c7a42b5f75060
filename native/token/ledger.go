package token

import (
	"fmt"
	"math/big"
)

// Token metadata for the campus bounty token. The board escrows and pays out
// exclusively in this asset.
const (
	Symbol   = "BBT"
	Name     = "BountyToken"
	Decimals = 8
)

// storage abstracts the subset of state manager functionality required by the
// token ledger.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	balancePrefix   = []byte("token/balance/")
	allowancePrefix = []byte("token/allowance/")
	supplyKey       = []byte("token/supply")
)

func balanceKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", balancePrefix, addr))
}

func allowanceKey(owner, spender [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x/%x", allowancePrefix, owner, spender))
}

// Ledger tracks fungible balances and spend allowances. Transfers are
// all-or-nothing: a balance or allowance shortfall leaves both accounts
// untouched.
type Ledger struct {
	store     storage
	authority [20]byte
}

// NewLedger constructs a ledger bound to the provided storage backend.
func NewLedger(store storage) *Ledger {
	return &Ledger{store: store}
}

// SetMintAuthority configures the only address permitted to mint new supply.
func (l *Ledger) SetMintAuthority(addr [20]byte) {
	if l == nil {
		return
	}
	l.authority = addr
}

func (l *Ledger) readAmount(key []byte) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, ErrStoreUnavailable
	}
	amount := new(big.Int)
	ok, err := l.store.KVGet(key, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

func (l *Ledger) writeAmount(key []byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	return l.store.KVPut(key, amount)
}

// BalanceOf returns the balance held by the supplied address. Unknown accounts
// read as zero.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	return l.readAmount(balanceKey(addr))
}

// TotalSupply returns the cumulative minted amount.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.readAmount(supplyKey)
}

// Mint credits freshly issued tokens to the recipient. Only the configured
// mint authority may invoke it.
func (l *Ledger) Mint(caller, to [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	if l.authority == ([20]byte{}) || caller != l.authority {
		return ErrNotMintAuthority
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := l.readAmount(balanceKey(to))
	if err != nil {
		return err
	}
	supply, err := l.readAmount(supplyKey)
	if err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(to), new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	return l.writeAmount(supplyKey, new(big.Int).Add(supply, amount))
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	fromBalance, err := l.readAmount(balanceKey(from))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBalance, err := l.readAmount(balanceKey(to))
	if err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	if err := l.writeAmount(balanceKey(to), new(big.Int).Add(toBalance, amount)); err != nil {
		// Restore the debit so a storage failure cannot destroy funds.
		if restoreErr := l.writeAmount(balanceKey(from), fromBalance); restoreErr != nil {
			return fmt.Errorf("token: restore sender balance: %w", restoreErr)
		}
		return err
	}
	return nil
}

// Approve grants spender the right to move up to amount from owner's balance.
// A zero amount revokes the allowance.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return l.writeAmount(allowanceKey(owner, spender), amount)
}

// Allowance returns the remaining amount spender may pull from owner.
func (l *Ledger) Allowance(owner, spender [20]byte) (*big.Int, error) {
	return l.readAmount(allowanceKey(owner, spender))
}

// TransferFrom moves amount from the owner to the recipient on behalf of
// spender, consuming the matching allowance. The allowance check runs before
// the balance check so callers can distinguish the two failures.
func (l *Ledger) TransferFrom(spender, from, to [20]byte, amount *big.Int) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	allowance, err := l.readAmount(allowanceKey(from, spender))
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.Transfer(from, to, amount); err != nil {
		return err
	}
	return l.writeAmount(allowanceKey(from, spender), new(big.Int).Sub(allowance, amount))
}
