package token

import (
	"errors"
	"math/big"
	"testing"

	"bountyboard/core/state"
	kvdb "bountyboard/storage"
)

func newTestLedger() *Ledger {
	return NewLedger(state.NewManager(kvdb.NewMemDB()))
}

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestMintRequiresAuthority(t *testing.T) {
	ledger := newTestLedger()
	authority := addr(0xA0)
	account := addr(0x01)

	// No authority configured yet.
	if err := ledger.Mint(authority, account, big.NewInt(100)); !errors.Is(err, ErrNotMintAuthority) {
		t.Fatalf("expected ErrNotMintAuthority, got %v", err)
	}
	ledger.SetMintAuthority(authority)
	if err := ledger.Mint(account, account, big.NewInt(100)); !errors.Is(err, ErrNotMintAuthority) {
		t.Fatalf("non-authority mint: expected ErrNotMintAuthority, got %v", err)
	}
	if err := ledger.Mint(authority, account, big.NewInt(0)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero mint: expected ErrInvalidAmount, got %v", err)
	}
	if err := ledger.Mint(authority, account, big.NewInt(250)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	balance, err := ledger.BalanceOf(account)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("expected balance 250, got %s", balance)
	}
	supply, err := ledger.TotalSupply()
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("expected supply 250, got %s", supply)
	}
}

func TestTransferMovesExactAmount(t *testing.T) {
	ledger := newTestLedger()
	authority := addr(0xA0)
	sender := addr(0x01)
	recipient := addr(0x02)
	ledger.SetMintAuthority(authority)
	if err := ledger.Mint(authority, sender, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := ledger.Transfer(sender, recipient, big.NewInt(150)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overdraw: expected ErrInsufficientBalance, got %v", err)
	}
	if err := ledger.Transfer(sender, recipient, big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative: expected ErrInvalidAmount, got %v", err)
	}
	if err := ledger.Transfer(sender, recipient, big.NewInt(60)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	senderBal, _ := ledger.BalanceOf(sender)
	recipientBal, _ := ledger.BalanceOf(recipient)
	if senderBal.Cmp(big.NewInt(40)) != 0 || recipientBal.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("unexpected balances %s/%s", senderBal, recipientBal)
	}
	// Unknown accounts read as zero.
	unknownBal, err := ledger.BalanceOf(addr(0x99))
	if err != nil || unknownBal.Sign() != 0 {
		t.Fatalf("unknown account: %s %v", unknownBal, err)
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	ledger := newTestLedger()
	authority := addr(0xA0)
	owner := addr(0x01)
	spender := addr(0x02)
	recipient := addr(0x03)
	ledger.SetMintAuthority(authority)
	if err := ledger.Mint(authority, owner, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := ledger.TransferFrom(spender, owner, recipient, big.NewInt(10)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("no allowance: expected ErrInsufficientAllowance, got %v", err)
	}
	if err := ledger.Approve(owner, spender, big.NewInt(70)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.TransferFrom(spender, owner, recipient, big.NewInt(50)); err != nil {
		t.Fatalf("transfer from: %v", err)
	}

	remaining, err := ledger.Allowance(owner, spender)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if remaining.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("expected allowance 20, got %s", remaining)
	}
	if err := ledger.TransferFrom(spender, owner, recipient, big.NewInt(30)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("exhausted allowance: expected ErrInsufficientAllowance, got %v", err)
	}

	// Allowance is checked before balance so the failures stay distinguishable.
	if err := ledger.Approve(owner, spender, big.NewInt(500)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := ledger.TransferFrom(spender, owner, recipient, big.NewInt(200)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Zero approve revokes.
	if err := ledger.Approve(owner, spender, big.NewInt(0)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := ledger.TransferFrom(spender, owner, recipient, big.NewInt(1)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("revoked allowance: expected ErrInsufficientAllowance, got %v", err)
	}
}
