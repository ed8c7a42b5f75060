package bounty

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"bountyboard/core/events"
	"bountyboard/core/types"
	"bountyboard/native/token"
)

// engineState is the registry surface the engine mutates. *Ledger implements
// it in production; tests substitute an in-memory mock.
type engineState interface {
	BountyNextID() (uint64, error)
	BountyPut(*Bounty) error
	BountyGet(id uint64) (*Bounty, bool, error)
	AppendBountyIndex(id uint64) error
	AppendRequesterIndex(addr [20]byte, id uint64) error
	AppendHelperIndex(addr [20]byte, id uint64) error
	BountyIndex() ([]uint64, error)
	RequesterIndex(addr [20]byte) ([]uint64, error)
	HelperIndex(addr [20]byte) ([]uint64, error)
	EscrowCredit(id uint64, amount *big.Int) error
	EscrowDebit(id uint64) (*big.Int, error)
	EscrowLocked(id uint64) (*big.Int, error)
	EscrowTotal() (*big.Int, error)
}

// TokenMover is the payment rail consumed by the engine. TransferFrom pulls
// pre-approved funds into custody; Transfer pays out of it.
type TokenMover interface {
	TransferFrom(from, to [20]byte, amount *big.Int) error
	Transfer(from, to [20]byte, amount *big.Int) error
}

// BadgeIssuer mints one non-transferable achievement credential and returns
// its identifier.
type BadgeIssuer interface {
	Issue(recipient [20]byte, category, achievement string) (uint64, error)
}

type bountyEvent struct {
	evt *types.Event
}

func (e bountyEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e bountyEvent) Event() *types.Event { return e.evt }

// Engine enforces the bounty lifecycle: escrow lock on creation, first-claim
// wins, release plus badge issuance on approval, refund on cancellation.
// Mutations on the same bounty id serialize on a per-id lock. State shared
// across bounties (the id counter, indices, the aggregate escrow total, token
// balances and the badge sequence) takes sharedMu, acquired strictly after
// the per-id lock.
type Engine struct {
	state   engineState
	token   TokenMover
	badges  BadgeIssuer
	vault   [20]byte
	emitter events.Emitter
	nowFn   func() int64

	sharedMu sync.Mutex
	locksMu  sync.Mutex
	locks    map[uint64]*sync.Mutex
}

// NewEngine creates a bounty engine with a no-op emitter. Callers can override
// the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		locks:   make(map[uint64]*sync.Mutex),
	}
}

// SetState configures the registry backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetToken configures the payment rail used for escrow custody.
func (e *Engine) SetToken(mover TokenMover) { e.token = mover }

// SetBadgeIssuer configures the badge minting capability.
func (e *Engine) SetBadgeIssuer(issuer BadgeIssuer) { e.badges = issuer }

// SetVault configures the custody address that holds locked rewards.
func (e *Engine) SetVault(addr [20]byte) { e.vault = addr }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(bountyEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	switch {
	case e == nil || e.state == nil:
		return errNilState
	case e.token == nil:
		return errNilToken
	case e.badges == nil:
		return errNilBadge
	case e.vault == ([20]byte{}):
		return errNilVault
	default:
		return nil
	}
}

// lockBounty serializes mutations targeting the supplied id and returns the
// unlock function. Locks are created lazily and kept for the process lifetime;
// ids are never reused so the map only grows with the bounty count.
func (e *Engine) lockBounty(id uint64) func() {
	e.locksMu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.locksMu.Unlock()
	l.Lock()
	return l.Unlock
}

func (e *Engine) loadBounty(id uint64) (*Bounty, error) {
	record, ok, err := e.state.BountyGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return record, nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// CreateBounty locks the reward in escrow and registers a new open bounty.
// The escrow pull happens first: when it fails no record is created and no id
// is consumed.
func (e *Engine) CreateBounty(requester [20]byte, description string, reward *big.Int, category Category) (*Bounty, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if requester == ([20]byte{}) {
		return nil, fmt.Errorf("%w: requester required", ErrInvalidInput)
	}
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: description required", ErrInvalidInput)
	}
	amount := cloneBigInt(reward)
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: reward must be positive", ErrInvalidInput)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: invalid category %d", ErrInvalidInput, category)
	}

	e.sharedMu.Lock()
	defer e.sharedMu.Unlock()

	if err := e.token.TransferFrom(requester, e.vault, amount); err != nil {
		switch {
		case errors.Is(err, token.ErrInsufficientAllowance):
			return nil, fmt.Errorf("%w: %v", ErrInsufficientAllowance, err)
		case errors.Is(err, token.ErrInsufficientBalance):
			return nil, fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
		default:
			return nil, err
		}
	}
	refund := func() {
		_ = e.token.Transfer(e.vault, requester, amount)
	}

	id, err := e.state.BountyNextID()
	if err != nil {
		refund()
		return nil, err
	}
	record := &Bounty{
		ID:          id,
		Requester:   requester,
		Description: trimmed,
		Reward:      amount,
		Category:    category,
		Status:      StatusOpen,
		CreatedAt:   e.now(),
	}
	if err := e.state.EscrowCredit(id, amount); err != nil {
		refund()
		return nil, err
	}
	if err := e.state.BountyPut(record); err != nil {
		_, _ = e.state.EscrowDebit(id)
		refund()
		return nil, err
	}
	if err := e.state.AppendBountyIndex(id); err != nil {
		_, _ = e.state.EscrowDebit(id)
		refund()
		return nil, err
	}
	if err := e.state.AppendRequesterIndex(requester, id); err != nil {
		_, _ = e.state.EscrowDebit(id)
		refund()
		return nil, err
	}
	e.emit(NewCreatedEvent(record))
	return record.Clone(), nil
}

// ClaimBounty assigns the caller as the bounty's helper. The first successful
// claim wins; any later attempt observes the Claimed status and fails.
func (e *Engine) ClaimBounty(id uint64, caller [20]byte) (*Bounty, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if caller == ([20]byte{}) {
		return nil, fmt.Errorf("%w: caller required", ErrInvalidInput)
	}
	unlock := e.lockBounty(id)
	defer unlock()

	record, err := e.loadBounty(id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusOpen {
		return nil, fmt.Errorf("%w: cannot claim in status %s", ErrWrongState, record.Status)
	}
	if caller == record.Requester {
		return nil, fmt.Errorf("%w: requester cannot claim own bounty", ErrUnauthorized)
	}
	if record.Helper != ([20]byte{}) {
		return nil, fmt.Errorf("%w: helper already assigned", ErrWrongState)
	}
	record.Helper = caller
	record.Status = StatusClaimed
	if err := e.state.BountyPut(record); err != nil {
		return nil, err
	}
	e.sharedMu.Lock()
	err = e.state.AppendHelperIndex(caller, id)
	e.sharedMu.Unlock()
	if err != nil {
		return nil, err
	}
	e.emit(NewClaimedEvent(record))
	return record.Clone(), nil
}

// SubmitSolution records the helper's work product reference. Resubmission
// after a rejection overwrites the previous reference.
func (e *Engine) SubmitSolution(id uint64, caller [20]byte, url string) (*Bounty, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: submission url required", ErrInvalidInput)
	}
	unlock := e.lockBounty(id)
	defer unlock()

	record, err := e.loadBounty(id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusClaimed {
		return nil, fmt.Errorf("%w: cannot submit in status %s", ErrWrongState, record.Status)
	}
	if caller != record.Helper {
		return nil, fmt.Errorf("%w: only the helper may submit", ErrUnauthorized)
	}
	record.SubmissionURL = trimmed
	record.Status = StatusSubmitted
	if err := e.state.BountyPut(record); err != nil {
		return nil, err
	}
	e.emit(NewSubmittedEvent(record))
	return record.Clone(), nil
}

// ApproveSolution releases the escrowed reward to the helper, mints an
// achievement badge and completes the bounty. The three effects commit
// together: a failed payout or badge mint unwinds the others and leaves the
// bounty Submitted so the requester can retry.
func (e *Engine) ApproveSolution(id uint64, caller [20]byte) (*Bounty, uint64, error) {
	if err := e.ready(); err != nil {
		return nil, 0, err
	}
	unlock := e.lockBounty(id)
	defer unlock()

	record, err := e.loadBounty(id)
	if err != nil {
		return nil, 0, err
	}
	if record.Status != StatusSubmitted {
		return nil, 0, fmt.Errorf("%w: cannot approve in status %s", ErrWrongState, record.Status)
	}
	if caller != record.Requester {
		return nil, 0, fmt.Errorf("%w: only the requester may approve", ErrUnauthorized)
	}

	// Settlement touches cross-bounty state: the escrow total, the vault's
	// token balance and the badge sequence.
	e.sharedMu.Lock()
	defer e.sharedMu.Unlock()

	amount, err := e.state.EscrowDebit(id)
	if err != nil {
		return nil, 0, err
	}
	if err := e.token.Transfer(e.vault, record.Helper, amount); err != nil {
		_ = e.state.EscrowCredit(id, amount)
		return nil, 0, err
	}
	badgeID, err := e.badges.Issue(record.Helper, record.Category.String(), record.Description)
	if err != nil {
		_ = e.token.Transfer(record.Helper, e.vault, amount)
		_ = e.state.EscrowCredit(id, amount)
		return nil, 0, fmt.Errorf("%w: %v", ErrIssuanceFailure, err)
	}
	record.Status = StatusCompleted
	if err := e.state.BountyPut(record); err != nil {
		// The badge cannot be unminted; unwind the payment so funds stay
		// conserved and surface the storage failure.
		_ = e.token.Transfer(record.Helper, e.vault, amount)
		_ = e.state.EscrowCredit(id, amount)
		return nil, 0, err
	}
	e.emit(NewCompletedEvent(record, badgeID))
	return record.Clone(), badgeID, nil
}

// RejectSolution sends the bounty back to Claimed so the helper can resubmit.
// The rejected submission url is retained for audit until overwritten by the
// next submission.
func (e *Engine) RejectSolution(id uint64, caller [20]byte, reason string) (*Bounty, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: rejection reason required", ErrInvalidInput)
	}
	unlock := e.lockBounty(id)
	defer unlock()

	record, err := e.loadBounty(id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusSubmitted {
		return nil, fmt.Errorf("%w: cannot reject in status %s", ErrWrongState, record.Status)
	}
	if caller != record.Requester {
		return nil, fmt.Errorf("%w: only the requester may reject", ErrUnauthorized)
	}
	record.Status = StatusClaimed
	if err := e.state.BountyPut(record); err != nil {
		return nil, err
	}
	e.emit(NewRejectedEvent(record, trimmed))
	return record.Clone(), nil
}

// CancelBounty refunds the escrowed reward to the requester and closes the
// bounty. Only open bounties can be cancelled.
func (e *Engine) CancelBounty(id uint64, caller [20]byte) (*Bounty, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	unlock := e.lockBounty(id)
	defer unlock()

	record, err := e.loadBounty(id)
	if err != nil {
		return nil, err
	}
	if record.Status != StatusOpen {
		return nil, fmt.Errorf("%w: cannot cancel in status %s", ErrWrongState, record.Status)
	}
	if caller != record.Requester {
		return nil, fmt.Errorf("%w: only the requester may cancel", ErrUnauthorized)
	}

	// Refund touches the escrow total and token balances shared with other
	// bounties.
	e.sharedMu.Lock()
	defer e.sharedMu.Unlock()

	amount, err := e.state.EscrowDebit(id)
	if err != nil {
		return nil, err
	}
	if err := e.token.Transfer(e.vault, record.Requester, amount); err != nil {
		_ = e.state.EscrowCredit(id, amount)
		return nil, err
	}
	record.Status = StatusCancelled
	if err := e.state.BountyPut(record); err != nil {
		_ = e.token.Transfer(record.Requester, e.vault, amount)
		_ = e.state.EscrowCredit(id, amount)
		return nil, err
	}
	e.emit(NewCancelledEvent(record))
	return record.Clone(), nil
}

// GetBounty returns a copy of the bounty stored under the supplied id.
func (e *Engine) GetBounty(id uint64) (*Bounty, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.loadBounty(id)
	if err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// ListOpen returns the ids of every bounty currently open, in historical
// insertion order. The index is append-only; status filtering happens here at
// read time.
func (e *Engine) ListOpen() ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	ids, err := e.state.BountyIndex()
	if err != nil {
		return nil, err
	}
	open := make([]uint64, 0, len(ids))
	for _, id := range ids {
		record, ok, err := e.state.BountyGet(id)
		if err != nil {
			return nil, err
		}
		if ok && record.Status == StatusOpen {
			open = append(open, id)
		}
	}
	return open, nil
}

// ListByRequester returns the ids of every bounty the address created, in
// creation order and regardless of status.
func (e *Engine) ListByRequester(addr [20]byte) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.RequesterIndex(addr)
}

// ListByHelper returns the ids of every bounty the address claimed, in claim
// order and regardless of status.
func (e *Engine) ListByHelper(addr [20]byte) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.HelperIndex(addr)
}

// EscrowBalance returns the aggregate amount locked across all non-terminal
// bounties.
func (e *Engine) EscrowBalance() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.EscrowTotal()
}

// EscrowLocked returns the amount held for one bounty. Terminal bounties read
// as zero.
func (e *Engine) EscrowLocked(id uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.EscrowLocked(id)
}
