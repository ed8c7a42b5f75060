package bounty

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// storage abstracts the subset of state manager functionality required by the
// bounty ledger.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
	NextSequence(key []byte) (uint64, error)
}

var (
	bountyRecordPrefix    = []byte("bounty/record/")
	bountySeqKey          = []byte("bounty/seq")
	bountyIndexKey        = []byte("bounty/index/all")
	bountyRequesterPrefix = []byte("bounty/index/requester/")
	bountyHelperPrefix    = []byte("bounty/index/helper/")
	escrowLockPrefix      = []byte("bounty/escrow/")
	escrowTotalKey        = []byte("bounty/escrow/total")
)

func bountyRecordKey(id uint64) []byte {
	buf := make([]byte, len(bountyRecordPrefix)+8)
	copy(buf, bountyRecordPrefix)
	binary.BigEndian.PutUint64(buf[len(bountyRecordPrefix):], id)
	return buf
}

func requesterIndexKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", bountyRequesterPrefix, addr))
}

func helperIndexKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", bountyHelperPrefix, addr))
}

func escrowLockKey(id uint64) []byte {
	buf := make([]byte, len(escrowLockPrefix)+8)
	copy(buf, escrowLockPrefix)
	binary.BigEndian.PutUint64(buf[len(escrowLockPrefix):], id)
	return buf
}

func idBytes(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return buf[:]
}

func decodeIDList(raw [][]byte) ([]uint64, error) {
	ids := make([]uint64, 0, len(raw))
	for _, entry := range raw {
		if len(entry) != 8 {
			return nil, fmt.Errorf("bounty: malformed index entry")
		}
		ids = append(ids, binary.BigEndian.Uint64(entry))
	}
	return ids, nil
}

type storedBounty struct {
	ID            uint64
	Requester     [20]byte
	Helper        [20]byte
	Description   string
	Reward        *big.Int
	Category      uint8
	Status        uint8
	CreatedAt     *big.Int
	SubmissionURL string
}

func newStoredBounty(b *Bounty) *storedBounty {
	if b == nil {
		return nil
	}
	reward := big.NewInt(0)
	if b.Reward != nil {
		reward = new(big.Int).Set(b.Reward)
	}
	return &storedBounty{
		ID:            b.ID,
		Requester:     b.Requester,
		Helper:        b.Helper,
		Description:   b.Description,
		Reward:        reward,
		Category:      uint8(b.Category),
		Status:        uint8(b.Status),
		CreatedAt:     big.NewInt(b.CreatedAt),
		SubmissionURL: b.SubmissionURL,
	}
}

func (s *storedBounty) toBounty() (*Bounty, error) {
	if s == nil {
		return nil, fmt.Errorf("bounty: nil storage record")
	}
	out := &Bounty{
		ID:            s.ID,
		Requester:     s.Requester,
		Helper:        s.Helper,
		Description:   s.Description,
		Reward:        big.NewInt(0),
		Category:      Category(s.Category),
		Status:        Status(s.Status),
		SubmissionURL: s.SubmissionURL,
	}
	if s.Reward != nil {
		out.Reward = new(big.Int).Set(s.Reward)
	}
	if s.CreatedAt != nil {
		out.CreatedAt = s.CreatedAt.Int64()
	}
	if !out.Status.Valid() || !out.Category.Valid() {
		return nil, fmt.Errorf("bounty: corrupt storage record %d", s.ID)
	}
	return out, nil
}

// Ledger is the bounty registry: it owns the bounty records, the id counter,
// the append-only indices and the per-bounty escrow bookkeeping. Indices are
// never pruned; reads that need a live subset (open bounties) filter on status
// instead.
type Ledger struct {
	store storage
}

// NewLedger constructs a registry bound to the provided storage backend.
func NewLedger(store storage) *Ledger {
	return &Ledger{store: store}
}

// BountyNextID allocates the next bounty identifier. Identifiers start at 1
// and are never reused.
func (l *Ledger) BountyNextID() (uint64, error) {
	if l == nil || l.store == nil {
		return 0, errNilState
	}
	return l.store.NextSequence(bountySeqKey)
}

// BountyPut persists the supplied bounty record.
func (l *Ledger) BountyPut(b *Bounty) error {
	if l == nil || l.store == nil {
		return errNilState
	}
	sanitized, err := Sanitize(b)
	if err != nil {
		return err
	}
	return l.store.KVPut(bountyRecordKey(sanitized.ID), newStoredBounty(sanitized))
}

// BountyGet retrieves the bounty stored under the supplied id.
func (l *Ledger) BountyGet(id uint64) (*Bounty, bool, error) {
	if l == nil || l.store == nil {
		return nil, false, errNilState
	}
	stored := new(storedBounty)
	ok, err := l.store.KVGet(bountyRecordKey(id), stored)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	record, err := stored.toBounty()
	if err != nil {
		return nil, false, err
	}
	return record, true, nil
}

// AppendBountyIndex records the id in the global insertion-order index.
func (l *Ledger) AppendBountyIndex(id uint64) error {
	if l == nil || l.store == nil {
		return errNilState
	}
	return l.store.KVAppend(bountyIndexKey, idBytes(id))
}

// AppendRequesterIndex records the id against the requester's address.
func (l *Ledger) AppendRequesterIndex(addr [20]byte, id uint64) error {
	if l == nil || l.store == nil {
		return errNilState
	}
	return l.store.KVAppend(requesterIndexKey(addr), idBytes(id))
}

// AppendHelperIndex records the id against the helper's address.
func (l *Ledger) AppendHelperIndex(addr [20]byte, id uint64) error {
	if l == nil || l.store == nil {
		return errNilState
	}
	return l.store.KVAppend(helperIndexKey(addr), idBytes(id))
}

// BountyIndex returns every bounty id in insertion order.
func (l *Ledger) BountyIndex() ([]uint64, error) {
	if l == nil || l.store == nil {
		return nil, errNilState
	}
	var raw [][]byte
	if err := l.store.KVGetList(bountyIndexKey, &raw); err != nil {
		return nil, err
	}
	return decodeIDList(raw)
}

// RequesterIndex returns the ids of every bounty created by the address.
func (l *Ledger) RequesterIndex(addr [20]byte) ([]uint64, error) {
	if l == nil || l.store == nil {
		return nil, errNilState
	}
	var raw [][]byte
	if err := l.store.KVGetList(requesterIndexKey(addr), &raw); err != nil {
		return nil, err
	}
	return decodeIDList(raw)
}

// HelperIndex returns the ids of every bounty claimed by the address.
func (l *Ledger) HelperIndex(addr [20]byte) ([]uint64, error) {
	if l == nil || l.store == nil {
		return nil, errNilState
	}
	var raw [][]byte
	if err := l.store.KVGetList(helperIndexKey(addr), &raw); err != nil {
		return nil, err
	}
	return decodeIDList(raw)
}

// EscrowCredit records the locked amount for a bounty and grows the aggregate
// total. A bounty's escrow can be locked at most once.
func (l *Ledger) EscrowCredit(id uint64, amount *big.Int) error {
	if l == nil || l.store == nil {
		return errNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("bounty: escrow amount must be positive")
	}
	existing, err := l.EscrowLocked(id)
	if err != nil {
		return err
	}
	if existing.Sign() > 0 {
		return ErrEscrowLocked
	}
	total, err := l.EscrowTotal()
	if err != nil {
		return err
	}
	if err := l.store.KVPut(escrowLockKey(id), amount); err != nil {
		return err
	}
	return l.store.KVPut(escrowTotalKey, new(big.Int).Add(total, amount))
}

// EscrowDebit clears the locked amount for a bounty and shrinks the aggregate
// total, returning the amount that was held. A second debit fails with
// ErrNoEscrow so the locked amount can never be paid out twice.
func (l *Ledger) EscrowDebit(id uint64) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilState
	}
	locked, err := l.EscrowLocked(id)
	if err != nil {
		return nil, err
	}
	if locked.Sign() == 0 {
		return nil, ErrNoEscrow
	}
	total, err := l.EscrowTotal()
	if err != nil {
		return nil, err
	}
	if err := l.store.KVPut(escrowLockKey(id), big.NewInt(0)); err != nil {
		return nil, err
	}
	if err := l.store.KVPut(escrowTotalKey, new(big.Int).Sub(total, locked)); err != nil {
		return nil, err
	}
	return locked, nil
}

// EscrowLocked returns the amount currently held for the bounty. Missing
// entries read as zero.
func (l *Ledger) EscrowLocked(id uint64) (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilState
	}
	amount := new(big.Int)
	ok, err := l.store.KVGet(escrowLockKey(id), amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return amount, nil
}

// EscrowTotal returns the aggregate amount locked across all non-terminal
// bounties.
func (l *Ledger) EscrowTotal() (*big.Int, error) {
	if l == nil || l.store == nil {
		return nil, errNilState
	}
	total := new(big.Int)
	ok, err := l.store.KVGet(escrowTotalKey, total)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return total, nil
}
