package badge

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"time"

	"bountyboard/core/events"
	"bountyboard/core/types"
)

// storage abstracts the subset of state manager functionality required by the
// badge ledger.
type storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, value []byte) error
	KVGetList(key []byte, out interface{}) error
	NextSequence(key []byte) (uint64, error)
}

var (
	badgeRecordPrefix = []byte("badge/record/")
	badgeOwnerPrefix  = []byte("badge/of/")
	badgeSeqKey       = []byte("badge/seq")
	badgeIssuersKey   = []byte("badge/issuers")
)

func badgeRecordKey(id uint64) []byte {
	buf := make([]byte, len(badgeRecordPrefix)+8)
	copy(buf, badgeRecordPrefix)
	binary.BigEndian.PutUint64(buf[len(badgeRecordPrefix):], id)
	return buf
}

func badgeOwnerKey(recipient [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", badgeOwnerPrefix, recipient))
}

type storedBadge struct {
	ID          uint64
	Recipient   [20]byte
	Category    string
	Achievement string
	IssuedAt    *big.Int
}

// Ledger persists soul-bound achievement badges. Issuance is restricted to an
// owner-curated set of issuer addresses, mirroring the board engine being the
// sole authorised minter.
type Ledger struct {
	store   storage
	owner   [20]byte
	nowFn   func() int64
	emitter events.Emitter
}

type badgeEvent struct {
	evt *types.Event
}

func (e badgeEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e badgeEvent) Event() *types.Event { return e.evt }

// NewLedger constructs a badge ledger administered by the supplied owner.
func NewLedger(store storage, owner [20]byte) *Ledger {
	return &Ledger{
		store: store,
		owner: owner,
		nowFn: func() int64 { return time.Now().Unix() },
	}
}

// SetNowFunc overrides the wall clock used for issuance timestamps. Primarily
// leveraged in tests to provide deterministic timestamps.
func (l *Ledger) SetNowFunc(now func() int64) {
	if l == nil {
		return
	}
	if now == nil {
		l.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	l.nowFn = now
}

// SetEmitter wires an event sink for issuance notifications.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if l == nil {
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(event *types.Event) {
	if l == nil || l.emitter == nil || event == nil {
		return
	}
	l.emitter.Emit(badgeEvent{evt: event})
}

func (l *Ledger) now() int64 {
	if l == nil || l.nowFn == nil {
		return time.Now().Unix()
	}
	return l.nowFn()
}

func (l *Ledger) issuers() ([][]byte, error) {
	var list [][]byte
	if err := l.store.KVGetList(badgeIssuersKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// IsIssuer reports whether the supplied address may issue badges.
func (l *Ledger) IsIssuer(addr [20]byte) (bool, error) {
	if l == nil || l.store == nil {
		return false, ErrStoreUnavailable
	}
	list, err := l.issuers()
	if err != nil {
		return false, err
	}
	for _, entry := range list {
		if len(entry) == len(addr) && string(entry) == string(addr[:]) {
			return true, nil
		}
	}
	return false, nil
}

// AddIssuer authorises an address to issue badges. Only the registry owner may
// invoke it.
func (l *Ledger) AddIssuer(caller, issuer [20]byte) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	if caller != l.owner {
		return ErrUnauthorizedOwner
	}
	if issuer == ([20]byte{}) {
		return fmt.Errorf("badge: issuer address required")
	}
	return l.store.KVAppend(badgeIssuersKey, issuer[:])
}

// RemoveIssuer revokes an address's issuance right. Already issued badges are
// unaffected.
func (l *Ledger) RemoveIssuer(caller, issuer [20]byte) error {
	if l == nil || l.store == nil {
		return ErrStoreUnavailable
	}
	if caller != l.owner {
		return ErrUnauthorizedOwner
	}
	list, err := l.issuers()
	if err != nil {
		return err
	}
	filtered := make([][]byte, 0, len(list))
	for _, entry := range list {
		if string(entry) == string(issuer[:]) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return l.store.KVPut(badgeIssuersKey, filtered)
}

// Issue mints a new badge for the recipient. The caller must be an authorised
// issuer. Badge ids are monotonically assigned and never reused.
func (l *Ledger) Issue(caller, recipient [20]byte, category, achievement string) (*Badge, error) {
	if l == nil || l.store == nil {
		return nil, ErrStoreUnavailable
	}
	authorized, err := l.IsIssuer(caller)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, ErrUnauthorizedIssuer
	}
	record := &Badge{
		Recipient:   recipient,
		Category:    strings.TrimSpace(category),
		Achievement: strings.TrimSpace(achievement),
		IssuedAt:    l.now(),
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBadge, err)
	}
	id, err := l.store.NextSequence(badgeSeqKey)
	if err != nil {
		return nil, err
	}
	record.ID = id
	stored := &storedBadge{
		ID:          record.ID,
		Recipient:   record.Recipient,
		Category:    record.Category,
		Achievement: record.Achievement,
		IssuedAt:    big.NewInt(record.IssuedAt),
	}
	if err := l.store.KVPut(badgeRecordKey(id), stored); err != nil {
		return nil, err
	}
	var idBytes [8]byte
	binary.BigEndian.PutUint64(idBytes[:], id)
	if err := l.store.KVAppend(badgeOwnerKey(recipient), idBytes[:]); err != nil {
		return nil, err
	}
	l.emit(NewIssuedEvent(record))
	return record.Clone(), nil
}

// Get returns the badge stored under the supplied id.
func (l *Ledger) Get(id uint64) (*Badge, error) {
	if l == nil || l.store == nil {
		return nil, ErrStoreUnavailable
	}
	stored := new(storedBadge)
	ok, err := l.store.KVGet(badgeRecordKey(id), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	record := &Badge{
		ID:          stored.ID,
		Recipient:   stored.Recipient,
		Category:    stored.Category,
		Achievement: stored.Achievement,
	}
	if stored.IssuedAt != nil {
		record.IssuedAt = stored.IssuedAt.Int64()
	}
	return record, nil
}

// BadgesOf returns the ids of every badge held by the recipient in issuance
// order.
func (l *Ledger) BadgesOf(recipient [20]byte) ([]uint64, error) {
	if l == nil || l.store == nil {
		return nil, ErrStoreUnavailable
	}
	var raw [][]byte
	if err := l.store.KVGetList(badgeOwnerKey(recipient), &raw); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(raw))
	for _, entry := range raw {
		if len(entry) != 8 {
			return nil, fmt.Errorf("badge: malformed index entry")
		}
		ids = append(ids, binary.BigEndian.Uint64(entry))
	}
	return ids, nil
}
