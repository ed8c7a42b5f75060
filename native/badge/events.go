package badge

import (
	"encoding/hex"
	"strconv"

	"bountyboard/core/types"
)

const (
	// EventTypeBadgeIssued is emitted when a badge is minted for a helper.
	EventTypeBadgeIssued = "badge.issued"
)

// NewIssuedEvent returns the canonical event payload for a badge issuance.
func NewIssuedEvent(b *Badge) *types.Event {
	attrs := make(map[string]string)
	if b == nil {
		return &types.Event{Type: EventTypeBadgeIssued, Attributes: attrs}
	}
	if err := b.Validate(); err != nil {
		return &types.Event{Type: EventTypeBadgeIssued, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(b.ID, 10)
	attrs["recipient"] = hex.EncodeToString(b.Recipient[:])
	attrs["category"] = b.Category
	attrs["achievement"] = b.Achievement
	attrs["issuedAt"] = strconv.FormatInt(b.IssuedAt, 10)
	return &types.Event{Type: EventTypeBadgeIssued, Attributes: attrs}
}
