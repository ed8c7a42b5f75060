package bounty

import (
	"encoding/hex"
	"strconv"

	"bountyboard/core/types"
)

const (
	EventTypeBountyCreated   = "bounty.created"
	EventTypeBountyClaimed   = "bounty.claimed"
	EventTypeBountySubmitted = "bounty.submitted"
	EventTypeBountyCompleted = "bounty.completed"
	EventTypeBountyRejected  = "bounty.rejected"
	EventTypeBountyCancelled = "bounty.cancelled"
)

// NewCreatedEvent returns the canonical event payload for a newly created
// bounty.
func NewCreatedEvent(b *Bounty) *types.Event {
	evt := newBountyEvent(EventTypeBountyCreated, b)
	if b != nil {
		evt.Attributes["category"] = b.Category.String()
	}
	return evt
}

// NewClaimedEvent returns the canonical event payload emitted when a helper
// claims a bounty.
func NewClaimedEvent(b *Bounty) *types.Event {
	evt := newBountyEvent(EventTypeBountyClaimed, b)
	if b != nil {
		evt.Attributes["helper"] = hex.EncodeToString(b.Helper[:])
	}
	return evt
}

// NewSubmittedEvent returns the canonical event payload emitted when a helper
// submits work for review.
func NewSubmittedEvent(b *Bounty) *types.Event {
	evt := newBountyEvent(EventTypeBountySubmitted, b)
	if b != nil {
		evt.Attributes["submissionUrl"] = b.SubmissionURL
	}
	return evt
}

// NewCompletedEvent returns the canonical event payload for an approved
// solution, including the id of the freshly minted badge.
func NewCompletedEvent(b *Bounty, badgeID uint64) *types.Event {
	evt := newBountyEvent(EventTypeBountyCompleted, b)
	if b != nil {
		evt.Attributes["helper"] = hex.EncodeToString(b.Helper[:])
	}
	evt.Attributes["badgeId"] = strconv.FormatUint(badgeID, 10)
	return evt
}

// NewRejectedEvent returns the canonical event payload emitted when the
// requester rejects a submission.
func NewRejectedEvent(b *Bounty, reason string) *types.Event {
	evt := newBountyEvent(EventTypeBountyRejected, b)
	evt.Attributes["reason"] = reason
	return evt
}

// NewCancelledEvent returns the canonical event payload for a cancelled
// bounty.
func NewCancelledEvent(b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyCancelled, b)
}

func newBountyEvent(eventType string, b *Bounty) *types.Event {
	attrs := make(map[string]string)
	if b == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := Sanitize(b)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["id"] = strconv.FormatUint(sanitized.ID, 10)
	attrs["requester"] = hex.EncodeToString(sanitized.Requester[:])
	attrs["reward"] = sanitized.Reward.String()
	attrs["status"] = sanitized.Status.String()
	attrs["createdAt"] = strconv.FormatInt(sanitized.CreatedAt, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}
