package bounty

import (
	"fmt"
	"math/big"
	"strings"
)

// Category classifies the kind of work a bounty asks for. The numeric values
// are part of the public interface and must not be reordered.
type Category uint8

const (
	CategoryMath        Category = 0
	CategoryProgramming Category = 1
	CategoryWriting     Category = 2
	CategoryScience     Category = 3
	CategoryLanguage    Category = 4
)

// Valid reports whether the category value is within the supported range.
func (c Category) Valid() bool {
	switch c {
	case CategoryMath, CategoryProgramming, CategoryWriting, CategoryScience, CategoryLanguage:
		return true
	default:
		return false
	}
}

// String returns the canonical display name for the category.
func (c Category) String() string {
	switch c {
	case CategoryMath:
		return "Math"
	case CategoryProgramming:
		return "Programming"
	case CategoryWriting:
		return "Writing"
	case CategoryScience:
		return "Science"
	case CategoryLanguage:
		return "Language"
	default:
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
}

// ParseCategory resolves a case-insensitive category name to its value.
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "math":
		return CategoryMath, nil
	case "programming":
		return CategoryProgramming, nil
	case "writing":
		return CategoryWriting, nil
	case "science":
		return CategoryScience, nil
	case "language":
		return CategoryLanguage, nil
	default:
		return 0, fmt.Errorf("bounty: unknown category %q", name)
	}
}

// Status represents the lifecycle states of a bounty. The numeric values are
// part of the public interface and must not be reordered.
type Status uint8

const (
	StatusOpen      Status = 0
	StatusClaimed   Status = 1
	StatusSubmitted Status = 2
	StatusCompleted Status = 3
	StatusCancelled Status = 4
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClaimed, StatusSubmitted, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String returns the canonical display name for the status.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusClaimed:
		return "Claimed"
	case StatusSubmitted:
		return "Submitted"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Bounty captures a single task posting. Requester, description, reward,
// category and createdAt are immutable after creation; helper is immutable
// once set. SubmissionURL holds the latest work product reference and survives
// a rejection until the helper resubmits.
type Bounty struct {
	ID            uint64
	Requester     [20]byte
	Helper        [20]byte
	Description   string
	Reward        *big.Int
	Category      Category
	Status        Status
	CreatedAt     int64
	SubmissionURL string
}

// Clone returns a deep copy of the bounty so callers can safely mutate the
// copy without affecting the stored instance.
func (b *Bounty) Clone() *Bounty {
	if b == nil {
		return nil
	}
	clone := *b
	if b.Reward != nil {
		clone.Reward = new(big.Int).Set(b.Reward)
	} else {
		clone.Reward = big.NewInt(0)
	}
	return &clone
}

// Sanitize validates the supplied bounty and returns a cloned instance with a
// non-nil reward field. The function does not mutate the original value.
func Sanitize(b *Bounty) (*Bounty, error) {
	if b == nil {
		return nil, fmt.Errorf("bounty: nil bounty")
	}
	clone := b.Clone()
	if clone.Reward.Sign() < 0 {
		return nil, fmt.Errorf("bounty: reward must be non-negative")
	}
	if !clone.Category.Valid() {
		return nil, fmt.Errorf("bounty: invalid category: %d", clone.Category)
	}
	if !clone.Status.Valid() {
		return nil, fmt.Errorf("bounty: invalid status: %d", clone.Status)
	}
	return clone, nil
}
