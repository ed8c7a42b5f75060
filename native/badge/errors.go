package badge

import "errors"

var (
	ErrNotFound           = errors.New("badge: badge not found")
	ErrUnauthorizedIssuer = errors.New("badge: issuer not authorized")
	ErrUnauthorizedOwner  = errors.New("badge: registry owner required")
	ErrInvalidBadge       = errors.New("badge: invalid badge")
	ErrStoreUnavailable   = errors.New("badge: storage unavailable")
)
