package common

import "errors"

// Send-pipeline error taxonomy. Every failure of a send attempt maps to
// exactly one of these sentinels; the broker renders the code back to the
// originating connection and nothing else.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrEmptyMessage       = errors.New("empty_message")
	ErrBadMedia           = errors.New("bad_media")
	ErrQuotaExceededText  = errors.New("quota_exceeded_text")
	ErrQuotaExceededMedia = errors.New("quota_exceeded_media")
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientFunds  = errors.New("insufficient_funds")
	ErrNotFound           = errors.New("not_found")
)

// ErrorCode returns the stable machine code for err, or "internal" when the
// error is outside the taxonomy (storage failures and the like, which are
// reported generically and never retried server-side).
func ErrorCode(err error) string {
	for _, sentinel := range []error{
		ErrUnauthenticated,
		ErrEmptyMessage,
		ErrBadMedia,
		ErrQuotaExceededText,
		ErrQuotaExceededMedia,
		ErrForbidden,
		ErrInsufficientFunds,
		ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal"
}
