package gameapi

import (
	"errors"
	"fmt"
)

// Kind classifies a game-API failure so the schedulers can pick the right
// reschedule policy for it.
type Kind int

const (
	// KindOther is any failure the API reported that has no dedicated
	// handling. The notes checkers defer the next check by 5 hours.
	KindOther Kind = iota
	// KindTransient is an upstream internal error or a network blip. Safe
	// to retry; the notes checkers defer the next check by 1 hour.
	KindTransient
	// KindChallengeRequired means the account tripped a verification
	// challenge the user must solve out-of-band. Next check deferred 24h.
	KindChallengeRequired
	// KindExpiredCookie means the saved credential no longer works.
	KindExpiredCookie
	// KindAlreadyClaimed means today's reward was claimed before.
	KindAlreadyClaimed
)

// Error wraps a failure from the HoYoLAB API together with its
// classification and the upstream retcode, if any.
type Error struct {
	Kind    Kind
	Retcode int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (retcode %d): %v", e.Message, e.Retcode, e.Err)
	}
	return fmt.Sprintf("%s (retcode %d)", e.Message, e.Retcode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification of err. Errors that are not *Error
// (store failures, context cancellation) are reported as KindOther.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}
