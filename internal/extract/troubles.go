package extract

import (
	"errors"
	"fmt"
)

type (
	TroubleType int

	// Trouble is the error returned by a failed extraction attempt. Only
	// troubles which are transient are eligible to be retried.
	Trouble struct {
		error
		tType TroubleType

		// Attempts is the number of attempts made before the trouble was
		// surfaced, and Exhausted is true if a transient trouble became
		// terminal because the attempt ceiling was reached.
		Attempts  int
		Exhausted bool
	}
)

const (
	UNPROBEABLE_MEDIA TroubleType = iota
	PROBE_FAILURE
	PROBE_TIMEOUT
	PERSISTENCE_FAILURE
)

// ErrRecordMissing indicates the media an extraction targets no longer exists. It
// is never surfaced from a job, which instead completes as SKIPPED.
var ErrRecordMissing = errors.New("media record no longer exists")

func newTrouble(tType TroubleType, err error) *Trouble {
	return &Trouble{error: err, tType: tType}
}

func (t *Trouble) Type() TroubleType { return t.tType }

// IsTransient returns true if the trouble may not occur again if the
// attempt is repeated.
func (t *Trouble) IsTransient() bool {
	return t.tType != UNPROBEABLE_MEDIA
}

func (t *Trouble) Unwrap() error { return t.error }

func (t *Trouble) Error() string {
	if t.Attempts > 0 {
		return fmt.Sprintf("%s after %d attempt(s): %v", t.tType, t.Attempts, t.error)
	}

	return fmt.Sprintf("%s: %v", t.tType, t.error)
}

func (t TroubleType) String() string {
	switch t {
	case UNPROBEABLE_MEDIA:
		return fmt.Sprintf("UNPROBEABLE_MEDIA[%d]", t)
	case PROBE_FAILURE:
		return fmt.Sprintf("PROBE_FAILURE[%d]", t)
	case PROBE_TIMEOUT:
		return fmt.Sprintf("PROBE_TIMEOUT[%d]", t)
	case PERSISTENCE_FAILURE:
		return fmt.Sprintf("PERSISTENCE_FAILURE[%d]", t)
	default:
		return fmt.Sprintf("UNKNOWN[%d]", t)
	}
}
