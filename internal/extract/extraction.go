package extract

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type (
	ExtractionState int

	// Extraction tracks a single job as it moves through the pipeline. It
	// is owned by the service while in-flight and is discarded once the
	// job reaches a terminal state.
	Extraction struct {
		mu         sync.Mutex
		ID         uuid.UUID
		MediaID    uuid.UUID
		EnqueuedAt time.Time

		state   ExtractionState
		attempt int
		trouble *Trouble
	}
)

const (
	PENDING ExtractionState = iota
	PROBING
	MAPPING
	PERSISTED
	FAILED_TRANSIENT
	FAILED_TERMINAL
	SKIPPED
)

func NewExtraction(mediaID uuid.UUID) *Extraction {
	return &Extraction{ID: uuid.New(), MediaID: mediaID, EnqueuedAt: time.Now(), state: PENDING}
}

func (item *Extraction) State() ExtractionState {
	item.mu.Lock()
	defer item.mu.Unlock()
	return item.state
}

// Attempt returns the current attempt number, starting at 1 once the
// first attempt begins.
func (item *Extraction) Attempt() int {
	item.mu.Lock()
	defer item.mu.Unlock()
	return item.attempt
}

// Trouble returns the trouble raised by the most recent attempt, or nil.
func (item *Extraction) Trouble() *Trouble {
	item.mu.Lock()
	defer item.mu.Unlock()
	return item.trouble
}

func (item *Extraction) setState(state ExtractionState) {
	item.mu.Lock()
	defer item.mu.Unlock()
	item.state = state
}

func (item *Extraction) beginAttempt() int {
	item.mu.Lock()
	defer item.mu.Unlock()
	item.attempt++
	item.state = PROBING
	return item.attempt
}

func (item *Extraction) setTrouble(trouble *Trouble, state ExtractionState) {
	item.mu.Lock()
	defer item.mu.Unlock()
	item.trouble = trouble
	item.state = state
}

// IsTerminal returns true if the state is one which the extraction will
// never leave.
func (state ExtractionState) IsTerminal() bool {
	return state == PERSISTED || state == FAILED_TERMINAL || state == SKIPPED
}

func (item *Extraction) String() string {
	return fmt.Sprintf("Extraction{ID=%s media=%s state=%s attempt=%d}", item.ID, item.MediaID, item.State(), item.Attempt())
}

func (state ExtractionState) String() string {
	switch state {
	case PENDING:
		return fmt.Sprintf("PENDING[%d]", state)
	case PROBING:
		return fmt.Sprintf("PROBING[%d]", state)
	case MAPPING:
		return fmt.Sprintf("MAPPING[%d]", state)
	case PERSISTED:
		return fmt.Sprintf("PERSISTED[%d]", state)
	case FAILED_TRANSIENT:
		return fmt.Sprintf("FAILED_TRANSIENT[%d]", state)
	case FAILED_TERMINAL:
		return fmt.Sprintf("FAILED_TERMINAL[%d]", state)
	case SKIPPED:
		return fmt.Sprintf("SKIPPED[%d]", state)
	default:
		return fmt.Sprintf("UNKNOWN[%d]", state)
	}
}
