package tui

import (
	"time"

	"github.com/pavelanni/rapm/internal/results"
)

// frameMsg drives one iteration of the phase loop.
type frameMsg time.Time

// savedMsg reports that the results files were written.
type savedMsg struct {
	Paths results.Paths
}

// saveFailedMsg reports that the primary results file could not be written.
type saveFailedMsg struct {
	Err error
}
