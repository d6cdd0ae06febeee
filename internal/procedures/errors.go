package procedures

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("procedure not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrTooLarge     = errors.New("file exceeds upload limit")
)

// RejectedError is returned by Submit when the analysis score is below the
// acceptance minimum. The rejected record has already been persisted.
type RejectedError struct {
	Procedure Procedure
	MinScore  int
}

func (e *RejectedError) Error() string {
	if f := e.Procedure.Analysis.Failure; f != "" {
		return fmt.Sprintf("procedure rejected: analysis failed (%s)", f)
	}
	return fmt.Sprintf("procedure rejected: score %d is below the minimum of %d", e.Procedure.Score, e.MinScore)
}
