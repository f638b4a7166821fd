package search

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrEmptyQuery rejects a blank query before any gateway call.
	ErrEmptyQuery = eris.New("search: query is empty")
	// ErrSearchFailed matches every discovery or structuring failure.
	ErrSearchFailed = eris.New("search failed")
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageDiscover  Stage = "discover"
	StageStructure Stage = "structure"
	StageParse     Stage = "parse"
)

// Error is a failed search. No partial result accompanies it.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("search failed at %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrSearchFailed.
func (e *Error) Is(target error) bool { return target == ErrSearchFailed }
