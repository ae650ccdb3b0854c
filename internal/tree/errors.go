package tree

import (
	"errors"
	"fmt"
)

// Sentinel errors for tree operations.
var (
	ErrRootNotFound  = errors.New("content root not found")
	ErrIndexNotFound = errors.New("index not found")
	ErrInvalidTree   = errors.New("invalid tree")
	ErrInvalidIndex  = errors.New("invalid index")
)

// ValidationError reports the first structural violation found in a tree.
type ValidationError struct {
	// Path is the dotted label path to the offending node.
	Path  string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v at %s: %v", ErrInvalidTree, e.Path, e.Err)
	}
	return fmt.Sprintf("%v at %s: %s: %v", ErrInvalidTree, e.Path, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes every ValidationError match ErrInvalidTree.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidTree }
