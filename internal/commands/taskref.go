package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based row number, 0 if ID is set
	ID  string // task id, empty if Num is set
}

func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a single task reference.
//
// Parsing rules:
//  1. All digits: a row number as printed by list
//  2. Anything else without whitespace: a task id
func ParseTaskRef(arg string) (TaskRef, error) {
	if arg == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}

	for _, r := range arg {
		if unicode.IsSpace(r) {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
	}
	return TaskRef{ID: arg}, nil
}

// ParseTaskRefs parses every argument as a task reference.
// Duplicates are rejected so a row is never mutated twice.
func ParseTaskRefs(args []string) ([]TaskRef, error) {
	if len(args) == 0 {
		return nil, ErrTaskRefRequired
	}

	refs := make([]TaskRef, 0, len(args))
	seen := make(map[TaskRef]bool)
	for _, arg := range args {
		ref, err := ParseTaskRef(arg)
		if err != nil {
			return nil, err
		}
		if seen[ref] {
			return nil, fmt.Errorf("duplicate task reference: %s", arg)
		}
		seen[ref] = true
		refs = append(refs, ref)
	}
	return refs, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
