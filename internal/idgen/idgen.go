// Package idgen generates identifiers for sessions, exercises, and sets.
package idgen

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Func produces a fresh unique ID.
type Func func() string

// New returns a random UUID string.
func New() string {
	return uuid.NewString()
}

// Sequence returns a deterministic generator for tests: prefix-1, prefix-2, ...
func Sequence(prefix string) Func {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
