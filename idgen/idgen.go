// Package idgen generates the IDs attached to trace records.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator can generate IDs.
type Generator interface {
	// Generate an ID
	Generate() string
}

// NewSequential returns a generator whose IDs are "1", "2", ... The IDs are
// deterministic, so repeated runs of the same scenario produce the same
// trace.
func NewSequential() Generator {
	return &sequentialGenerator{}
}

// NewXID returns a generator of globally unique IDs. The IDs are not
// deterministic.
func NewXID() Generator {
	return xidGenerator{}
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.next, 1), 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
