// Package idgen supplies item identifiers.
package idgen

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Generator produces unique ids.
type Generator interface {
	NewID() string
}

// UUID generates random version 4 UUIDs.
type UUID struct{}

func (UUID) NewID() string { return uuid.New().String() }

// Counter generates "<prefix><n>" ids from a monotonically increasing n.
// Safe for concurrent use.
type Counter struct {
	prefix string
	n      atomic.Int64
}

// NewCounter returns a Counter whose first id is prefix+"1".
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// NewCounterAt returns a Counter whose first id is prefix+(start+1).
func NewCounterAt(prefix string, start int64) *Counter {
	c := &Counter{prefix: prefix}
	c.n.Store(start)
	return c
}

func (c *Counter) NewID() string {
	return c.prefix + strconv.FormatInt(c.n.Add(1), 10)
}

// New returns the generator for the configured mode ("uuid" or "counter").
func New(mode string) (Generator, error) {
	switch mode {
	case "", "uuid":
		return UUID{}, nil
	case "counter":
		// Millisecond clock start keeps ids unique across restarts.
		return NewCounterAt("", time.Now().UnixMilli()), nil
	}
	return nil, fmt.Errorf("unknown id mode %q", mode)
}
