// Package latest keeps the most recent reading per station in memory and
// runs each reading through the safety evaluator as it arrives. It backs
// the REST endpoints that must answer without a database round trip.
package latest

import (
	"context"
	"sync"
	"time"

	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/internal/safety"
	"github.com/skysentry/skysentry/internal/types"
)

// Cache is an in-memory storage engine holding the newest reading for
// each station plus the current safety verdict.
type Cache struct {
	evaluator *safety.Evaluator

	mu       sync.RWMutex
	readings map[string]types.Reading
	newest   string
	verdict  safety.Verdict
}

// New creates a cache wired to the given safety evaluator.
func New(evaluator *safety.Evaluator) *Cache {
	return &Cache{
		evaluator: evaluator,
		readings:  make(map[string]types.Reading),
	}
}

// StartStorageEngine creates a goroutine loop to receive readings and fold
// them into the cache
func (c *Cache) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.Reading {
	log.Info("starting latest-reading cache engine...")
	readingChan := make(chan types.Reading, 10)
	go c.processReadings(ctx, wg, readingChan)
	return readingChan
}

func (c *Cache) processReadings(ctx context.Context, wg *sync.WaitGroup, rchan <-chan types.Reading) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case r := <-rchan:
			c.Store(r)
		case <-ctx.Done():
			log.Info("cancellation request received. Cancelling cache processor.")
			return
		}
	}
}

// Store folds one reading into the cache and re-evaluates safety.
func (c *Cache) Store(r types.Reading) {
	v := c.evaluator.Evaluate(r, time.Now())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.readings[r.StationName] = r
	c.newest = r.StationName
	c.verdict = v
}

// Latest returns the newest reading for the named station. An empty
// station name returns the most recently received reading from any
// station.
func (c *Cache) Latest(stationName string) (types.Reading, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if stationName == "" {
		stationName = c.newest
	}
	r, ok := c.readings[stationName]
	return r, ok
}

// Verdict returns the safety verdict as of the last stored reading.
func (c *Cache) Verdict() safety.Verdict {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verdict
}
