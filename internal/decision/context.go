// Package decision implements the sequential analysis pipeline: news
// analysis, price analysis, then reconciliation into one final decision.
package decision

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bitgyeol/internal/market"
)

// Stage names double as the result keys inside a run context.
const (
	StageNewsAnalysis  = "news_analysis"
	StagePriceAnalysis = "price_analysis"
	StageFinalDecision = "final_decision"
)

// StageResult is one stage's output. The timestamp is taken when the model
// response arrives, which is the actual decision time.
type StageResult struct {
	Text      string
	Timestamp time.Time
}

// SnapshotProvider supplies the market view for a run.
type SnapshotProvider interface {
	Collect(ctx context.Context) (*market.Snapshot, error)
}

// Context is the state threaded through one pipeline run. Results are
// append-only: each key is written exactly once, by exactly one stage, in
// pipeline order. The market snapshot is fetched lazily on first need and
// then reused for the rest of the run so every stage sees the same data.
type Context struct {
	TraceID  string
	provider SnapshotProvider

	mu       sync.Mutex
	results  map[string]StageResult
	snapshot *market.Snapshot
	fetches  int
}

func NewContext(provider SnapshotProvider) *Context {
	return &Context{
		TraceID:  uuid.NewString(),
		provider: provider,
		results:  make(map[string]StageResult),
	}
}

// MarketData returns the run's snapshot, fetching it on first call only.
// A failed fetch is not cached; the next caller retries.
func (c *Context) MarketData(ctx context.Context) (*market.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot != nil {
		return c.snapshot, nil
	}
	if c.provider == nil {
		return nil, fmt.Errorf("no snapshot provider attached to run %s", c.TraceID)
	}
	snap, err := c.provider.Collect(ctx)
	if err != nil {
		return nil, err
	}
	c.snapshot = snap
	c.fetches++
	return snap, nil
}

// FetchCount reports how often the provider was actually hit (at most once
// per run by construction).
func (c *Context) FetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func (c *Context) setResult(stage string, res StageResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.results[stage]; exists {
		return fmt.Errorf("stage %s already produced a result in run %s", stage, c.TraceID)
	}
	c.results[stage] = res
	return nil
}

// Result returns the stored output of a stage.
func (c *Context) Result(stage string) (StageResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.results[stage]
	return res, ok
}

// Results returns a copy of all results so far.
func (c *Context) Results() map[string]StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]StageResult, len(c.results))
	for k, v := range c.results {
		out[k] = v
	}
	return out
}
