package run

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bedlam-render/sequencer/internal/cache"
)

// Context holds the state of the active generation run. The generator owns
// the writes; the status monitor and log context provider read concurrently.
type Context struct {
	mu        sync.RWMutex
	id        uuid.UUID
	csvPath   string
	preset    string
	started   time.Time
	total     int
	lastBuild time.Duration

	// progress counters
	Built  *cache.SafeCounter
	Failed *cache.SafeCounter
}

// NewContext creates a run context with a fresh run id.
func NewContext() *Context {
	return &Context{
		id:      uuid.New(),
		started: time.Now(),
		Built:   &cache.SafeCounter{},
		Failed:  &cache.SafeCounter{},
	}
}

// Begin records the workload once the CSV has been parsed.
func (c *Context) Begin(csvPath, preset string, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.csvPath = csvPath
	c.preset = preset
	c.total = total
}

// ID returns the run id.
func (c *Context) ID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

// CSVPath returns the source CSV path for this run.
func (c *Context) CSVPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csvPath
}

// Preset returns the camera preset the run was started with.
func (c *Context) Preset() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preset
}

// Started returns the run start time.
func (c *Context) Started() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

// Total returns the number of sequences in the workload.
func (c *Context) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

// SetLastBuild records the duration of the most recent sequence build.
func (c *Context) SetLastBuild(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastBuild = d
}

// LastBuild returns the duration of the most recent sequence build.
func (c *Context) LastBuild() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastBuild
}

// Done returns the number of sequences attempted so far.
func (c *Context) Done() int {
	return c.Built.Value() + c.Failed.Value()
}
