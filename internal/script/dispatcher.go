// Package script runs node events: Go handlers registered at startup and
// tengo scripts loaded from a directory (<event id>.tengo).
package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/udisondev/pathgen/internal/data"
	"github.com/udisondev/pathgen/internal/movement"
)

// MaxRunTime bounds one script run. Events fire inside the map tick.
const MaxRunTime = 50 * time.Millisecond

// Handler is a Go implementation of a node event.
type Handler func(eventID uint32, target movement.EventTarget, departure bool)

// Dispatcher implements movement.EventDispatcher.
type Dispatcher struct {
	dir string

	scripts atomic.Pointer[map[uint32]*tengo.Compiled]

	mu       sync.RWMutex
	handlers map[uint32]Handler

	fired  atomic.Uint64
	failed atomic.Uint64
}

// NewDispatcher creates a dispatcher for scripts in dir. dir may be empty.
func NewDispatcher(dir string) *Dispatcher {
	d := &Dispatcher{
		dir:      dir,
		handlers: make(map[uint32]Handler),
	}
	empty := map[uint32]*tengo.Compiled{}
	d.scripts.Store(&empty)
	return d
}

// Handle registers a Go handler. It runs before the script for the same id.
func (d *Dispatcher) Handle(eventID uint32, h Handler) {
	d.mu.Lock()
	d.handlers[eventID] = h
	d.mu.Unlock()
}

// Fire runs everything bound to eventID. Errors are logged.
func (d *Dispatcher) Fire(eventID uint32, target movement.EventTarget, departure bool) {
	d.mu.RLock()
	h := d.handlers[eventID]
	d.mu.RUnlock()

	compiled := (*d.scripts.Load())[eventID]
	if h == nil && compiled == nil {
		slog.Debug("no handler for node event", "event", eventID, "unit", target.Name())
		return
	}
	d.fired.Add(1)

	if h != nil {
		h(eventID, target, departure)
	}
	if compiled != nil {
		if err := run(compiled, bindGlobals(eventID, target, departure)); err != nil {
			d.failed.Add(1)
			slog.Warn("event script failed",
				"event", eventID,
				"unit", target.Name(),
				"error", err)
		}
	}
}

func run(compiled *tengo.Compiled, globals map[string]any) error {
	c := compiled.Clone()
	for name, v := range globals {
		if err := c.Set(name, v); err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), MaxRunTime)
	defer cancel()
	return c.RunContext(ctx)
}

// Compile compiles src as the script for eventID and installs it.
func (d *Dispatcher) Compile(eventID uint32, src []byte) error {
	c, err := compile(src)
	if err != nil {
		return fmt.Errorf("event %d: %w", eventID, err)
	}
	for {
		old := d.scripts.Load()
		next := make(map[uint32]*tengo.Compiled, len(*old)+1)
		for id, s := range *old {
			next[id] = s
		}
		next[eventID] = c
		if d.scripts.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

func compile(src []byte) (*tengo.Compiled, error) {
	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap("math", "text", "fmt", "rand", "times"))
	s.SetMaxAllocs(10_000)
	for name, v := range placeholderGlobals() {
		if err := s.Add(name, v); err != nil {
			return nil, err
		}
	}
	return s.Compile()
}

// Reload compiles every script in the dir and swaps the set atomically.
// A compile error keeps the previous set.
func (d *Dispatcher) Reload(ctx context.Context) error {
	if d.dir == "" {
		return ErrNoScriptDir
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return fmt.Errorf("reading script dir %s: %w", d.dir, err)
	}

	next := make(map[uint32]*tengo.Compiled, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !IsScriptFile(e.Name()) {
			continue
		}
		id, err := eventIDFromName(e.Name())
		if err != nil {
			slog.Warn("skipping script", "file", e.Name(), "error", err)
			continue
		}
		src, err := os.ReadFile(filepath.Join(d.dir, e.Name()))
		if err != nil {
			return fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		c, err := compile(src)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", e.Name(), err)
		}
		next[id] = c
	}

	d.scripts.Store(&next)
	slog.Info("event scripts loaded", "dir", d.dir, "count", len(next))
	return nil
}

// Watch recompiles scripts when the dir changes. Blocks until ctx is done.
func (d *Dispatcher) Watch(ctx context.Context) error {
	if d.dir == "" {
		return ErrNoScriptDir
	}
	return data.Watch(ctx, d.dir, IsScriptFile, d.Reload)
}

// Count returns the number of loaded scripts.
func (d *Dispatcher) Count() int { return len(*d.scripts.Load()) }

// Stats returns fired and failed event counters.
func (d *Dispatcher) Stats() (fired, failed uint64) {
	return d.fired.Load(), d.failed.Load()
}

// IsScriptFile reports whether name is a tengo script.
func IsScriptFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".tengo")
}

func eventIDFromName(name string) (uint32, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	id, err := strconv.ParseUint(base, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%q: %w", name, ErrBadScriptName)
	}
	return uint32(id), nil
}
