package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/buildkite/shellwords"

	"github.com/udisondev/pathgen/internal/battleground"
	"github.com/udisondev/pathgen/internal/spawn"
	"github.com/udisondev/pathgen/internal/taxi"
	"github.com/udisondev/pathgen/internal/world"
)

// Deps are the services commands operate on. Nil services disable their commands.
type Deps struct {
	World   *world.Manager
	Taxi    *taxi.Service
	Spawns  *spawn.Manager
	Respawn *spawn.RespawnTaskManager
	Arena   *battleground.NagrandArena
}

// Context is passed to a running command. Commands run inside the world tick.
type Context struct {
	*Handler
	Deps
}

// fail sends the localized error id and returns ErrCommandFailed.
func (c *Context) fail(id StringID, args ...any) error {
	SendErrorMessage(c.Handler, fmt.Sprintf(GetString(c.Handler, id), args...))
	return ErrCommandFailed
}

// Command is one chat command. Args exclude the command name.
type Command struct {
	Names []string
	Usage string
	Run   func(c *Context, args []string) error
}

// Table dispatches command lines.
// Thread-safe: commands are registered once at startup, then read-only.
type Table struct {
	mu   sync.RWMutex
	cmds map[string]*Command
	deps Deps
}

// NewTable creates a table with the built-in commands.
func NewTable(deps Deps) *Table {
	t := &Table{cmds: make(map[string]*Command), deps: deps}
	for _, cmd := range builtinCommands() {
		t.Register(cmd)
	}
	return t
}

// Register adds cmd under all its names (case-insensitive).
func (t *Table) Register(cmd *Command) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range cmd.Names {
		t.cmds[strings.ToLower(name)] = cmd
	}
}

// Names returns the registered command names, sorted.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.cmds))
	for name := range t.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute parses line with POSIX shell quoting and runs the command inside
// the next world tick. Errors are reported to h before being returned.
func (t *Table) Execute(ctx context.Context, h *Handler, line string) error {
	parts, err := shellwords.SplitPosix(line)
	if err != nil {
		SendErrorMessage(h, err.Error())
		return fmt.Errorf("parsing %q: %w", line, err)
	}
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(strings.TrimPrefix(parts[0], "."))
	t.mu.RLock()
	cmd, ok := t.cmds[name]
	t.mu.RUnlock()
	if !ok {
		SendErrorMessage(h, fmt.Sprintf(GetString(h, StrUnknownCommand), name))
		return fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}

	h.SetSentErrorMessage(false)
	c := &Context{Handler: h, Deps: t.deps}

	slog.Info("chat command", "player", h.PlayerGUID(), "command", line)

	// команда не запускается, если ctx истёк раньше тика
	var runErr error
	if t.deps.World == nil {
		runErr = cmd.Run(c, parts[1:])
	} else if err := t.deps.World.Do(ctx, func(*world.Manager) { runErr = cmd.Run(c, parts[1:]) }); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}

	if runErr == nil {
		return nil
	}
	if errors.Is(runErr, ErrUsage) && !h.HasSentErrorMessage() {
		SendErrorMessage(h, fmt.Sprintf(GetString(h, StrBadArguments), cmd.Usage))
	} else if !h.HasSentErrorMessage() {
		SendErrorMessage(h, runErr.Error())
	}
	return fmt.Errorf("%s: %w", name, runErr)
}
