package spawn

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/pathgen/internal/world"
)

// RespawnInterval is how often due respawns are checked.
const RespawnInterval = time.Second

// RespawnTask represents a scheduled respawn task
type RespawnTask struct {
	SpawnID     uint64
	RespawnTime time.Time
}

// RespawnTaskManager despawns creatures and brings them back after a delay.
type RespawnTaskManager struct {
	spawnManager *Manager
	world        *world.Manager

	mu    sync.RWMutex
	tasks map[uint64]*RespawnTask // spawnID → task
}

// NewRespawnTaskManager creates new respawn task manager
func NewRespawnTaskManager(spawnManager *Manager, w *world.Manager) *RespawnTaskManager {
	return &RespawnTaskManager{
		spawnManager: spawnManager,
		world:        w,
		tasks:        make(map[uint64]*RespawnTask),
	}
}

// Start starts respawn task manager (blocks until context is canceled)
func (m *RespawnTaskManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(RespawnInterval)
	defer ticker.Stop()

	slog.Info("respawn task manager started", "interval", RespawnInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("respawn task manager stopping")
			return ctx.Err()

		case now := <-ticker.C:
			if due := m.takeDue(now); len(due) > 0 {
				m.executeTasks(ctx, due)
			}
		}
	}
}

// ScheduleRespawn schedules respawn of spawnID after delay.
// A second call for the same spawn replaces the first.
func (m *RespawnTaskManager) ScheduleRespawn(spawnID uint64, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	respawnTime := time.Now().Add(delay)
	m.tasks[spawnID] = &RespawnTask{SpawnID: spawnID, RespawnTime: respawnTime}

	slog.Debug("respawn scheduled",
		"spawnID", spawnID,
		"delay", delay,
		"respawnTime", respawnTime.Format(time.RFC3339))
}

// CancelRespawn cancels scheduled respawn
func (m *RespawnTaskManager) CancelRespawn(spawnID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tasks, spawnID)

	slog.Debug("respawn cancelled", "spawnID", spawnID)
}

// takeDue removes and returns tasks whose time has come.
func (m *RespawnTaskManager) takeDue(now time.Time) []*RespawnTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []*RespawnTask
	for spawnID, task := range m.tasks {
		if !now.Before(task.RespawnTime) {
			due = append(due, task)
			delete(m.tasks, spawnID)
		}
	}
	return due
}

// executeTasks respawns inside the world tick.
func (m *RespawnTaskManager) executeTasks(ctx context.Context, tasks []*RespawnTask) {
	err := m.world.Do(ctx, func(*world.Manager) {
		for _, task := range tasks {
			c, err := m.spawnManager.Respawn(task.SpawnID)
			if err != nil {
				slog.Error("respawn failed",
					"spawnID", task.SpawnID,
					"error", err)
				continue
			}
			slog.Info("creature respawned",
				"guid", c.GUID(),
				"name", c.Name())
		}
	})
	if err != nil {
		slog.Warn("respawn tasks dropped", "count", len(tasks), "error", err)
	}
}

// TaskCount returns number of scheduled respawn tasks
func (m *RespawnTaskManager) TaskCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// GetTask returns respawn task for spawn (for testing)
func (m *RespawnTaskManager) GetTask(spawnID uint64) (*RespawnTask, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[spawnID]
	return task, ok
}
