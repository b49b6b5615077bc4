// Package waypoint keeps the published set of creature waypoint paths.
//
// Снапшот неизменяем: генераторы держат указатель на путь, перезагрузка
// публикует новый снапшот и не трогает старые пути.
package waypoint

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/udisondev/pathgen/internal/data"
	"github.com/udisondev/pathgen/internal/model"
)

// Source loads the full set of waypoint paths.
type Source interface {
	LoadWaypointPaths(ctx context.Context) ([]*model.WaypointPath, error)
}

type snapshot struct {
	paths map[uint32]*model.WaypointPath
	nodes int
}

// Store implements movement.PathStore. Lookups are lock-free.
type Store struct {
	source Source
	snap   atomic.Pointer[snapshot]
}

// NewStore creates an empty store. source may be nil when paths are only
// published directly.
func NewStore(source Source) *Store {
	s := &Store{source: source}
	s.snap.Store(&snapshot{paths: map[uint32]*model.WaypointPath{}})
	return s
}

// WaypointPath returns the published path with id.
func (s *Store) WaypointPath(id uint32) (*model.WaypointPath, bool) {
	p, ok := s.snap.Load().paths[id]
	return p, ok
}

// Count returns the number of published paths.
func (s *Store) Count() int {
	return len(s.snap.Load().paths)
}

// NodeCount returns the total node count of all published paths.
func (s *Store) NodeCount() int {
	return s.snap.Load().nodes
}

// IDs returns published path ids (unordered).
func (s *Store) IDs() []uint32 {
	paths := s.snap.Load().paths
	ids := make([]uint32, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	return ids
}

// Publish replaces the snapshot with paths. On error the old snapshot stays.
func (s *Store) Publish(paths []*model.WaypointPath) error {
	next := &snapshot{paths: make(map[uint32]*model.WaypointPath, len(paths))}
	for _, p := range paths {
		if p == nil {
			return ErrNilPath
		}
		if _, dup := next.paths[p.ID()]; dup {
			return fmt.Errorf("path %d: %w", p.ID(), ErrDuplicateID)
		}
		next.paths[p.ID()] = p
		next.nodes += p.Len()
	}
	s.snap.Store(next)
	return nil
}

// Reload loads paths from the source and publishes them.
func (s *Store) Reload(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}
	paths, err := s.source.LoadWaypointPaths(ctx)
	if err != nil {
		return fmt.Errorf("loading waypoint paths: %w", err)
	}
	if err := s.Publish(paths); err != nil {
		return err
	}
	slog.Info("waypoint paths published", "paths", s.Count(), "nodes", s.NodeCount())
	return nil
}

// Watch reloads the store whenever YAML files in dir change.
// Blocks until ctx is canceled.
func (s *Store) Watch(ctx context.Context, dir string) error {
	return data.Watch(ctx, dir, data.IsDataFile, s.Reload)
}
