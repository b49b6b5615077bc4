// Package taxi resolves flight routes and puts players on them.
package taxi

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/udisondev/pathgen/internal/data"
	"github.com/udisondev/pathgen/internal/model"
	"github.com/udisondev/pathgen/internal/movement"
	"github.com/udisondev/pathgen/internal/unit"
)

// ActivationRange is the max distance between the player and the first
// station when a flight is bought.
const ActivationRange = 40.0

// Source loads taxi tables.
type Source interface {
	LoadTaxi(ctx context.Context) ([]model.TaxiStation, []model.TaxiLeg, error)
}

// Service implements movement.TaxiService.
type Service struct {
	source Source
	tables atomic.Pointer[Tables]
	maps   movement.MapService
	events movement.EventDispatcher

	mu      sync.Mutex
	pending map[uint64]*model.TaxiTrip // player guid -> trip waiting for its generator
}

// NewService creates a service with empty tables.
func NewService(source Source, maps movement.MapService, events movement.EventDispatcher) *Service {
	s := &Service{
		source:  source,
		maps:    maps,
		events:  events,
		pending: make(map[uint64]*model.TaxiTrip),
	}
	s.tables.Store(NewTables(nil, nil))
	return s
}

// Tables returns the active snapshot.
func (s *Service) Tables() *Tables { return s.tables.Load() }

// SetTables publishes a new snapshot. Flights in progress keep their copy.
func (s *Service) SetTables(t *Tables) { s.tables.Store(t) }

// Reload loads tables from the source.
func (s *Service) Reload(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}
	stations, legs, err := s.source.LoadTaxi(ctx)
	if err != nil {
		return fmt.Errorf("loading taxi tables: %w", err)
	}
	t := NewTables(stations, legs)
	s.tables.Store(t)
	slog.Info("taxi tables published", "stations", t.StationCount(), "legs", t.LegCount())
	return nil
}

// Activate buys a flight along route and starts it. The first leg is charged
// now, the others when the flight reaches them.
func (s *Service) Activate(p *unit.Player, route []uint32) (*movement.FlightPathGenerator, error) {
	if p.IsInFlight() {
		return nil, ErrAlreadyInFlight
	}

	t := s.tables.Load()
	trip, err := t.BuildTrip(route)
	if err != nil {
		return nil, err
	}

	start, _ := t.Station(route[0])
	if start.MapID != p.MapID() || start.Pos.Sub(p.Position()).Len() > ActivationRange {
		return nil, fmt.Errorf("station %d: %w", start.ID, ErrTooFar)
	}
	if !p.HasEnoughMoney(trip.TotalCost()) {
		return nil, fmt.Errorf("need %d, have %d: %w", trip.TotalCost(), p.Money(), ErrNotEnoughMoney)
	}

	p.ModifyMoney(-int64(trip.FirstCost))
	slog.Info("taxi flight activated",
		"player", p.Name(),
		"trip", trip.ID.String(),
		"route", route,
		"nodes", len(trip.Nodes),
		"cost", trip.TotalCost())

	return s.start(p, trip, 0), nil
}

// Resume restarts a paid flight from startNode without charging.
func (s *Service) Resume(p *unit.Player, route []uint32, startNode uint32) (*movement.FlightPathGenerator, error) {
	trip, err := s.tables.Load().BuildTrip(route)
	if err != nil {
		return nil, err
	}
	slog.Info("taxi flight resumed",
		"player", p.Name(),
		"trip", trip.ID.String(),
		"startNode", startNode)
	return s.start(p, trip, startNode), nil
}

func (s *Service) start(p *unit.Player, trip *model.TaxiTrip, startNode uint32) *movement.FlightPathGenerator {
	p.SetTaxiRoute(trip.Destinations)

	s.mu.Lock()
	s.pending[p.GUID()] = trip
	s.mu.Unlock()

	g := movement.NewFlightPathGenerator(s, s.maps, s.events, startNode)
	p.Motion().Replace(g)
	return g
}

// Cancel stops the player's flight. The player is put back on the last
// reached node.
func (s *Service) Cancel(p *unit.Player) bool {
	s.mu.Lock()
	delete(s.pending, p.GUID())
	s.mu.Unlock()
	return p.Motion().Remove(movement.KindFlight)
}

// Trip hands the prepared trip over to the player's flight generator.
// Each activation is consumed once.
func (s *Service) Trip(p movement.PlayerHost) (*model.TaxiTrip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.pending[p.GUID()]
	if ok {
		delete(s.pending, p.GUID())
	}
	return trip, ok
}

type wallet interface {
	ModifyMoney(delta int64)
}

// Debit charges a leg of a flight in progress.
func (s *Service) Debit(p movement.PlayerHost, cost int32) {
	w, ok := p.(wallet)
	if !ok {
		slog.Warn("taxi debit on host without money", "player", p.Name(), "cost", cost)
		return
	}
	w.ModifyMoney(-int64(cost))
}

// Watch reloads the tables whenever file changes. Blocks until ctx is canceled.
func (s *Service) Watch(ctx context.Context, file string) error {
	base := filepath.Base(file)
	return data.Watch(ctx, filepath.Dir(file), func(name string) bool {
		return filepath.Base(name) == base
	}, s.Reload)
}
