package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/ports"
)

// MemoryTripRepository is an in-memory implementation of the trip
// store, used by tests and local development. SaveTripPlan is atomic
// under the repository mutex: either the whole bundle is stored or,
// when the driver-day is already taken, nothing is.
type MemoryTripRepository struct {
	mu       sync.Mutex
	drivers  map[string]*domain.Driver
	vehicles map[string]*domain.Vehicle
	loads    map[string]*domain.Load
	plans    map[string]*domain.TripPlan
	byDay    map[string]string // driverID|date -> tripID
}

func NewMemoryTripRepository() *MemoryTripRepository {
	return &MemoryTripRepository{
		drivers:  make(map[string]*domain.Driver),
		vehicles: make(map[string]*domain.Vehicle),
		loads:    make(map[string]*domain.Load),
		plans:    make(map[string]*domain.TripPlan),
		byDay:    make(map[string]string),
	}
}

// Seed helpers for tests and local bootstrap.

func (m *MemoryTripRepository) AddDriver(d *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[d.ID] = d
}

func (m *MemoryTripRepository) AddVehicle(v *domain.Vehicle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vehicles[v.ID] = v
}

func (m *MemoryTripRepository) AddLoad(l *domain.Load) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[l.ID] = l
}

func (m *MemoryTripRepository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drivers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return d, nil
}

func (m *MemoryTripRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return v, nil
}

func (m *MemoryTripRepository) GetLoad(ctx context.Context, id string) (*domain.Load, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loads[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return l, nil
}

func dayIndexKey(driverID string, date time.Time) string {
	return driverID + "|" + domain.Midnight(date).Format("2006-01-02")
}

func (m *MemoryTripRepository) TripOnDate(ctx context.Context, driverID string, date time.Time) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byDay[dayIndexKey(driverID, date)]
	return id, ok, nil
}

func (m *MemoryTripRepository) SaveTripPlan(ctx context.Context, plan *domain.TripPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := dayIndexKey(plan.Trip.DriverID, plan.Trip.StartTime)
	if existing, ok := m.byDay[key]; ok {
		return &domain.ConflictError{
			DriverID: plan.Trip.DriverID,
			Date:     domain.Midnight(plan.Trip.StartTime),
			TripID:   existing,
		}
	}

	m.plans[plan.Trip.ID] = plan
	m.byDay[key] = plan.Trip.ID
	return nil
}

func (m *MemoryTripRepository) GetTripPlan(ctx context.Context, tripID string) (*domain.TripPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[tripID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return p, nil
}

func (m *MemoryTripRepository) ListTrips(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Trip, 0, len(m.plans))
	for _, p := range m.plans {
		out = append(out, p.Trip)
	}
	return out, nil
}

func (m *MemoryTripRepository) UpdateTrip(ctx context.Context, trip *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[trip.ID]
	if !ok {
		return ports.ErrNotFound
	}
	p.Trip = trip
	return nil
}
