// Package week owns the registration week: where it starts, when its window
// is open, and rolling the roster over once a new week begins.
package week

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"weekly-tourney/internal/models"
	"weekly-tourney/internal/store"
)

const dateLayout = "2006-01-02"

type Manager struct {
	store  store.Store
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Manager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(st store.Store, loc *time.Location, logger *zap.Logger, opts ...Option) *Manager {
	if loc == nil {
		loc = time.Local
	}
	m := &Manager{
		store:  st,
		loc:    loc,
		now:    time.Now,
		logger: logger.Named("week"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Now() time.Time {
	return m.now().In(m.loc)
}

func (m *Manager) Location() *time.Location {
	return m.loc
}

// WeekStart returns the Monday 00:00 at or before t.
func (m *Manager) WeekStart(t time.Time) time.Time {
	t = t.In(m.loc)
	sinceMonday := (int(t.Weekday()) + 6) % 7
	y, mo, d := t.Date()
	return time.Date(y, mo, d-sinceMonday, 0, 0, 0, 0, m.loc)
}

// Window returns [Monday 00:30, Sunday 22:00) for the week starting at weekStart.
func (m *Manager) Window(weekStart time.Time) (opens, closes time.Time) {
	y, mo, d := weekStart.In(m.loc).Date()
	opens = time.Date(y, mo, d, 0, 30, 0, 0, m.loc)
	closes = time.Date(y, mo, d+6, 22, 0, 0, 0, m.loc)
	return opens, closes
}

func (m *Manager) WindowOpen(t time.Time) bool {
	opens, closes := m.Window(m.WeekStart(t))
	return !t.Before(opens) && t.Before(closes)
}

// FormatDate renders a week start as YYYY-MM-DD in the manager's location.
func (m *Manager) FormatDate(t time.Time) string {
	return t.In(m.loc).Format(dateLayout)
}

// Resolve loads the active week, archiving and resetting the roster when the
// persisted week is behind the calendar, and repairing the team counter when
// it drifted from the roster.
func (m *Manager) Resolve(ctx context.Context) (models.RegistrationState, models.WeeklyData, error) {
	current := m.WeekStart(m.now())

	var state models.RegistrationState
	err := m.store.Get(ctx, store.KeyState, &state)
	if errors.Is(err, store.ErrNotFound) {
		m.logger.Info("initializing registration state", zap.Time("week_start", current))
		return m.reset(ctx, current)
	}
	if err != nil {
		return models.RegistrationState{}, models.WeeklyData{}, fmt.Errorf("load registration state: %w", err)
	}

	data, err := m.loadRoster(ctx, state.RegistrationWeekStart)
	if err != nil {
		return models.RegistrationState{}, models.WeeklyData{}, err
	}

	if state.RegistrationWeekStart.Before(current) {
		if err := m.archive(ctx, data); err != nil {
			return models.RegistrationState{}, models.WeeklyData{}, err
		}
		return m.reset(ctx, current)
	}

	if state.RegisteredTeamsCount != len(data.Teams) {
		m.logger.Warn("registered teams count drifted from roster",
			zap.Int("count", state.RegisteredTeamsCount),
			zap.Int("teams", len(data.Teams)))
		state.RegisteredTeamsCount = len(data.Teams)
		if err := m.store.Put(ctx, store.KeyState, state); err != nil {
			return models.RegistrationState{}, models.WeeklyData{}, fmt.Errorf("save registration state: %w", err)
		}
	}
	return state, data, nil
}

// AppendTeam adds team to data and persists the roster and the counter.
func (m *Manager) AppendTeam(ctx context.Context, data models.WeeklyData, team models.TeamRegistration) (models.RegistrationState, models.WeeklyData, error) {
	data.Teams = append(slices.Clip(data.Teams), team)
	if err := m.store.Put(ctx, store.KeyRegistrations, data); err != nil {
		return models.RegistrationState{}, models.WeeklyData{}, fmt.Errorf("save registrations: %w", err)
	}

	state := models.RegistrationState{
		RegistrationWeekStart: data.RegistrationWeekStart,
		RegisteredTeamsCount:  len(data.Teams),
	}
	if err := m.store.Put(ctx, store.KeyState, state); err != nil {
		return models.RegistrationState{}, models.WeeklyData{}, fmt.Errorf("save registration state: %w", err)
	}
	return state, data, nil
}

// Status resolves the week and reports whether registration is accepting teams.
func (m *Manager) Status(ctx context.Context) (models.RegistrationStatus, models.WeeklyData, error) {
	_, data, err := m.Resolve(ctx)
	if err != nil {
		return models.RegistrationStatus{}, models.WeeklyData{}, err
	}

	now := m.Now()
	weekStart := m.WeekStart(now)
	opens, closes := m.Window(weekStart)
	windowOpen := m.WindowOpen(now)
	count := len(data.Teams)

	return models.RegistrationStatus{
		IsOpen:          windowOpen && count < models.WeeklyCapacity,
		WindowOpen:      windowOpen,
		RegisteredTeams: count,
		Capacity:        models.WeeklyCapacity,
		SlotsLeft:       max(models.WeeklyCapacity-count, 0),
		WeekStart:       weekStart,
		OpensAt:         opens,
		ClosesAt:        closes,
	}, data, nil
}

func (m *Manager) loadRoster(ctx context.Context, weekStart time.Time) (models.WeeklyData, error) {
	var data models.WeeklyData
	err := m.store.Get(ctx, store.KeyRegistrations, &data)
	if errors.Is(err, store.ErrNotFound) {
		return models.WeeklyData{RegistrationWeekStart: weekStart, Teams: []models.TeamRegistration{}}, nil
	}
	if err != nil {
		return models.WeeklyData{}, fmt.Errorf("load registrations: %w", err)
	}
	if data.RegistrationWeekStart.IsZero() {
		data.RegistrationWeekStart = weekStart
	}
	if data.Teams == nil {
		data.Teams = []models.TeamRegistration{}
	}
	return data, nil
}

func (m *Manager) archive(ctx context.Context, data models.WeeklyData) error {
	if len(data.Teams) == 0 {
		m.logger.Info("skipping archive of empty week", zap.Time("week_start", data.RegistrationWeekStart))
		return nil
	}
	key := store.ArchiveKey(m.FormatDate(data.RegistrationWeekStart))
	if err := m.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	m.logger.Info("archived week", zap.String("key", key), zap.Int("teams", len(data.Teams)))
	return nil
}

func (m *Manager) reset(ctx context.Context, weekStart time.Time) (models.RegistrationState, models.WeeklyData, error) {
	data := models.WeeklyData{RegistrationWeekStart: weekStart, Teams: []models.TeamRegistration{}}
	if err := m.store.Put(ctx, store.KeyRegistrations, data); err != nil {
		return models.RegistrationState{}, models.WeeklyData{}, fmt.Errorf("reset registrations: %w", err)
	}
	state := models.RegistrationState{RegistrationWeekStart: weekStart}
	if err := m.store.Put(ctx, store.KeyState, state); err != nil {
		return models.RegistrationState{}, models.WeeklyData{}, fmt.Errorf("reset registration state: %w", err)
	}
	return state, data, nil
}
