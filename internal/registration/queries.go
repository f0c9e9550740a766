package registration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"weekly-tourney/internal/models"
	"weekly-tourney/internal/store"
)

func (s *Service) Status(ctx context.Context) (models.RegistrationStatus, error) {
	status, _, err := s.weeks.Status(ctx)
	return status, err
}

// PublicRoster lists this week's teams without contact or payment details.
func (s *Service) PublicRoster(ctx context.Context) ([]models.PublicTeam, error) {
	_, data, err := s.weeks.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicTeam, 0, len(data.Teams))
	for _, t := range data.Teams {
		out = append(out, models.PublicTeam{TeamName: t.TeamName, Players: t.Players})
	}
	return out, nil
}

func (s *Service) AdminRoster(ctx context.Context) (models.WeeklyData, error) {
	_, data, err := s.weeks.Resolve(ctx)
	return data, err
}

// Archives lists archived weeks, newest first.
func (s *Service) Archives(ctx context.Context) ([]models.ArchiveEntry, error) {
	keys, err := s.store.List(ctx, store.ArchivePrefix)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	out := make([]models.ArchiveEntry, 0, len(keys))
	for _, key := range keys {
		date, ok := store.ArchiveDate(key)
		if !ok {
			continue
		}
		out = append(out, models.ArchiveEntry{WeekStart: date, Key: key})
	}
	slices.SortFunc(out, func(a, b models.ArchiveEntry) int {
		return strings.Compare(b.WeekStart, a.WeekStart)
	})
	return out, nil
}

// Archive loads the roster archived for the week starting on date.
func (s *Service) Archive(ctx context.Context, date string) (models.WeeklyData, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return models.WeeklyData{}, ErrInvalidDate
	}
	var data models.WeeklyData
	if err := s.store.Get(ctx, store.ArchiveKey(date), &data); err != nil {
		return models.WeeklyData{}, err
	}
	if data.Teams == nil {
		data.Teams = []models.TeamRegistration{}
	}
	return data, nil
}

func (s *Service) WinnerHistory(ctx context.Context) ([]models.WeeklyWinner, error) {
	return s.winnerHistory(ctx)
}

// LookupUTR finds this week's registration paid with utr. Archives are not
// searched. A nil registration means no match.
func (s *Service) LookupUTR(ctx context.Context, utr string) (*models.TeamRegistration, error) {
	key := normalize(utr)
	if key == "" {
		return nil, nil
	}
	_, data, err := s.weeks.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range data.Teams {
		if normalize(t.UTRNumber) == key {
			return &t, nil
		}
	}
	return nil, nil
}

// IsNotFound reports whether err means a requested document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
