package registration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"weekly-tourney/internal/models"
	"weekly-tourney/internal/store"
)

// ProcessAndEmailWinners congratulates the top two teams of the current week
// and records them in the winner history. Nothing is recorded unless both
// emails were sent.
func (s *Service) ProcessAndEmailWinners(ctx context.Context, first, second string) (models.WeeklyWinner, error) {
	if normalize(first) == "" || normalize(second) == "" {
		return models.WeeklyWinner{}, ErrInvalidWinners
	}

	_, data, err := s.weeks.Resolve(ctx)
	if err != nil {
		return models.WeeklyWinner{}, err
	}
	firstTeam, err := findTeam(data.Teams, first)
	if err != nil {
		return models.WeeklyWinner{}, err
	}
	secondTeam, err := findTeam(data.Teams, second)
	if err != nil {
		return models.WeeklyWinner{}, err
	}
	if firstTeam.TeamName == secondTeam.TeamName {
		return models.WeeklyWinner{}, ErrInvalidWinners
	}

	weekDate := s.weeks.FormatDate(data.RegistrationWeekStart)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.notifier.Congratulate(gctx, firstTeam, models.RankFirst, weekDate)
	})
	g.Go(func() error {
		return s.notifier.Congratulate(gctx, secondTeam, models.RankSecond, weekDate)
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("winner emails failed", zap.String("week", weekDate), zap.Error(err))
		return models.WeeklyWinner{}, fmt.Errorf("%w: %w", ErrWinnerEmails, err)
	}

	history, err := s.winnerHistory(ctx)
	if err != nil {
		return models.WeeklyWinner{}, err
	}
	record := models.WeeklyWinner{
		WeekStart: data.RegistrationWeekStart,
		Winners: []models.Winner{
			{Rank: models.RankFirst, TeamName: firstTeam.TeamName},
			{Rank: models.RankSecond, TeamName: secondTeam.TeamName},
		},
		TotalTeams: len(data.Teams),
	}
	history = slices.DeleteFunc(history, func(w models.WeeklyWinner) bool {
		return w.WeekStart.Equal(record.WeekStart)
	})
	history = append([]models.WeeklyWinner{record}, history...)
	if err := s.store.Put(ctx, store.KeyWinners, history); err != nil {
		return models.WeeklyWinner{}, fmt.Errorf("save winners: %w", err)
	}

	s.logger.Info("winners recorded",
		zap.String("week", weekDate),
		zap.String("first", firstTeam.TeamName),
		zap.String("second", secondTeam.TeamName))
	return record, nil
}

// findTeam prefers an exact name match. Otherwise the name must match
// exactly one team once spacing and case are ignored.
func findTeam(teams []models.TeamRegistration, name string) (models.TeamRegistration, error) {
	name = strings.TrimSpace(name)
	for _, t := range teams {
		if t.TeamName == name {
			return t, nil
		}
	}

	key := normalize(name)
	var matches []models.TeamRegistration
	for _, t := range teams {
		if normalize(t.TeamName) == key {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.TeamRegistration{}, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
	case 1:
		return matches[0], nil
	default:
		return models.TeamRegistration{}, fmt.Errorf("%w: %q", ErrAmbiguousTeam, name)
	}
}

func (s *Service) winnerHistory(ctx context.Context) ([]models.WeeklyWinner, error) {
	var history []models.WeeklyWinner
	err := s.store.Get(ctx, store.KeyWinners, &history)
	if errors.Is(err, store.ErrNotFound) {
		return []models.WeeklyWinner{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load winners: %w", err)
	}
	if history == nil {
		history = []models.WeeklyWinner{}
	}
	return history, nil
}
