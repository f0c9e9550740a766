// Package registration runs the weekly registration pipeline and the
// read-only views over the roster, archives and winner history.
package registration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"weekly-tourney/internal/models"
	"weekly-tourney/internal/store"
	"weekly-tourney/internal/upload"
	"weekly-tourney/internal/verify"
	"weekly-tourney/internal/week"
)

type Notifier interface {
	RegistrationReceived(ctx context.Context, team models.TeamRegistration, week string, count int) error
	RegistrationConfirmed(ctx context.Context, team models.TeamRegistration, week string) error
	Congratulate(ctx context.Context, team models.TeamRegistration, rank models.Rank, week string) error
	PingAdmin(ctx context.Context, text string) error
}

// Mirror receives a copy of every saved registration.
type Mirror interface {
	AppendRegistration(ctx context.Context, week string, team models.TeamRegistration) error
}

type Deps struct {
	Store    store.Store
	Weeks    *week.Manager
	Verifier verify.Verifier
	Uploader upload.Uploader
	Notifier Notifier
	Mirror   Mirror // optional
	Logger   *zap.Logger
}

type Service struct {
	store    store.Store
	weeks    *week.Manager
	verifier verify.Verifier
	uploader upload.Uploader
	notifier Notifier
	mirror   Mirror
	logger   *zap.Logger
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    d.Store,
		weeks:    d.Weeks,
		verifier: d.Verifier,
		uploader: d.Uploader,
		notifier: d.Notifier,
		mirror:   d.Mirror,
		logger:   logger.Named("registration"),
	}
}

// RegisterTeam validates, verifies and saves one team. It never returns an
// error: every failure ends up in Result.Error with a user-facing message.
func (s *Service) RegisterTeam(ctx context.Context, form Form) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("registration panicked", zap.Any("panic", r), zap.Stack("stack"))
			res = Result{Error: genericFailure}
		}
	}()

	team, err := s.register(ctx, form)
	if err != nil {
		return s.failure(err, form)
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Team %s is registered. A confirmation email is on its way.", team.TeamName),
		Data:    &team,
	}
}

func (s *Service) failure(err error, form Form) Result {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return Result{Error: ve.Error(), Field: ve.Field}
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		s.logger.Info("registration rejected",
			zap.String("team", form.TeamName),
			zap.String("reason", rej.Message))
		return Result{Error: rej.Message}
	}
	s.logger.Error("registration failed", zap.String("team", form.TeamName), zap.Error(err))
	return Result{Error: genericFailure}
}

func (s *Service) register(ctx context.Context, form Form) (models.TeamRegistration, error) {
	status, data, err := s.weeks.Status(ctx)
	if err != nil {
		return models.TeamRegistration{}, err
	}
	if !status.WindowOpen {
		return models.TeamRegistration{}, reject("Registration is closed. It opens on Monday at 00:30 and closes on Sunday at 22:00.")
	}
	if status.RegisteredTeams >= models.WeeklyCapacity {
		return models.TeamRegistration{}, reject(fmt.Sprintf("Registration is full: all %d slots for this week are taken.", models.WeeklyCapacity))
	}

	sub, err := parseForm(form)
	if err != nil {
		return models.TeamRegistration{}, err
	}

	verdict := s.verifyPayment(ctx, sub)
	if !verdict.IsUTRMatch {
		reason := verdict.Reason
		if reason == "" {
			reason = "the screenshot does not show a payment with this UTR number"
		}
		return models.TeamRegistration{}, reject("Payment verification failed: " + reason)
	}

	if verdict.TransactionDate == "" {
		return models.TeamRegistration{}, reject("We could not read the transaction date on your screenshot. Please upload a clearer screenshot.")
	}
	paidAt, ok := parseTransactionDate(verdict.TransactionDate, s.weeks.Location())
	if !ok {
		return models.TeamRegistration{}, reject("We could not read the transaction date on your screenshot. Please upload a clearer screenshot.")
	}
	if paidAt.Before(data.RegistrationWeekStart) {
		return models.TeamRegistration{}, reject("This payment was made before the current registration week. Please pay for this week and upload the new screenshot.")
	}

	sum := sha256.Sum256(sub.Screenshot.Data)
	hash := hex.EncodeToString(sum[:])
	if err := checkDuplicates(data.Teams, sub, hash); err != nil {
		return models.TeamRegistration{}, err
	}

	weekDate := s.weeks.FormatDate(data.RegistrationWeekStart)
	url, err := s.uploader.Upload(ctx, upload.File{
		Name:        sub.Screenshot.Filename,
		ContentType: sub.Screenshot.ContentType,
		Data:        sub.Screenshot.Data,
	}, "screenshots/"+weekDate)
	if err != nil {
		level := zap.WarnLevel
		if errors.Is(err, upload.ErrDisabled) {
			level = zap.InfoLevel
		}
		s.logger.Log(level, "screenshot not stored, payment needs manual check",
			zap.String("team", sub.TeamName),
			zap.String("utr", sub.UTRNumber),
			zap.Error(err))
		url = ""
	}

	team := models.TeamRegistration{
		TeamName:         sub.TeamName,
		Players:          sub.Players,
		ContactEmail:     sub.ContactEmail,
		ContactPhone:     sub.ContactPhone,
		UTRNumber:        sub.UTRNumber,
		ScreenshotHash:   hash,
		ScreenshotURL:    url,
		RegistrationTime: s.weeks.Now(),
	}
	_, data, err = s.weeks.AppendTeam(ctx, data, team)
	if err != nil {
		return models.TeamRegistration{}, err
	}
	s.logger.Info("team registered",
		zap.String("team", team.TeamName),
		zap.String("week", weekDate),
		zap.Int("teams", len(data.Teams)))

	if s.mirror != nil {
		if err := s.mirror.AppendRegistration(ctx, weekDate, team); err != nil {
			s.logger.Warn("roster mirror failed", zap.String("team", team.TeamName), zap.Error(err))
		}
	}

	s.announce(ctx, team, weekDate, len(data.Teams))
	return team, nil
}

// verifyPayment fails closed: an unreachable verifier is a non-match.
func (s *Service) verifyPayment(ctx context.Context, sub submission) verify.Verdict {
	verdict, err := s.verifier.Verify(ctx, verify.Request{
		Image:    sub.Screenshot.Data,
		MIMEType: sub.Screenshot.ContentType,
		UTR:      sub.UTRNumber,
	})
	if err != nil {
		s.logger.Error("payment verification unavailable",
			zap.String("verifier", s.verifier.Name()),
			zap.String("utr", sub.UTRNumber),
			zap.Error(err))
		return verify.Verdict{
			IsUTRMatch: false,
			Reason:     "the verification service is unavailable right now, please try again in a few minutes",
		}
	}
	return verdict
}

func checkDuplicates(teams []models.TeamRegistration, sub submission, hash string) error {
	utr := normalize(sub.UTRNumber)
	email := normalize(sub.ContactEmail)
	for _, t := range teams {
		switch {
		case normalize(t.UTRNumber) == utr:
			return reject("This UTR number has already been used for a registration this week.")
		case normalize(t.ContactEmail) == email:
			return reject("This email address has already registered a team this week.")
		case t.ContactPhone == sub.ContactPhone:
			return reject("This phone number has already registered a team this week.")
		case t.ScreenshotHash == hash:
			return reject("This payment screenshot has already been used for a registration this week.")
		}
	}
	return nil
}

// announce sends the admin and team emails side by side. Failures are
// logged only; the registration is already saved.
func (s *Service) announce(ctx context.Context, team models.TeamRegistration, weekDate string, count int) {
	var g errgroup.Group
	g.Go(func() error {
		if err := s.notifier.RegistrationReceived(ctx, team, weekDate, count); err != nil {
			s.logger.Error("admin notification failed", zap.String("team", team.TeamName), zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := s.notifier.RegistrationConfirmed(ctx, team, weekDate); err != nil {
			s.logger.Error("confirmation email failed",
				zap.String("team", team.TeamName),
				zap.String("email", team.ContactEmail),
				zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		text := fmt.Sprintf("New team %q registered (%d/%d) for week %s", team.TeamName, count, models.WeeklyCapacity, weekDate)
		if team.ScreenshotURL == "" {
			text += ", screenshot upload failed: verify UTR " + team.UTRNumber + " manually"
		}
		if err := s.notifier.PingAdmin(ctx, text); err != nil {
			s.logger.Warn("admin ping failed", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()
}

var transactionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTransactionDate reads an ISO date or timestamp; values without a zone
// are taken in loc.
func parseTransactionDate(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range transactionDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
