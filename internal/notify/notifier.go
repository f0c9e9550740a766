package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"weekly-tourney/internal/config"
	"weekly-tourney/internal/models"
)

type Notifier struct {
	mailer Mailer
	pinger Pinger
	from   string
	admin  string
}

func NewNotifier(mailer Mailer, pinger Pinger, from, admin string) *Notifier {
	return &Notifier{mailer: mailer, pinger: pinger, from: from, admin: admin}
}

// New wires the mailer and the optional Telegram pinger from cfg.
func New(cfg config.Config, logger *zap.Logger) (*Notifier, error) {
	var mailer Mailer
	switch cfg.Mailer {
	case "resend":
		mailer = NewResend(cfg.ResendAPIKey)
	case "log":
		mailer = NewLogMailer(logger)
	default:
		return nil, fmt.Errorf("unknown mailer: %s", cfg.Mailer)
	}

	var pinger Pinger
	if cfg.TelegramToken != "" {
		tg, err := NewTelegram(cfg.TelegramToken, cfg.TelegramAdminChatID)
		if err != nil {
			return nil, err
		}
		pinger = tg
	}
	return NewNotifier(mailer, pinger, cfg.MailFrom, cfg.AdminEmail), nil
}

type teamMail struct {
	Team     models.TeamRegistration
	Week     string
	Count    int
	Capacity int
	Rank     models.Rank
}

// RegistrationReceived tells the admin about a new team. count is the
// number of teams registered this week including this one.
func (n *Notifier) RegistrationReceived(ctx context.Context, team models.TeamRegistration, week string, count int) error {
	html, err := render("admin_registration", teamMail{Team: team, Week: week, Count: count, Capacity: models.WeeklyCapacity})
	if err != nil {
		return fmt.Errorf("render admin email: %w", err)
	}
	return n.mailer.Send(ctx, Email{
		From:    n.from,
		To:      []string{n.admin},
		Subject: fmt.Sprintf("New registration: %s (%d/%d)", team.TeamName, count, models.WeeklyCapacity),
		HTML:    html,
	})
}

func (n *Notifier) RegistrationConfirmed(ctx context.Context, team models.TeamRegistration, week string) error {
	html, err := render("user_confirmation", teamMail{Team: team, Week: week})
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}
	return n.mailer.Send(ctx, Email{
		From:    n.from,
		To:      []string{team.ContactEmail},
		Subject: "Registration confirmed: " + team.TeamName,
		HTML:    html,
	})
}

func (n *Notifier) Congratulate(ctx context.Context, team models.TeamRegistration, rank models.Rank, week string) error {
	html, err := render("winner", teamMail{Team: team, Week: week, Rank: rank})
	if err != nil {
		return fmt.Errorf("render winner email: %w", err)
	}
	return n.mailer.Send(ctx, Email{
		From:    n.from,
		To:      []string{team.ContactEmail},
		Subject: fmt.Sprintf("Congratulations on finishing %s!", rank),
		HTML:    html,
	})
}

// PingAdmin is a no-op when no pinger is configured.
func (n *Notifier) PingAdmin(ctx context.Context, text string) error {
	if n.pinger == nil {
		return nil
	}
	return n.pinger.Ping(ctx, text)
}
