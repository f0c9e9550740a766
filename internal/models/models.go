package models

import "time"

const (
	// TeamSize is the fixed number of players on a roster.
	TeamSize = 4
	// WeeklyCapacity caps registrations per week.
	WeeklyCapacity = 12
)

type Player struct {
	ID    string  `json:"id" validate:"required,min=1,max=30"`
	Level float64 `json:"level" validate:"gte=30,lte=100"`
}

type TeamRegistration struct {
	TeamName         string           `json:"teamName"`
	Players          [TeamSize]Player `json:"players"`
	ContactEmail     string           `json:"contactEmail"`
	ContactPhone     string           `json:"contactPhone"`
	UTRNumber        string           `json:"utrNumber"`
	ScreenshotHash   string           `json:"screenshotHash"`
	ScreenshotURL    string           `json:"screenshotUrl,omitempty"`
	RegistrationTime time.Time        `json:"registrationTime"`
}

type RegistrationState struct {
	RegistrationWeekStart time.Time `json:"registrationWeekStart"`
	RegisteredTeamsCount  int       `json:"registeredTeamsCount"`
}

type WeeklyData struct {
	RegistrationWeekStart time.Time          `json:"registrationWeekStart"`
	Teams                 []TeamRegistration `json:"teams"`
}

type Rank string

const (
	RankFirst  Rank = "1st"
	RankSecond Rank = "2nd"
)

type Winner struct {
	Rank     Rank   `json:"rank"`
	TeamName string `json:"teamName"`
}

type WeeklyWinner struct {
	WeekStart  time.Time `json:"weekStart"`
	Winners    []Winner  `json:"winners"`
	TotalTeams int       `json:"totalTeams"`
}

// PublicTeam is the roster entry shown to everyone; contact and payment
// details stay in the admin view.
type PublicTeam struct {
	TeamName string           `json:"teamName"`
	Players  [TeamSize]Player `json:"players"`
}

type ArchiveEntry struct {
	WeekStart string `json:"weekStart"` // YYYY-MM-DD
	Key       string `json:"key"`
}

type RegistrationStatus struct {
	IsOpen          bool      `json:"isOpen"`
	WindowOpen      bool      `json:"windowOpen"`
	RegisteredTeams int       `json:"registeredTeams"`
	Capacity        int       `json:"capacity"`
	SlotsLeft       int       `json:"slotsLeft"`
	WeekStart       time.Time `json:"weekStart"`
	OpensAt         time.Time `json:"opensAt"`
	ClosesAt        time.Time `json:"closesAt"`
}
