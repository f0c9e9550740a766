package registration

import (
	"errors"

	"weekly-tourney/internal/models"
)

var (
	ErrUnknownTeam    = errors.New("team is not registered this week")
	ErrInvalidWinners = errors.New("first and second place must be two different teams")
	ErrAmbiguousTeam  = errors.New("team name matches more than one team, use the exact name")
	ErrWinnerEmails   = errors.New("winner emails failed")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
)

const genericFailure = "Something went wrong while processing your registration. Please try again."

// ValidationError is a user-correctable problem with one submitted field.
// Field is the JSON path ("players[1].level"), Label its human name.
type ValidationError struct {
	Field   string
	Label   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Label + ": " + e.Message
}

// Rejection is a business rule turning a well-formed registration away.
type Rejection struct {
	Message string
}

func (e *Rejection) Error() string { return e.Message }

func reject(msg string) error { return &Rejection{Message: msg} }

// Result is what RegisterTeam hands back to its caller; it never carries
// internal error details.
type Result struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message,omitempty"`
	Data    *models.TeamRegistration `json:"data,omitempty"`
	Error   string                   `json:"error,omitempty"`
	Field   string                   `json:"field,omitempty"`
}
