package sheets

import (
	"context"
	"fmt"
	"time"

	"weekly-tourney/internal/models"
)

// AppendRegistration adds one row per team:
// week, time, team, 4x(player id, level), email, phone, utr, screenshot.
func (c *Client) AppendRegistration(ctx context.Context, week string, t models.TeamRegistration) error {
	row := []interface{}{week, t.RegistrationTime.Format(time.RFC3339), t.TeamName}
	for _, p := range t.Players {
		row = append(row, p.ID, p.Level)
	}
	row = append(row, t.ContactEmail, t.ContactPhone, t.UTRNumber, t.ScreenshotURL)

	if err := c.api.Append(ctx, c.spreadsheetID, SheetRegistrations+"!A:Z", row); err != nil {
		return fmt.Errorf("append registration row: %w", err)
	}
	return nil
}
