// Package sheets mirrors registrations into a Google spreadsheet so the
// organisers can work from a familiar view. The JSON store stays the source
// of truth.
package sheets

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

const SheetRegistrations = "Registrations"

// appender is the slice of the Sheets API the mirror needs.
type appender interface {
	Append(ctx context.Context, spreadsheetID, rng string, row []interface{}) error
}

type Client struct {
	api           appender
	spreadsheetID string
}

func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return &Client{api: valuesAPI{srv: srv}, spreadsheetID: spreadsheetID}, nil
}

type valuesAPI struct {
	srv *sheetsv4.Service
}

func (v valuesAPI) Append(ctx context.Context, spreadsheetID, rng string, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := v.srv.Spreadsheets.Values.Append(spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
