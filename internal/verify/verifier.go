// Package verify checks payment screenshots against the transaction
// reference a team claims to have paid with.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"weekly-tourney/internal/config"
)

type Request struct {
	Image    []byte
	MIMEType string
	UTR      string
}

// Verdict is what the verifier concluded from the screenshot.
// TransactionDate is an ISO date or timestamp, empty when none was readable.
type Verdict struct {
	IsUTRMatch      bool   `json:"isUtrMatch"`
	Reason          string `json:"reason,omitempty"`
	TransactionDate string `json:"transactionDate,omitempty"`
}

type Verifier interface {
	Name() string
	Verify(ctx context.Context, req Request) (Verdict, error)
}

func New(ctx context.Context, cfg config.Config) (Verifier, error) {
	switch cfg.Verifier {
	case "gemini":
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "stub":
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		return Stub{Loc: loc}, nil
	default:
		return nil, fmt.Errorf("unknown verifier: %s", cfg.Verifier)
	}
}

func parseVerdict(raw string) (Verdict, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Verdict{}, fmt.Errorf("empty verifier response")
	}

	var v Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Verdict{}, fmt.Errorf("decode verifier response: %w", err)
	}
	v.Reason = strings.TrimSpace(v.Reason)
	v.TransactionDate = strings.TrimSpace(v.TransactionDate)
	return v, nil
}
