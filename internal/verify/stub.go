package verify

import (
	"context"
	"strings"
	"time"
)

// Stub accepts every non-empty reference and dates the payment today in Loc
// (process local time when nil). It is meant for local development without
// a Gemini key.
type Stub struct {
	Loc *time.Location
	now func() time.Time
}

func (Stub) Name() string { return "stub" }

func (s Stub) Verify(ctx context.Context, req Request) (Verdict, error) {
	if strings.TrimSpace(req.UTR) == "" {
		return Verdict{Reason: "no transaction reference given"}, nil
	}
	return Verdict{
		IsUTRMatch:      true,
		TransactionDate: s.today(),
	}, nil
}

func (s Stub) today() string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	loc := s.Loc
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc).Format("2006-01-02")
}
