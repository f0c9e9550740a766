package registration

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormTrimsAndConverts(t *testing.T) {
	form := validForm(3)
	form.TeamName = "  Spaced Out  "
	form.ContactEmail = " captain3@example.com\n"
	form.Players[0].Level = " 30 "

	sub, err := parseForm(form)
	require.NoError(t, err)
	assert.Equal(t, "Spaced Out", sub.TeamName)
	assert.Equal(t, "captain3@example.com", sub.ContactEmail)
	assert.Equal(t, 30.0, sub.Players[0].Level)
	assert.Equal(t, "p3-a", sub.Players[0].ID)
	assert.Equal(t, "image/png", sub.Screenshot.ContentType)
}

func TestParseFormFieldErrors(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Form)
		field  string
		msg    string
	}{
		"short team name": {
			mutate: func(f *Form) { f.TeamName = "A" },
			field:  "teamName",
			msg:    "Team name: must be at least 2 characters",
		},
		"long team name": {
			mutate: func(f *Form) { f.TeamName = strings.Repeat("x", 51) },
			field:  "teamName",
			msg:    "Team name: must be at most 50 characters",
		},
		"missing player id": {
			mutate: func(f *Form) { f.Players[1].ID = "  " },
			field:  "players[1].id",
			msg:    "Player 2 ID: is required",
		},
		"level not a number": {
			mutate: func(f *Form) { f.Players[3].Level = "pro" },
			field:  "players[3].level",
			msg:    "Player 4 level: must be a number",
		},
		"level too high": {
			mutate: func(f *Form) { f.Players[0].Level = "100.5" },
			field:  "players[0].level",
			msg:    "Player 1 level: must be at most 100",
		},
		"missing level": {
			mutate: func(f *Form) { f.Players[2].Level = "" },
			field:  "players[2].level",
			msg:    "Player 3 level: is required",
		},
		"bad email": {
			mutate: func(f *Form) { f.ContactEmail = "not-an-email" },
			field:  "contactEmail",
			msg:    "Contact email: must be a valid email address",
		},
		"short phone": {
			mutate: func(f *Form) { f.ContactPhone = "12345" },
			field:  "contactPhone",
			msg:    "Contact phone: must be exactly 10 digits",
		},
		"phone with letters": {
			mutate: func(f *Form) { f.ContactPhone = "98765abcde" },
			field:  "contactPhone",
			msg:    "Contact phone: must be exactly 10 digits",
		},
		"short utr": {
			mutate: func(f *Form) { f.UTRNumber = "UTR1" },
			field:  "utrNumber",
			msg:    "UTR number: must be at least 12 characters",
		},
		"utr with symbols": {
			mutate: func(f *Form) { f.UTRNumber = "UTR-0000-0000-01" },
			field:  "utrNumber",
			msg:    "UTR number: must contain only letters and digits",
		},
		"missing screenshot": {
			mutate: func(f *Form) { f.Screenshot = nil },
			field:  "screenshot",
			msg:    "Screenshot: a payment screenshot is required",
		},
		"oversized screenshot": {
			mutate: func(f *Form) { f.Screenshot.Data = make([]byte, MaxScreenshotBytes+1) },
			field:  "screenshot",
			msg:    "Screenshot: must be 10MB or smaller",
		},
		"pdf screenshot": {
			mutate: func(f *Form) { f.Screenshot.ContentType = "application/pdf" },
			field:  "screenshot",
			msg:    "Screenshot: must be a JPEG, PNG or WEBP image",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			form := validForm(1)
			tc.mutate(&form)

			_, err := parseForm(form)
			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %T", err)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.msg, ve.Error())
		})
	}
}

func TestParseFormReportsFirstFieldInFormOrder(t *testing.T) {
	form := validForm(1)
	form.UTRNumber = ""
	form.Players[1].Level = "10"
	form.ContactEmail = "nope"

	_, err := parseForm(form)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "players[1].level", ve.Field)
}

func TestImageTypeSniffsGenericUploads(t *testing.T) {
	s := &Screenshot{ContentType: "application/octet-stream", Data: pngBytes}
	assert.Equal(t, "image/png", imageType(s))

	s = &Screenshot{ContentType: "image/jpg", Data: []byte("whatever")}
	assert.Equal(t, "image/jpeg", imageType(s))

	s = &Screenshot{Data: []byte("plain text")}
	assert.Equal(t, "text/plain", imageType(s))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, normalize("UTR 1234\t5678"), normalize("utr12345678"))
	assert.Equal(t, normalize(" Captain@Example.com "), normalize("captain@example.com"))
	assert.NotEqual(t, normalize("abc"), normalize("abd"))
}
