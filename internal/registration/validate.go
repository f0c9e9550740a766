package registration

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"weekly-tourney/internal/models"
)

const MaxScreenshotBytes = 10 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Form is the raw registration as submitted; nothing in it is trusted.
type Form struct {
	TeamName     string
	Players      [models.TeamSize]PlayerInput
	ContactEmail string
	ContactPhone string
	UTRNumber    string
	Screenshot   *Screenshot
}

type PlayerInput struct {
	ID    string
	Level string
}

type Screenshot struct {
	Filename    string
	ContentType string
	Data        []byte
}

type submission struct {
	TeamName     string                         `json:"teamName" validate:"required,min=2,max=50"`
	Players      [models.TeamSize]models.Player `json:"players" validate:"dive"`
	ContactEmail string                         `json:"contactEmail" validate:"required,email"`
	ContactPhone string                         `json:"contactPhone" validate:"required,phone10"`
	UTRNumber    string                         `json:"utrNumber" validate:"required,min=12,max=30,alphanum"`
	Screenshot   Screenshot                     `json:"-" validate:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}

// parseForm trims and converts the raw fields, then validates them. The
// error, if any, is the first failing field in form order.
func parseForm(f Form) (submission, error) {
	sub := submission{
		TeamName:     strings.TrimSpace(f.TeamName),
		ContactEmail: strings.TrimSpace(f.ContactEmail),
		ContactPhone: strings.TrimSpace(f.ContactPhone),
		UTRNumber:    strings.TrimSpace(f.UTRNumber),
	}

	var problems []*ValidationError
	for i, p := range f.Players {
		sub.Players[i].ID = strings.TrimSpace(p.ID)
		raw := strings.TrimSpace(p.Level)
		field := fmt.Sprintf("players[%d].level", i)
		if raw == "" {
			problems = append(problems, fieldError(field, "is required"))
			continue
		}
		level, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			problems = append(problems, fieldError(field, "must be a number"))
			continue
		}
		sub.Players[i].Level = level
	}

	if err := validate.Struct(sub); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return sub, err
		}
		for _, fe := range errs {
			field := fieldPath(fe.Namespace())
			if slices.ContainsFunc(problems, func(p *ValidationError) bool { return p.Field == field }) {
				continue
			}
			problems = append(problems, fieldError(field, describe(fe)))
		}
	}

	if p := checkScreenshot(f.Screenshot); p != nil {
		problems = append(problems, p)
	} else {
		sub.Screenshot = *f.Screenshot
		sub.Screenshot.ContentType = imageType(f.Screenshot)
	}

	if len(problems) == 0 {
		return sub, nil
	}
	slices.SortStableFunc(problems, func(a, b *ValidationError) int {
		return fieldRank(a.Field) - fieldRank(b.Field)
	})
	return sub, problems[0]
}

func checkScreenshot(s *Screenshot) *ValidationError {
	if s == nil || len(s.Data) == 0 {
		return fieldError("screenshot", "a payment screenshot is required")
	}
	if len(s.Data) > MaxScreenshotBytes {
		return fieldError("screenshot", "must be 10MB or smaller")
	}
	if !slices.Contains(allowedImageTypes, imageType(s)) {
		return fieldError("screenshot", "must be a JPEG, PNG or WEBP image")
	}
	return nil
}

// imageType trusts the declared content type unless it is missing or
// generic, in which case the bytes are sniffed.
func imageType(s *Screenshot) string {
	ct, _, err := mime.ParseMediaType(s.ContentType)
	if err != nil || ct == "" || ct == "application/octet-stream" {
		ct, _, _ = mime.ParseMediaType(http.DetectContentType(s.Data))
	}
	ct = strings.ToLower(ct)
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	return ct
}

// fieldPath turns "submission.players[0].id" into "players[0].id".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldRank(field string) int {
	switch field {
	case "teamName":
		return 0
	case "contactEmail":
		return 100
	case "contactPhone":
		return 101
	case "utrNumber":
		return 102
	case "screenshot":
		return 103
	}
	var i int
	var attr string
	if _, err := fmt.Sscanf(field, "players[%d].%s", &i, &attr); err == nil {
		if attr == "level" {
			return 2 + 2*i
		}
		return 1 + 2*i
	}
	return 99
}

func fieldLabel(field string) string {
	switch field {
	case "teamName":
		return "Team name"
	case "contactEmail":
		return "Contact email"
	case "contactPhone":
		return "Contact phone"
	case "utrNumber":
		return "UTR number"
	case "screenshot":
		return "Screenshot"
	}
	var i int
	var attr string
	if _, err := fmt.Sscanf(field, "players[%d].%s", &i, &attr); err == nil {
		if attr == "level" {
			return fmt.Sprintf("Player %d level", i+1)
		}
		return fmt.Sprintf("Player %d ID", i+1)
	}
	return field
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Label: fieldLabel(field), Message: msg}
}

func describe(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if text {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if text {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "phone10":
		return "must be exactly 10 digits"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "is invalid"
	}
}
