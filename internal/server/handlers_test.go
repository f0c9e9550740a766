package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"weekly-tourney/internal/models"
	"weekly-tourney/internal/registration"
	"weekly-tourney/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	form       registration.Form
	result     registration.Result
	roster     models.WeeklyData
	archiveErr error
	winnersErr error
	first      string
	second     string
	lookup     *models.TeamRegistration
	panicOn    string
}

func (f *fakeService) RegisterTeam(ctx context.Context, form registration.Form) registration.Result {
	f.form = form
	return f.result
}

func (f *fakeService) Status(ctx context.Context) (models.RegistrationStatus, error) {
	if f.panicOn == "status" {
		panic("status exploded")
	}
	return models.RegistrationStatus{IsOpen: true, WindowOpen: true, RegisteredTeams: 3, Capacity: 12, SlotsLeft: 9}, nil
}

func (f *fakeService) PublicRoster(ctx context.Context) ([]models.PublicTeam, error) {
	out := []models.PublicTeam{}
	for _, t := range f.roster.Teams {
		out = append(out, models.PublicTeam{TeamName: t.TeamName, Players: t.Players})
	}
	return out, nil
}

func (f *fakeService) AdminRoster(ctx context.Context) (models.WeeklyData, error) {
	return f.roster, nil
}

func (f *fakeService) Archives(ctx context.Context) ([]models.ArchiveEntry, error) {
	return []models.ArchiveEntry{{WeekStart: "2024-05-27", Key: store.ArchiveKey("2024-05-27")}}, nil
}

func (f *fakeService) Archive(ctx context.Context, date string) (models.WeeklyData, error) {
	if f.archiveErr != nil {
		return models.WeeklyData{}, f.archiveErr
	}
	return f.roster, nil
}

func (f *fakeService) WinnerHistory(ctx context.Context) ([]models.WeeklyWinner, error) {
	return []models.WeeklyWinner{}, nil
}

func (f *fakeService) LookupUTR(ctx context.Context, utr string) (*models.TeamRegistration, error) {
	return f.lookup, nil
}

func (f *fakeService) ProcessAndEmailWinners(ctx context.Context, first, second string) (models.WeeklyWinner, error) {
	f.first, f.second = first, second
	if f.winnersErr != nil {
		return models.WeeklyWinner{}, f.winnersErr
	}
	return models.WeeklyWinner{
		WeekStart: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Winners: []models.Winner{
			{Rank: models.RankFirst, TeamName: first},
			{Rank: models.RankSecond, TeamName: second},
		},
		TotalTeams: 5,
	}, nil
}

func sampleTeam() models.TeamRegistration {
	return models.TeamRegistration{
		TeamName:     "Night Owls",
		ContactEmail: "owls@example.com",
		ContactPhone: "9876543210",
		UTRNumber:    "UTR123456789012",
	}
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, fields map[string]string, screenshot []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if screenshot != nil {
		fw, err := mw.CreateFormFile("screenshot", "pay.png")
		require.NoError(t, err)
		_, err = fw.Write(screenshot)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/registrations", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthzAndRequestID(t *testing.T) {
	r := New(&fakeService{}, zap.NewNop())

	w := do(t, r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = do(t, r, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRegisterParsesMultipartForm(t *testing.T) {
	team := sampleTeam()
	svc := &fakeService{result: registration.Result{Success: true, Message: "ok", Data: &team}}
	r := New(svc, zap.NewNop())

	fields := map[string]string{
		"teamName":     "Night Owls",
		"contactEmail": "owls@example.com",
		"contactPhone": "9876543210",
		"utrNumber":    "UTR123456789012",
	}
	for i := 1; i <= models.TeamSize; i++ {
		fields[fmt.Sprintf("player%dId", i)] = fmt.Sprintf("owl%d", i)
		fields[fmt.Sprintf("player%dLevel", i)] = fmt.Sprintf("%d", 40+i)
	}
	w := do(t, r, multipartRequest(t, fields, []byte("\x89PNG\r\n\x1a\nfake")))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Night Owls", svc.form.TeamName)
	assert.Equal(t, "owl3", svc.form.Players[2].ID)
	assert.Equal(t, "44", svc.form.Players[3].Level)
	require.NotNil(t, svc.form.Screenshot)
	assert.Equal(t, "pay.png", svc.form.Screenshot.Filename)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nfake"), svc.form.Screenshot.Data)

	var res registration.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "Night Owls", res.Data.TeamName)
}

func TestRegisterWithoutScreenshotStillReachesValidation(t *testing.T) {
	svc := &fakeService{result: registration.Result{Error: "Screenshot: a payment screenshot is required", Field: "screenshot"}}
	r := New(svc, zap.NewNop())

	w := do(t, r, multipartRequest(t, map[string]string{"teamName": "Night Owls"}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Nil(t, svc.form.Screenshot)
	assert.Contains(t, w.Body.String(), `"field":"screenshot"`)
}

func TestRegisterRejectsNonMultipart(t *testing.T) {
	r := New(&fakeService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/registrations", strings.NewReader(`{"teamName":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(t, r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLookupUTR(t *testing.T) {
	svc := &fakeService{}
	r := New(svc, zap.NewNop())

	w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/registrations/utr/UTR123456789012", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	team := sampleTeam()
	svc.lookup = &team
	w = do(t, r, httptest.NewRequest(http.MethodGet, "/api/registrations/utr/UTR123456789012", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Night Owls")
}

func TestPublicTeamsHideContactDetails(t *testing.T) {
	svc := &fakeService{roster: models.WeeklyData{Teams: []models.TeamRegistration{sampleTeam()}}}
	r := New(svc, zap.NewNop())

	w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/teams", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Night Owls")
	assert.NotContains(t, w.Body.String(), "owls@example.com")

	w = do(t, r, httptest.NewRequest(http.MethodGet, "/api/admin/teams", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "owls@example.com")
}

func TestAdminArchive(t *testing.T) {
	svc := &fakeService{}
	r := New(svc, zap.NewNop())

	w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/admin/archives", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2024-05-27")

	svc.archiveErr = registration.ErrInvalidDate
	w = do(t, r, httptest.NewRequest(http.MethodGet, "/api/admin/archives/yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.archiveErr = fmt.Errorf("read: %w", store.ErrNotFound)
	w = do(t, r, httptest.NewRequest(http.MethodGet, "/api/admin/archives/2020-01-06", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminSetWinners(t *testing.T) {
	cases := map[string]struct {
		body string
		err  error
		code int
	}{
		"ok":            {body: `{"first":"A","second":"B"}`, code: http.StatusOK},
		"missing field": {body: `{"first":"A"}`, code: http.StatusBadRequest},
		"unknown team":  {body: `{"first":"A","second":"Z"}`, err: registration.ErrUnknownTeam, code: http.StatusBadRequest},
		"same team":     {body: `{"first":"A","second":"A"}`, err: registration.ErrInvalidWinners, code: http.StatusBadRequest},
		"ambiguous":     {body: `{"first":"AB","second":"B"}`, err: registration.ErrAmbiguousTeam, code: http.StatusBadRequest},
		"email failure": {body: `{"first":"A","second":"B"}`, err: fmt.Errorf("%w: smtp down", registration.ErrWinnerEmails), code: http.StatusBadGateway},
		"store failure": {body: `{"first":"A","second":"B"}`, err: fmt.Errorf("save winners: disk full"), code: http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeService{winnersErr: tc.err}
			r := New(svc, zap.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/api/admin/winners", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := do(t, r, req)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			assert.NotContains(t, w.Body.String(), "disk full")
		})
	}
}

func TestRecoveryHidesPanics(t *testing.T) {
	r := New(&fakeService{panicOn: "status"}, zap.NewNop())

	w := do(t, r, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
}
