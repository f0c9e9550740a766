package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weekly-tourney/internal/registration"
)

// ------------------- Public -------------------

func Status(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Status(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

// POST /api/registrations (multipart/form-data)
func Register(svc Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := readForm(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res := svc.RegisterTeam(c.Request.Context(), form)
		if !res.Success {
			c.JSON(http.StatusUnprocessableEntity, res)
			return
		}
		audit(logger, c, "team_registered", fmt.Sprintf("team=%q utr=%s", res.Data.TeamName, res.Data.UTRNumber))
		c.JSON(http.StatusOK, res)
	}
}

func PublicTeams(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := svc.PublicRoster(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, teams)
	}
}

// GET /api/registrations/utr/:utr
func LookupUTR(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		team, err := svc.LookupUTR(c.Request.Context(), c.Param("utr"))
		if err != nil {
			fail(c, err)
			return
		}
		if team == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no registration with this UTR this week"})
			return
		}
		c.JSON(http.StatusOK, team)
	}
}

func Winners(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		history, err := svc.WinnerHistory(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, history)
	}
}

// ------------------- Admin -------------------

func AdminTeams(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := svc.AdminRoster(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func AdminArchives(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.Archives(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/admin/archives/:date (YYYY-MM-DD)
func AdminArchive(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := svc.Archive(c.Request.Context(), c.Param("date"))
		switch {
		case errors.Is(err, registration.ErrInvalidDate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case registration.IsNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "no archive for this week"})
			return
		case err != nil:
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

type winnersReq struct {
	First  string `json:"first" binding:"required"`
	Second string `json:"second" binding:"required"`
}

// POST /api/admin/winners
func AdminSetWinners(svc Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req winnersReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "first and second are required"})
			return
		}

		record, err := svc.ProcessAndEmailWinners(c.Request.Context(), req.First, req.Second)
		switch {
		case errors.Is(err, registration.ErrInvalidWinners),
			errors.Is(err, registration.ErrUnknownTeam),
			errors.Is(err, registration.ErrAmbiguousTeam):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, registration.ErrWinnerEmails):
			_ = c.Error(err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not email the winners, nothing was recorded"})
			return
		case err != nil:
			fail(c, err)
			return
		}
		audit(logger, c, "winners_recorded", fmt.Sprintf("first=%q second=%q", record.Winners[0].TeamName, record.Winners[1].TeamName))
		c.JSON(http.StatusOK, record)
	}
}

// ------------------- helpers -------------------

// fail hides internal errors from the caller; the request logger reports them.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func readForm(c *gin.Context) (registration.Form, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return registration.Form{}, errors.New("expected multipart/form-data")
	}
	form := registration.Form{
		TeamName:     c.PostForm("teamName"),
		ContactEmail: c.PostForm("contactEmail"),
		ContactPhone: c.PostForm("contactPhone"),
		UTRNumber:    c.PostForm("utrNumber"),
	}
	for i := range form.Players {
		form.Players[i].ID = c.PostForm(fmt.Sprintf("player%dId", i+1))
		form.Players[i].Level = c.PostForm(fmt.Sprintf("player%dLevel", i+1))
	}

	fh, err := c.FormFile("screenshot")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return registration.Form{}, errors.New("could not read the upload")
	}
	f, err := fh.Open()
	if err != nil {
		return registration.Form{}, errors.New("could not read the screenshot")
	}
	defer f.Close()

	// One byte over the limit is enough for validation to reject it.
	data, err := io.ReadAll(io.LimitReader(f, registration.MaxScreenshotBytes+1))
	if err != nil {
		return registration.Form{}, errors.New("could not read the screenshot")
	}
	form.Screenshot = &registration.Screenshot{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	return form, nil
}
