// Package server exposes the registration service over HTTP.
package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"weekly-tourney/internal/models"
	"weekly-tourney/internal/registration"
)

// Service is the part of registration.Service the handlers use.
type Service interface {
	RegisterTeam(ctx context.Context, form registration.Form) registration.Result
	Status(ctx context.Context) (models.RegistrationStatus, error)
	PublicRoster(ctx context.Context) ([]models.PublicTeam, error)
	AdminRoster(ctx context.Context) (models.WeeklyData, error)
	Archives(ctx context.Context) ([]models.ArchiveEntry, error)
	Archive(ctx context.Context, date string) (models.WeeklyData, error)
	WinnerHistory(ctx context.Context) ([]models.WeeklyWinner, error)
	LookupUTR(ctx context.Context, utr string) (*models.TeamRegistration, error)
	ProcessAndEmailWinners(ctx context.Context, first, second string) (models.WeeklyWinner, error)
}

// maxUploadMemory keeps a full-size screenshot plus the text fields in memory.
const maxUploadMemory = registration.MaxScreenshotBytes + 2<<20

func New(svc Service, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadMemory
	r.Use(RequestID(), Logger(logger), Recovery(logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.GET("/status", Status(svc))
		api.POST("/registrations", Register(svc, logger))
		api.GET("/registrations/utr/:utr", LookupUTR(svc))
		api.GET("/teams", PublicTeams(svc))
		api.GET("/winners", Winners(svc))

		// admin
		admin := api.Group("/admin")
		{
			admin.GET("/teams", AdminTeams(svc))
			admin.GET("/archives", AdminArchives(svc))
			admin.GET("/archives/:date", AdminArchive(svc))
			admin.POST("/winners", AdminSetWinners(svc, logger))
		}
	}
	return r
}
