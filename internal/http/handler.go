package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/freightmarket/internal/service"
)

const (
	kindValidation   = "ValidationError"
	kindUnauthorized = "Unauthorized"
	kindForbidden    = "Forbidden"
	kindNotFound     = "NotFound"
	kindConflict     = "Conflict"
	kindInvalidState = "InvalidState"
	kindInternal     = "InternalError"
)

type Services struct {
	Listings *service.ListingService
	Ratings  *service.RatingService
	Accounts *service.AccountService
	Stats    *service.StatsService
	Exports  *service.ExportService
}

type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

type Handler struct {
	listings *service.ListingService
	ratings  *service.RatingService
	accounts *service.AccountService
	stats    *service.StatsService
	exports  *service.ExportService
	cookie   CookieConfig
	log      zerolog.Logger
}

func NewHandler(services Services, cookie CookieConfig, log zerolog.Logger) *Handler {
	return &Handler{
		listings: services.Listings,
		ratings:  services.Ratings,
		accounts: services.Accounts,
		stats:    services.Stats,
		exports:  services.Exports,
		cookie:   cookie,
		log:      log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/auth/register", h.register)
	router.POST("/auth/login", h.login)
	router.POST("/auth/logout", h.logout)
	router.GET("/listings", h.listListings)
	router.GET("/listings/:id", h.getListing)
	router.GET("/ratings", h.listRatings)
	router.GET("/stats", h.platformStats)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/auth/me", h.me)
	protected.POST("/listings", h.createListing)
	protected.GET("/listings/export", h.exportListings)
	protected.PATCH("/listings/:id", h.updateListing)
	protected.DELETE("/listings/:id", h.deleteListing)
	protected.POST("/listings/:id/apply", h.applyListing)
	protected.POST("/listings/:id/match", h.matchListing)
	protected.POST("/listings/:id/complete", h.completeListing)
	protected.POST("/listings/:id/cancel", h.cancelListing)
	protected.GET("/listings/:id/applicants", h.listApplicants)
	protected.GET("/listings/:id/certificate", h.listingCertificate)
	protected.POST("/ratings", h.submitRating)
	protected.GET("/users/:id", h.getUser)
}

func respondError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{"kind": kind, "error": message})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, kindValidation, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, kindUnauthorized, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, kindForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, kindNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, kindConflict, err.Error())
	case errors.Is(err, service.ErrInvalidState):
		respondError(c, http.StatusConflict, kindInvalidState, err.Error())
	default:
		h.log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		respondError(c, http.StatusInternalServerError, kindInternal, "internal error")
	}
}

func badRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, kindValidation, message)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, service.ErrInvalidInput
	}
	return &id, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
