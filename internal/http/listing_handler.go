package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/freightmarket/internal/http/middleware"
	"github.com/nurpe/freightmarket/internal/model"
	"github.com/nurpe/freightmarket/internal/service"
)

type priceRequest struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency *string          `json:"currency"`
}

type createListingRequest struct {
	Type         string                `json:"type" binding:"required"`
	Origin       string                `json:"origin" binding:"required"`
	Destination  string                `json:"destination" binding:"required"`
	Details      string                `json:"details"`
	Vehicle      *model.VehicleDetails `json:"vehicle"`
	Cargo        *model.CargoDetails   `json:"cargo"`
	Contact      string                `json:"contact" binding:"required"`
	Price        priceRequest          `json:"price"`
	PickupDate   string                `json:"pickupDate" binding:"required"`
	DeliveryDate string                `json:"deliveryDate" binding:"required"`
}

type updateListingRequest struct {
	Type         *string               `json:"type"`
	Status       *string               `json:"status"`
	Origin       *string               `json:"origin"`
	Destination  *string               `json:"destination"`
	Details      *string               `json:"details"`
	Vehicle      *model.VehicleDetails `json:"vehicle"`
	Cargo        *model.CargoDetails   `json:"cargo"`
	Contact      *string               `json:"contact"`
	Price        *priceRequest         `json:"price"`
	PickupDate   *string               `json:"pickupDate"`
	DeliveryDate *string               `json:"deliveryDate"`
}

type matchRequest struct {
	UserID string `json:"userId"`
}

func payloadFrom(vehicle *model.VehicleDetails, cargo *model.CargoDetails) (model.Payload, bool) {
	switch {
	case vehicle != nil && cargo != nil:
		return nil, false
	case vehicle != nil:
		return *vehicle, true
	case cargo != nil:
		return *cargo, true
	}
	return nil, true
}

func (h *Handler) createListing(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}

	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	listingType, ok := model.ParseListingType(req.Type)
	if !ok {
		badRequest(c, "invalid type")
		return
	}
	payload, ok := payloadFrom(req.Vehicle, req.Cargo)
	if !ok {
		badRequest(c, "a listing carries either vehicle or cargo details, not both")
		return
	}
	pickup, err := parseDate(req.PickupDate)
	if err != nil {
		badRequest(c, "invalid pickupDate")
		return
	}
	delivery, err := parseDate(req.DeliveryDate)
	if err != nil {
		badRequest(c, "invalid deliveryDate")
		return
	}

	input := service.CreateListingInput{
		Principal:    principal,
		Type:         listingType,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Details:      req.Details,
		Payload:      payload,
		Contact:      req.Contact,
		PickupDate:   pickup,
		DeliveryDate: delivery,
	}
	if req.Price.Amount != nil {
		input.PriceAmount = *req.Price.Amount
	}
	if req.Price.Currency != nil {
		input.Currency = *req.Price.Currency
	}

	view, err := h.listings.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toListingResponse(*view))
}

func (h *Handler) listListings(c *gin.Context) {
	accountID, err := parseOptionalID(c.Query("userId"))
	if err != nil {
		badRequest(c, "invalid userId")
		return
	}
	status := c.Query("status")
	if status == "" {
		status = c.Query("durum")
	}

	views, err := h.listings.List(c.Request.Context(), service.ListListingsInput{AccountID: accountID, Status: status})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponses(views))
}

func (h *Handler) getListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(*view))
}

func (h *Handler) updateListing(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Type != nil || req.Status != nil {
		badRequest(c, "type and status cannot be changed")
		return
	}
	payload, ok := payloadFrom(req.Vehicle, req.Cargo)
	if !ok {
		badRequest(c, "a listing carries either vehicle or cargo details, not both")
		return
	}

	changes := model.ListingChanges{
		Origin:      req.Origin,
		Destination: req.Destination,
		Details:     req.Details,
		Payload:     payload,
		Contact:     req.Contact,
	}
	if req.Price != nil {
		changes.PriceAmount = req.Price.Amount
		changes.Currency = req.Price.Currency
	}
	if req.PickupDate != nil {
		pickup, err := parseDate(*req.PickupDate)
		if err != nil {
			badRequest(c, "invalid pickupDate")
			return
		}
		changes.PickupDate = &pickup
	}
	if req.DeliveryDate != nil {
		delivery, err := parseDate(*req.DeliveryDate)
		if err != nil {
			badRequest(c, "invalid deliveryDate")
			return
		}
		changes.DeliveryDate = &delivery
	}

	view, err := h.listings.Update(c.Request.Context(), service.UpdateListingInput{
		Principal: principal,
		ListingID: id,
		Changes:   changes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(*view))
}

func (h *Handler) deleteListing(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.listings.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// transition runs one of the poster or applicant lifecycle actions on the listing in the path.
func (h *Handler) transition(c *gin.Context, action func(model.Principal, uuid.UUID) (*model.ListingView, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	view, err := action(principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toListingResponse(*view))
}

func (h *Handler) applyListing(c *gin.Context) {
	h.transition(c, func(p model.Principal, id uuid.UUID) (*model.ListingView, error) {
		return h.listings.Apply(c.Request.Context(), p, id)
	})
}

func (h *Handler) matchListing(c *gin.Context) {
	// A missing userId reaches the service as uuid.Nil so ownership is checked first.
	var req matchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err.Error())
			return
		}
	}
	target := uuid.Nil
	if raw := strings.TrimSpace(req.UserID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid userId")
			return
		}
		target = parsed
	}
	h.transition(c, func(p model.Principal, id uuid.UUID) (*model.ListingView, error) {
		return h.listings.Match(c.Request.Context(), p, id, target)
	})
}

func (h *Handler) completeListing(c *gin.Context) {
	h.transition(c, func(p model.Principal, id uuid.UUID) (*model.ListingView, error) {
		return h.listings.Complete(c.Request.Context(), p, id)
	})
}

func (h *Handler) cancelListing(c *gin.Context) {
	h.transition(c, func(p model.Principal, id uuid.UUID) (*model.ListingView, error) {
		return h.listings.Cancel(c.Request.Context(), p, id)
	})
}

func (h *Handler) listApplicants(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	applicants, err := h.listings.Applicants(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]accountSummaryResponse, 0, len(applicants))
	for _, a := range applicants {
		out = append(out, toAccountSummary(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) exportListings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}

	result, err := h.exports.ExportListings(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) listingCertificate(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.exports.Certificate(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}
