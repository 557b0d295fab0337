package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/freightmarket/internal/http/middleware"
	"github.com/nurpe/freightmarket/internal/service"
)

// submitRatingRequest also takes the field names of the older web client (ilanId, rating).
type submitRatingRequest struct {
	ListingID string `json:"listingId"`
	IlanID    string `json:"ilanId"`
	ToUserID  string `json:"toUserId"`
	Score     *int   `json:"score"`
	Rating    *int   `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *Handler) submitRating(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}

	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	rawListing := req.ListingID
	if strings.TrimSpace(rawListing) == "" {
		rawListing = req.IlanID
	}
	listingID, err := uuid.Parse(strings.TrimSpace(rawListing))
	if err != nil {
		badRequest(c, "invalid listingId")
		return
	}
	targetID, err := uuid.Parse(strings.TrimSpace(req.ToUserID))
	if err != nil {
		badRequest(c, "invalid toUserId")
		return
	}
	score := req.Score
	if score == nil {
		score = req.Rating
	}
	if score == nil {
		badRequest(c, "score is required")
		return
	}

	result, err := h.ratings.Submit(c.Request.Context(), service.SubmitRatingInput{
		Principal: principal,
		ListingID: listingID,
		TargetID:  targetID,
		Score:     *score,
		Comment:   req.Comment,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSubmitRatingResponse(result))
}

func (h *Handler) listRatings(c *gin.Context) {
	rateeID, err := parseOptionalID(c.Query("toUserId"))
	if err != nil {
		badRequest(c, "invalid toUserId")
		return
	}
	raterID, err := parseOptionalID(c.Query("fromUserId"))
	if err != nil {
		badRequest(c, "invalid fromUserId")
		return
	}

	views, err := h.ratings.List(c.Request.Context(), service.ListRatingsInput{RaterID: raterID, RateeID: rateeID})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRatingViewResponses(views))
}
