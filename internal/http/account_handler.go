package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/freightmarket/internal/http/middleware"
	"github.com/nurpe/freightmarket/internal/service"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password"`
	Sifre       string `json:"sifre"`
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"companyName"`
	CompanyType string `json:"companyType"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	password := req.Password
	if password == "" {
		password = req.Sifre
	}

	session, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		CompanyType: req.CompanyType,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, session)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, session)
}

func (h *Handler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) startSession(c *gin.Context, status int, session *service.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, session.Token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	c.JSON(status, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Account:   toProfileResponse(*session.Profile),
	})
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}
	profile, err := h.accounts.Profile(c.Request.Context(), principal, principal.AccountID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(*profile))
}

func (h *Handler) getUser(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, kindUnauthorized, "missing principal")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.accounts.Profile(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(*profile))
}
