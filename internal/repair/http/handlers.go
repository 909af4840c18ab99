package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homefix-app/homefix-backend/internal/identity"
	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/repair/service"
	"github.com/homefix-app/homefix-backend/internal/repair/sync"
)

// Handler exposes the repair request API: session bootstrap, profile and
// company saves, request submission and lifecycle transitions, and the
// live streams.
type Handler struct {
	lifecycle *service.LifecycleService
	profiles  *service.ProfileService
	resolver  *identity.Resolver
	syncDeps  sync.Deps
	bridge    *sync.RedisBridge
}

func New(lifecycle *service.LifecycleService, profiles *service.ProfileService, resolver *identity.Resolver, syncDeps sync.Deps, bridge *sync.RedisBridge) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		profiles:  profiles,
		resolver:  resolver,
		syncDeps:  syncDeps,
		bridge:    bridge,
	}
}

// MintSession resolves a session identity: token-based when a bootstrap
// token is supplied, anonymous otherwise. A failed token resolution is
// terminal — the client gets no identity and stays blocked.
func (h *Handler) MintSession(c *gin.Context) {
	var body sessionRequest
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.resolver.Resolve(c.Request.Context(), body.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "identity resolution failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity": id})
}

// GetProfile returns the caller's profile, absent until first save.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), identity.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// SaveProfile fully replaces the caller's profile document.
func (h *Handler) SaveProfile(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p := domain.UserProfile{FullName: body.FullName, Phone: body.Phone, Address: body.Address}
	if err := h.profiles.SaveProfile(c.Request.Context(), identity.UserID(c), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// GetCompany returns the shared company profile (default until saved).
func (h *Handler) GetCompany(c *gin.Context) {
	company, err := h.profiles.GetCompany(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get company profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// SaveCompany fully replaces the company singleton. Staff action.
func (h *Handler) SaveCompany(c *gin.Context) {
	var body companyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p := domain.CompanyProfile{Name: body.Name, LogoURL: body.LogoURL, Phone: body.Phone, Email: body.Email}
	if err := h.profiles.SaveCompany(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save company profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": p})
}

// SubmitRequest creates a new repair request for the caller.
func (h *Handler) SubmitRequest(c *gin.Context) {
	var body submitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := h.lifecycle.Submit(c.Request.Context(), identity.UserID(c), body.toDomain())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// ListMyRequests returns the caller's personal view, newest first.
func (h *Handler) ListMyRequests(c *gin.Context) {
	reqs, err := h.lifecycle.ListMine(c.Request.Context(), identity.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests":    reqs,
		"inbox_count": domain.CountByStatus(reqs, domain.StatusWaitingConfirmation),
	})
}

// ListAllRequests returns the full collection for the staff inbox.
func (h *Handler) ListAllRequests(c *gin.Context) {
	reqs, err := h.lifecycle.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests":      reqs,
		"pending_count": domain.CountByStatus(reqs, domain.StatusPending),
	})
}

// GetRequest returns one request by ID.
func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.lifecycle.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ProposeTimeSlot moves a pending request into scheduling. Staff action.
func (h *Handler) ProposeTimeSlot(c *gin.Context) {
	var body proposeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req, err := h.lifecycle.ProposeTimeSlot(c.Request.Context(), c.Param("id"), body.Time)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ConfirmSchedule accepts the proposed time. Customer action.
func (h *Handler) ConfirmSchedule(c *gin.Context) {
	req, err := h.lifecycle.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// DeclineSchedule rejects the proposed time. Customer action.
func (h *Handler) DeclineSchedule(c *gin.Context) {
	req, err := h.lifecycle.DeclineSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// CompleteRequest marks an in-progress job done. Staff action.
func (h *Handler) CompleteRequest(c *gin.Context) {
	req, err := h.lifecycle.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": req})
}

// writeError maps lifecycle errors onto responses. Store failures arrive
// here unconverted and surface as retryable-by-resubmission 502s.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
	case errors.Is(err, domain.ErrProfileIncomplete):
		// The client redirects to profile setup on this code.
		c.JSON(http.StatusConflict, gin.H{"error": "profile incomplete", "code": "profile_incomplete"})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyTimeSlot),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidUrgency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "store operation failed, please retry"})
	}
}
