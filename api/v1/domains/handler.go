package domains

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sitehost/api/v1/middleware"
	"sitehost/internal/domain"
	"sitehost/internal/edge"
	"sitehost/internal/httpx"
)

// Handler serves the custom domain HTTP surface
type Handler struct {
	domains     *domain.Service
	cnameTarget string
}

// NewHandler creates a domains handler
func NewHandler(domains *domain.Service, cnameTarget string) *Handler {
	return &Handler{domains: domains, cnameTarget: cnameTarget}
}

// List handles GET /domains
func (h *Handler) List(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	records, err := h.domains.List(c.Request.Context(), uid)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list domains", err))
		return
	}

	c.JSON(http.StatusOK, records)
}

// Create handles POST /domains
func (h *Handler) Create(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}
	if req.SiteID == 0 || req.Hostname == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("siteId and hostname are required"))
		return
	}

	d, err := h.domains.Create(c.Request.Context(), uid, req.SiteID, req.Hostname)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}

	c.JSON(http.StatusOK, DomainResponse{
		Success:     true,
		Domain:      *d,
		DNSRecords:  dnsRecords(d, h.cnameTarget),
		CnameTarget: h.cnameTarget,
	})
}

// Refresh handles PATCH /domains
func (h *Handler) Refresh(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}

	d, err := h.domains.Refresh(c.Request.Context(), uid, req.ID)
	if err != nil {
		h.failLifecycle(c, err)
		return
	}

	c.JSON(http.StatusOK, DomainResponse{
		Success:     true,
		Domain:      *d,
		DNSRecords:  dnsRecords(d, h.cnameTarget),
		CnameTarget: h.cnameTarget,
	})
}

// Delete handles DELETE /domains
func (h *Handler) Delete(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}

	if err := h.domains.Delete(c.Request.Context(), uid, req.ID); err != nil {
		h.failLifecycle(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// failLifecycle maps lifecycle errors onto the HTTP taxonomy
func (h *Handler) failLifecycle(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidHostname):
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid hostname"))
	case errors.Is(err, domain.ErrSiteNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("site not found"))
	case errors.Is(err, domain.ErrNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("domain not found"))
	case errors.Is(err, domain.ErrConflict):
		httpx.FailErr(c, httpx.ErrAlreadyExists("hostname already in use"))
	case errors.Is(err, domain.ErrNoProviderID):
		httpx.FailErr(c, httpx.ErrPrecondition("domain has no provider mapping"))
	case errors.Is(err, edge.ErrNotConfigured):
		httpx.FailErr(c, httpx.ErrProviderNotConfigured())
	case errors.Is(err, edge.ErrHostnameNotFound):
		httpx.FailErr(c, httpx.ErrProviderError("custom hostname no longer exists at provider", err))
	default:
		httpx.FailErr(c, httpx.ErrProviderError("domain operation failed", err))
	}
}
