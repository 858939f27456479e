package sites

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"sitehost/api/v1/middleware"
	"sitehost/internal/httpx"
	"sitehost/internal/model"
	"sitehost/internal/site"
)

// Handler serves the site management HTTP surface
type Handler struct {
	sites *site.Service
}

// NewHandler creates a sites handler
func NewHandler(sites *site.Service) *Handler {
	return &Handler{sites: sites}
}

// List handles GET /sites
func (h *Handler) List(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	records, err := h.sites.List(c.Request.Context(), uid)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list sites", err))
		return
	}

	c.JSON(http.StatusOK, records)
}

// Deploy handles POST /sites/deploy. The multipart form carries the uploaded
// content files plus either a subdomain label (new site) or a siteId
// (re-deploy of an existing site).
func (h *Handler) Deploy(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("multipart form expected"))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("at least one file is required"))
		return
	}

	var target *model.Site
	if idStr := c.PostForm("siteId"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid siteId"))
			return
		}
		target, err = h.sites.Get(c.Request.Context(), uid, id)
		if err != nil {
			h.failSite(c, err)
			return
		}
	} else {
		var err error
		target, err = h.sites.Create(c.Request.Context(), uid, c.PostForm("subdomain"))
		if err != nil {
			h.failSite(c, err)
			return
		}
	}

	saved := 0
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to read upload", err))
			return
		}
		err = h.sites.Storage().Save(target.ID, fh.Filename, src)
		src.Close()
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to store file", err))
			return
		}
		saved++
	}

	c.JSON(http.StatusOK, DeployResponse{Success: true, Site: *target, Files: saved})
}

// Rename handles PATCH /sites
func (h *Handler) Rename(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 || req.Subdomain == "" {
		httpx.FailErr(c, httpx.ErrParamMissing("id and subdomain are required"))
		return
	}

	renamed, err := h.sites.Rename(c.Request.Context(), uid, req.ID, req.Subdomain)
	if err != nil {
		h.failSite(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "site": renamed})
}

// Delete handles DELETE /sites
func (h *Handler) Delete(c *gin.Context) {
	uid := middleware.CurrentUser(c)

	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		httpx.FailErr(c, httpx.ErrParamMissing("id is required"))
		return
	}

	if err := h.sites.Delete(c.Request.Context(), uid, req.ID); err != nil {
		h.failSite(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Serve is the fallback handler for site traffic: it maps the request Host
// to a site content directory and serves the requested file, with
// index.html fallback for directories.
func (h *Handler) Serve(c *gin.Context) {
	dir, err := h.sites.ResolveHost(c.Request.Context(), c.Request.Host)
	if err != nil {
		c.String(http.StatusNotFound, "site not found")
		return
	}

	rel := filepath.Clean("/" + c.Request.URL.Path)
	path := filepath.Join(dir, rel)

	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		path = filepath.Join(path, "index.html")
		info, err = os.Stat(path)
	}
	if err != nil || info.IsDir() {
		c.String(http.StatusNotFound, "not found")
		return
	}

	c.File(path)
}

func (h *Handler) failSite(c *gin.Context, err error) {
	switch {
	case errors.Is(err, site.ErrNotFound):
		httpx.FailErr(c, httpx.ErrNotFound("site not found"))
	case errors.Is(err, site.ErrInvalidSubdomain):
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid subdomain"))
	case errors.Is(err, site.ErrSubdomainTaken):
		httpx.FailErr(c, httpx.ErrAlreadyExists("subdomain already in use"))
	default:
		httpx.FailErr(c, httpx.ErrInternalError("site operation failed", err))
	}
}
