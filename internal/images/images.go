// Package images proxies unit photos from the upstream asset host so the
// mobile app talks to a single origin. Only paths on the static map are
// served; everything else is a 404.
package images

import (
	"net/http"
	"strings"
	"time"

	apphttp "mews_bridge_backend/internal/http"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/httpkit"
	"mews_bridge_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// unitImages maps a normalized unit key to its image path on the asset host.
var unitImages = map[string]string{
	"cabin 1":  "/units/cabin-1.jpg",
	"cabin 2":  "/units/cabin-2.jpg",
	"cabin 3":  "/units/cabin-3.jpg",
	"cabin 4":  "/units/cabin-4.jpg",
	"cabin 5":  "/units/cabin-5.jpg",
	"cabin 6":  "/units/cabin-6.jpg",
	"cabin 7":  "/units/cabin-7.jpg",
	"cabin 8":  "/units/cabin-8.jpg",
	"cabin 9":  "/units/cabin-9.jpg",
	"cabin 10": "/units/cabin-10.jpg",
	"cabin 11": "/units/cabin-11.jpg",
	"cabin 12": "/units/cabin-12.jpg",
}

// Module serves unit images. Implements http.Module.
type Module struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewModule creates the image proxy module.
func NewModule(cfg config.ImagesConfig, log *logger.Logger) *Module {
	return &Module{
		baseURL: strings.TrimRight(cfg.GetImageBaseURL(), "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// Name returns the module identifier for logging.
func (m *Module) Name() string { return "images" }

// RegisterRoutes mounts the image routes on the public API group. Images are
// referenced from <img> tags that cannot carry an Authorization header.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/units/:key/image", m.get)
}

func (m *Module) get(c *gin.Context) {
	key := strings.ToLower(strings.TrimSpace(c.Param("key")))
	path, ok := unitImages[key]
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "no image for unit", nil)
		return
	}
	if m.baseURL == "" {
		httpkit.Error(c, http.StatusNotFound, "image host not configured", nil)
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, m.baseURL+path, nil)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to build image request", nil)
		return
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.UpstreamError("fetch unit image", key, err)
		httpkit.Error(c, http.StatusBadGateway, "image host unreachable", nil)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		httpkit.Error(c, http.StatusNotFound, "no image for unit", nil)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, nil)
}
