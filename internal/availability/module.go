package availability

import (
	"net/http"
	"time"

	apphttp "mews_bridge_backend/internal/http"
	"mews_bridge_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Module is the availability bounded context module implementing http.Module.
type Module struct {
	svc *Service
}

// NewModule wires the availability routes around an already built service.
func NewModule(svc *Service) *Module {
	return &Module{svc: svc}
}

// Name returns the module identifier for logging.
func (m *Module) Name() string { return "availability" }

// RegisterRoutes mounts the availability routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/availability", m.get)
}

func (m *Module) get(c *gin.Context) {
	first, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "start must be a YYYY-MM-DD date", nil)
		return
	}
	last, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "end must be a YYYY-MM-DD date", nil)
		return
	}

	services, err := m.svc.Fetch(c.Request.Context(), first, last)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"services": services})
}
