package reservations

import (
	"net/http"
	"time"

	apphttp "mews_bridge_backend/internal/http"
	"mews_bridge_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Module is the reservations bounded context module implementing http.Module.
type Module struct {
	svc *Service
}

// NewModule wires the reservation routes around an already built service.
func NewModule(svc *Service) *Module {
	return &Module{svc: svc}
}

// Name returns the module identifier for logging.
func (m *Module) Name() string { return "reservations" }

// RegisterRoutes mounts the reservation routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/reservations", m.list)
}

func (m *Module) list(c *gin.Context) {
	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "start must be a YYYY-MM-DD date", nil)
		return
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "end must be a YYYY-MM-DD date", nil)
		return
	}

	items, err := m.svc.List(c.Request.Context(), start, end.AddDate(0, 0, 1))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"items": items, "total": len(items)})
}
