package units

import (
	"net/http"

	apphttp "mews_bridge_backend/internal/http"
	"mews_bridge_backend/platform/httpkit"
	"mews_bridge_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// UpsertUnitRequest registers or renames one unit in the directory.
type UpsertUnitRequest struct {
	MewsSpaceID string `json:"mewsSpaceId" validate:"required,min=1,max=100"`
	Name        string `json:"name" validate:"required,min=1,max=200"`
}

// Module exposes the unit directory over HTTP. Implements http.Module.
type Module struct {
	repo *Repo
	val  *validator.Validator
}

// NewModule creates the units module.
func NewModule(repo *Repo, val *validator.Validator) *Module {
	return &Module{repo: repo, val: val}
}

// Name returns the module identifier for logging.
func (m *Module) Name() string { return "units" }

// RegisterRoutes mounts the directory routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	rg := ctx.Protected.Group("/units")
	rg.GET("", m.list)
	rg.PUT("", m.upsert)
}

func (m *Module) list(c *gin.Context) {
	dir, err := m.repo.Directory(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	type unit struct {
		MewsSpaceID string `json:"mewsSpaceId"`
		Name        string `json:"name"`
	}
	items := make([]unit, 0, len(dir))
	for spaceID, name := range dir {
		items = append(items, unit{MewsSpaceID: spaceID, Name: name})
	}

	httpkit.OK(c, gin.H{"items": items, "total": len(items)})
}

func (m *Module) upsert(c *gin.Context) {
	var req UpsertUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := m.repo.Upsert(c.Request.Context(), req.MewsSpaceID, req.Name); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"mewsSpaceId": req.MewsSpaceID, "name": req.Name})
}
