// Package module provides the housekeeping task bounded context module.
// Tasks are produced by the reservation sync and worked through by cleaning
// staff via the mobile app.
package module

import (
	"mews_bridge_backend/internal/assignments/handler"
	"mews_bridge_backend/internal/assignments/repository"
	"mews_bridge_backend/internal/assignments/service"
	apphttp "mews_bridge_backend/internal/http"
	"mews_bridge_backend/platform/logger"
	"mews_bridge_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the housekeeping task bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repo
	svc     *service.Service
}

// NewModule creates and initializes the assignments module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
		svc:     svc,
	}
}

// Name returns the module identifier for logging.
func (m *Module) Name() string { return "assignments" }

// RegisterRoutes mounts the task routes on the protected API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/tasks"))
}

// Repository exposes the task store for the sync worker.
func (m *Module) Repository() *repository.Repo { return m.repo }
