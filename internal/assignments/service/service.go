// Package service provides business logic for housekeeping tasks. The sync
// job creates and moves tasks; this layer serves the mobile app's workflow
// actions on top of the same store.
package service

import (
	"context"
	"errors"
	"time"

	"mews_bridge_backend/internal/assignments"
	"mews_bridge_backend/internal/assignments/repository"
	"mews_bridge_backend/internal/assignments/transport"
	"mews_bridge_backend/platform/apperr"
	"mews_bridge_backend/platform/logger"
)

// Repository is the store surface this service needs.
type Repository interface {
	List(ctx context.Context, params repository.ListParams) ([]assignments.Assignment, error)
	GetByID(ctx context.Context, id int64) (assignments.Assignment, error)
	Insert(ctx context.Context, a repository.NewAssignment, withUnitKey bool) (assignments.Assignment, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateComment(ctx context.Context, id int64, comment string) error
	SetPhotoURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}

// Service provides business logic for housekeeping tasks.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// New creates a new housekeeping task service.
func New(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns tasks matching the filters.
func (s *Service) List(ctx context.Context, req transport.ListTasksRequest) (transport.TaskListResponse, error) {
	items, err := s.repo.List(ctx, repository.ListParams{
		Date:   req.Date,
		Type:   req.Type,
		Status: req.Status,
	})
	if err != nil {
		return transport.TaskListResponse{}, err
	}
	return toListResponse(items), nil
}

// GetByID returns one task.
func (s *Service) GetByID(ctx context.Context, id int64) (transport.TaskResponse, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toResponse(a), nil
}

// Create adds a manual task. It reuses the sync's generated-column fallback
// so manual creation works against both schema variants.
func (s *Service) Create(ctx context.Context, req transport.CreateTaskRequest) (transport.TaskResponse, error) {
	unitName := req.UnitName
	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	if title == "" {
		switch req.Type {
		case assignments.TypeLinen:
			title = assignments.LinenTitle(unitName, 1)
		default:
			title = assignments.CleaningTitle(unitName)
		}
	}

	row := repository.NewAssignment{
		Date:     req.Date,
		UnitName: unitName,
		UnitKey:  assignments.UnitKey(unitName),
		CabinNo:  assignments.CabinNo(unitName),
		Title:    title,
		Type:     req.Type,
		Status:   assignments.StatusNotStarted,
	}

	created, err := s.repo.Insert(ctx, row, true)
	if errors.Is(err, repository.ErrUnwritableColumn) {
		created, err = s.repo.Insert(ctx, row, false)
	}
	if errors.Is(err, repository.ErrUniqueViolation) {
		return transport.TaskResponse{}, apperr.Conflict("a task already exists for this unit, date and type")
	}
	if err != nil {
		return transport.TaskResponse{}, err
	}

	if req.Comment != nil && *req.Comment != "" {
		if err := s.repo.UpdateComment(ctx, created.ID, *req.Comment); err != nil {
			s.log.DatabaseError("set comment on created task", err)
		} else {
			created.Comment = req.Comment
		}
	}

	return toResponse(created), nil
}

// UpdateStatus advances a task's workflow status.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req transport.UpdateStatusRequest) error {
	if !assignments.ValidStatus(req.Status) {
		return apperr.Validation("unknown status")
	}
	return s.repo.UpdateStatus(ctx, id, req.Status)
}

// UpdateComment sets a task's comment.
func (s *Service) UpdateComment(ctx context.Context, id int64, req transport.UpdateCommentRequest) error {
	return s.repo.UpdateComment(ctx, id, req.Comment)
}

// AttachPhoto stores a completion photo URL on the task.
func (s *Service) AttachPhoto(ctx context.Context, id int64, req transport.AttachPhotoRequest) error {
	return s.repo.SetPhotoURL(ctx, id, req.URL)
}

// Delete removes a manually created task. Tasks owned by an upstream
// reservation are protected: the sync would recreate them next pass anyway.
func (s *Service) Delete(ctx context.Context, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.MewsReservationID != nil && *a.MewsReservationID != "" {
		return apperr.Conflict("cannot delete a task owned by an upstream reservation")
	}
	return s.repo.Delete(ctx, id)
}

func toResponse(a assignments.Assignment) transport.TaskResponse {
	return transport.TaskResponse{
		ID:                a.ID,
		Date:              a.Date,
		UnitName:          a.UnitName,
		UnitKey:           a.UnitKey,
		CabinNo:           a.CabinNo,
		Title:             a.Title,
		Type:              a.Type,
		Status:            a.Status,
		Comment:           a.Comment,
		PhotoURL:          a.PhotoURL,
		MewsReservationID: a.MewsReservationID,
		MewsSpaceID:       a.MewsSpaceID,
		CreatedAt:         a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         a.UpdatedAt.Format(time.RFC3339),
	}
}

func toListResponse(items []assignments.Assignment) transport.TaskListResponse {
	resp := transport.TaskListResponse{
		Items: make([]transport.TaskResponse, 0, len(items)),
		Total: len(items),
	}
	for _, a := range items {
		resp.Items = append(resp.Items, toResponse(a))
	}
	return resp
}
