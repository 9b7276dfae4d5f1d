package service

import (
	"context"
	"testing"

	"mews_bridge_backend/internal/assignments"
	"mews_bridge_backend/internal/assignments/repository"
	"mews_bridge_backend/internal/assignments/transport"
	"mews_bridge_backend/platform/apperr"
	"mews_bridge_backend/platform/logger"
)

type fakeRepo struct {
	rows   map[int64]assignments.Assignment
	nextID int64

	rejectUnitKeyWrites bool
	insertsWithUnitKey  int
	deleted             []int64
	statusWrites        map[int64]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]assignments.Assignment), statusWrites: make(map[int64]string)}
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]assignments.Assignment, error) {
	out := make([]assignments.Assignment, 0, len(f.rows))
	for _, a := range f.rows {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (assignments.Assignment, error) {
	a, ok := f.rows[id]
	if !ok {
		return assignments.Assignment{}, apperr.NotFound("assignment not found")
	}
	return a, nil
}

func (f *fakeRepo) Insert(_ context.Context, a repository.NewAssignment, withUnitKey bool) (assignments.Assignment, error) {
	if withUnitKey {
		f.insertsWithUnitKey++
		if f.rejectUnitKeyWrites {
			return assignments.Assignment{}, repository.ErrUnwritableColumn
		}
	}
	for _, existing := range f.rows {
		if existing.Date == a.Date && existing.UnitKey == a.UnitKey && existing.Type == a.Type {
			return assignments.Assignment{}, repository.ErrUniqueViolation
		}
	}
	f.nextID++
	row := assignments.Assignment{
		ID: f.nextID, Date: a.Date, UnitName: a.UnitName, UnitKey: a.UnitKey,
		CabinNo: a.CabinNo, Title: a.Title, Type: a.Type, Status: a.Status,
	}
	f.rows[row.ID] = row
	return row, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	a, ok := f.rows[id]
	if !ok {
		return apperr.NotFound("assignment not found")
	}
	a.Status = status
	f.rows[id] = a
	f.statusWrites[id] = status
	return nil
}

func (f *fakeRepo) UpdateComment(_ context.Context, id int64, comment string) error {
	a, ok := f.rows[id]
	if !ok {
		return apperr.NotFound("assignment not found")
	}
	a.Comment = &comment
	f.rows[id] = a
	return nil
}

func (f *fakeRepo) SetPhotoURL(_ context.Context, id int64, url string) error {
	a, ok := f.rows[id]
	if !ok {
		return apperr.NotFound("assignment not found")
	}
	a.PhotoURL = &url
	f.rows[id] = a
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return apperr.NotFound("assignment not found")
	}
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	return New(repo, logger.New("test"))
}

func TestCreateDerivesKeyAndTitleFromUnitName(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.Create(context.Background(), transport.CreateTaskRequest{
		Date:     "2025-06-05",
		UnitName: "Cabin 12",
		Type:     assignments.TypeCleaning,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.UnitKey != "cabin 12" {
		t.Fatalf("unexpected unit key %q", resp.UnitKey)
	}
	if resp.CabinNo != "12" {
		t.Fatalf("unexpected cabin no %q", resp.CabinNo)
	}
	if resp.Title != "Sluttrengjøring Cabin 12" {
		t.Fatalf("unexpected title %q", resp.Title)
	}
	if resp.Status != assignments.StatusNotStarted {
		t.Fatalf("new tasks start as not_started, got %q", resp.Status)
	}
}

func TestCreateRetriesWithoutUnitKeyOnGeneratedColumn(t *testing.T) {
	repo := newFakeRepo()
	repo.rejectUnitKeyWrites = true
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), transport.CreateTaskRequest{
		Date:     "2025-06-05",
		UnitName: "Cabin 12",
		Type:     assignments.TypeCleaning,
	})
	if err != nil {
		t.Fatalf("create should succeed through the fallback: %v", err)
	}
	if repo.insertsWithUnitKey != 1 {
		t.Fatalf("expected one rejected attempt, got %d", repo.insertsWithUnitKey)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one stored row, got %d", len(repo.rows))
	}
}

func TestCreateDuplicateSlotIsAConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	req := transport.CreateTaskRequest{Date: "2025-06-05", UnitName: "Cabin 12", Type: assignments.TypeCleaning}

	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	err := svc.UpdateStatus(context.Background(), 1, transport.UpdateStatusRequest{Status: "paused"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRefusesReservationOwnedTasks(t *testing.T) {
	repo := newFakeRepo()
	resID := "R1"
	repo.rows[7] = assignments.Assignment{ID: 7, Type: assignments.TypeCleaning, MewsReservationID: &resID}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), 7)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict for reservation-owned task, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("reservation-owned task must not be deleted")
	}
}

func TestDeleteRemovesManualTasks(t *testing.T) {
	repo := newFakeRepo()
	repo.rows[3] = assignments.Assignment{ID: 3, Type: assignments.TypeCleaning}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), 3); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 3 {
		t.Fatalf("expected row 3 deleted, got %v", repo.deleted)
	}
}
