package sync

import (
	"context"
	"testing"
	"time"

	"mews_bridge_backend/internal/assignments"
	"mews_bridge_backend/internal/assignments/repository"
	"mews_bridge_backend/internal/mews"
	"mews_bridge_backend/platform/logger"
)

type fakeSource struct {
	reservations map[string][]mews.Reservation
	items        []mews.OrderItem
	products     map[string][]mews.Product
}

func (f *fakeSource) FetchReservations(_ context.Context, serviceID string, _, _ time.Time) ([]mews.Reservation, error) {
	return f.reservations[serviceID], nil
}

func (f *fakeSource) FetchOrderItems(_ context.Context, _ []string, _, _ time.Time) ([]mews.OrderItem, error) {
	return f.items, nil
}

func (f *fakeSource) FetchProducts(_ context.Context, serviceID string) ([]mews.Product, error) {
	return f.products[serviceID], nil
}

type fakeStore struct {
	rows   []assignments.Assignment
	nextID int64

	// rejectUnitKeyWrites simulates a schema where unit_key is a generated
	// column and any write naming it fails.
	rejectUnitKeyWrites bool
	// hiddenConflicts holds rows the prefetch does not see but the unique
	// constraint enforces, simulating a concurrent writer.
	hiddenConflicts []assignments.Assignment

	inserts            int
	updates            int
	insertsWithUnitKey int
	updatesWithUnitKey int
}

func (f *fakeStore) all() []assignments.Assignment {
	out := make([]assignments.Assignment, 0, len(f.rows)+len(f.hiddenConflicts))
	out = append(out, f.rows...)
	out = append(out, f.hiddenConflicts...)
	return out
}

func (f *fakeStore) ListRange(_ context.Context, from, to string) ([]assignments.Assignment, error) {
	out := make([]assignments.Assignment, 0, len(f.rows))
	for _, a := range f.rows {
		if a.Date >= from && a.Date <= to {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByKey(_ context.Context, date, unitKey, taskType string) (assignments.Assignment, error) {
	for _, a := range f.all() {
		if a.Date == date && a.UnitKey == unitKey && a.Type == taskType {
			return a, nil
		}
	}
	return assignments.Assignment{}, repository.ErrUniqueViolation // not used; tests never hit missing keys
}

func (f *fakeStore) Insert(_ context.Context, a repository.NewAssignment, withUnitKey bool) (assignments.Assignment, error) {
	if withUnitKey {
		f.insertsWithUnitKey++
		if f.rejectUnitKeyWrites {
			return assignments.Assignment{}, repository.ErrUnwritableColumn
		}
	}
	for _, existing := range f.all() {
		if existing.Date == a.Date && existing.UnitKey == a.UnitKey && existing.Type == a.Type {
			return assignments.Assignment{}, repository.ErrUniqueViolation
		}
	}
	f.nextID++
	row := assignments.Assignment{
		ID:                f.nextID,
		Date:              a.Date,
		UnitName:          a.UnitName,
		UnitKey:           a.UnitKey,
		CabinNo:           a.CabinNo,
		Title:             a.Title,
		Type:              a.Type,
		Status:            a.Status,
		MewsReservationID: strPtr(a.MewsReservationID),
		MewsSpaceID:       strPtr(a.MewsSpaceID),
		MewsServiceID:     strPtr(a.MewsServiceID),
	}
	f.rows = append(f.rows, row)
	f.inserts++
	return row, nil
}

func (f *fakeStore) UpdateIdentity(_ context.Context, id int64, p repository.IdentityPatch, withUnitKey bool) error {
	if withUnitKey {
		f.updatesWithUnitKey++
		if f.rejectUnitKeyWrites {
			return repository.ErrUnwritableColumn
		}
	}
	apply := func(rows []assignments.Assignment) bool {
		for i := range rows {
			if rows[i].ID != id {
				continue
			}
			rows[i].Date = p.Date
			rows[i].UnitName = p.UnitName
			if withUnitKey {
				rows[i].UnitKey = p.UnitKey
			}
			rows[i].CabinNo = p.CabinNo
			rows[i].Title = p.Title
			rows[i].MewsReservationID = strPtr(p.MewsReservationID)
			rows[i].MewsSpaceID = strPtr(p.MewsSpaceID)
			rows[i].MewsServiceID = strPtr(p.MewsServiceID)
			return true
		}
		return false
	}
	if apply(f.rows) || apply(f.hiddenConflicts) {
		f.updates++
		return nil
	}
	return repository.ErrUniqueViolation
}

type fakeUnits struct {
	dir map[string]string
}

func (f *fakeUnits) Directory(_ context.Context) (map[string]string, error) {
	return f.dir, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func timePtr(t time.Time) *time.Time { return &t }

func testOptions(t *testing.T) Options {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return Options{
		ReservableServiceIDs: []string{"svc-1"},
		DaysBack:             1,
		DaysAhead:            30,
		Location:             loc,
	}
}

func newTestReconciler(t *testing.T, src *fakeSource, store *fakeStore, units *fakeUnits, opts Options) *Reconciler {
	t.Helper()
	r := New(src, store, units, opts, logger.New("test"))
	r.now = func() time.Time { return time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC) }
	return r
}

func cabin12Reservation() mews.Reservation {
	return mews.Reservation{
		ID:        "R1",
		State:     "Confirmed",
		ServiceID: "svc-1",
		SpaceID:   "S1",
		StartUTC:  timePtr(time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)),
		EndUTC:    timePtr(time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)),
		OrderIDs:  []string{"order-1"},
	}
}

func findRow(rows []assignments.Assignment, taskType string) (assignments.Assignment, bool) {
	for _, a := range rows {
		if a.Type == taskType {
			return a, true
		}
	}
	return assignments.Assignment{}, false
}

func TestRunCreatesCleaningAssignmentOnDepartureDate(t *testing.T) {
	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}}}
	store := &fakeStore{}
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}

	r := newTestReconciler(t, src, store, units, testOptions(t))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if store.inserts != 1 {
		t.Fatalf("expected 1 insert, got %d", store.inserts)
	}
	row, ok := findRow(store.rows, assignments.TypeCleaning)
	if !ok {
		t.Fatal("no cleaning assignment created")
	}
	if row.Date != "2025-06-05" {
		t.Fatalf("expected departure date 2025-06-05, got %s", row.Date)
	}
	if row.UnitKey != "cabin 12" {
		t.Fatalf("expected unit key %q, got %q", "cabin 12", row.UnitKey)
	}
	if row.CabinNo != "12" {
		t.Fatalf("expected cabin no %q, got %q", "12", row.CabinNo)
	}
	if row.Title != "Sluttrengjøring Cabin 12" {
		t.Fatalf("unexpected title %q", row.Title)
	}
	if row.MewsReservationID == nil || *row.MewsReservationID != "R1" {
		t.Fatal("cleaning assignment not linked to R1")
	}
	if row.Status != assignments.StatusNotStarted {
		t.Fatalf("expected status not_started, got %s", row.Status)
	}
}

func TestRunCreatesLinenAssignmentWithCountedTitle(t *testing.T) {
	src := &fakeSource{
		reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}},
		products: map[string][]mews.Product{
			"svc-1": {
				{ID: "p-linen2", Name: "Sengetøy 2 personer"},
				{ID: "p-linen1", Name: "Sengetøy"},
			},
		},
		items: []mews.OrderItem{
			{ID: "i1", ProductID: "p-linen2", OrderID: "order-1", Count: 1},
			{ID: "i2", ProductID: "p-linen1", OrderID: "order-1", Count: 1},
		},
	}
	store := &fakeStore{}
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}

	r := newTestReconciler(t, src, store, units, testOptions(t))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	row, ok := findRow(store.rows, assignments.TypeLinen)
	if !ok {
		t.Fatal("no linen assignment created")
	}
	if row.Title != "Sengetøy Cabin 12 x3" {
		t.Fatalf("expected x3 title, got %q", row.Title)
	}
	if row.Date != "2025-06-03" {
		t.Fatalf("linen goes on the arrival date, got %s", row.Date)
	}
}

func TestRunWithoutLinenItemsCreatesNoLinenAssignment(t *testing.T) {
	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}}}
	store := &fakeStore{}
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}

	r := newTestReconciler(t, src, store, units, testOptions(t))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := findRow(store.rows, assignments.TypeLinen); ok {
		t.Fatal("linen assignment created without linen order items")
	}
}

func TestRunIsIdempotentAcrossPasses(t *testing.T) {
	src := &fakeSource{
		reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}},
		products:     map[string][]mews.Product{"svc-1": {{ID: "p-linen", Name: "Sengetøy 2 personer"}}},
		items:        []mews.OrderItem{{ID: "i1", ProductID: "p-linen", OrderID: "order-1", Count: 1}},
	}
	store := &fakeStore{}
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}
	opts := testOptions(t)

	r := newTestReconciler(t, src, store, units, opts)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if store.inserts != 2 {
		t.Fatalf("expected 2 inserts on first run, got %d", store.inserts)
	}

	// Second pass over the same snapshot with a fresh reconciler.
	r2 := newTestReconciler(t, src, store, units, opts)
	if err := r2.Run(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if store.inserts != 2 || store.updates != 0 {
		t.Fatalf("second run must be a no-op, got inserts=%d updates=%d", store.inserts, store.updates)
	}
}

func TestRunFollowsReservationToNewSpace(t *testing.T) {
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12", "S2": "Cabin 7"}}
	store := &fakeStore{}
	opts := testOptions(t)

	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}}}
	r := newTestReconciler(t, src, store, units, opts)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// The reservation is re-assigned to Cabin 7 before the next pass.
	moved := cabin12Reservation()
	moved.SpaceID = "S2"
	src2 := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {moved}}}
	r2 := newTestReconciler(t, src2, store, units, opts)
	if err := r2.Run(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("expected the assignment to move, not duplicate; have %d rows", len(store.rows))
	}
	row := store.rows[0]
	if row.UnitName != "Cabin 7" || row.UnitKey != "cabin 7" {
		t.Fatalf("assignment did not follow the reservation: %+v", row)
	}
	if row.Title != "Sluttrengjøring Cabin 7" {
		t.Fatalf("title not rewritten: %q", row.Title)
	}
	if store.updates != 1 {
		t.Fatalf("expected exactly 1 update, got %d", store.updates)
	}
}

func TestRunSkipsCancelledReservationsAndKeepsExistingRows(t *testing.T) {
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}
	store := &fakeStore{}
	opts := testOptions(t)

	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}}}
	r := newTestReconciler(t, src, store, units, opts)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	cancelled := cabin12Reservation()
	cancelled.State = "Canceled"
	src2 := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cancelled}}}
	r2 := newTestReconciler(t, src2, store, units, opts)
	if err := r2.Run(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if store.inserts != 1 || store.updates != 0 {
		t.Fatalf("cancelled reservation must produce no writes, got inserts=%d updates=%d", store.inserts, store.updates)
	}
	if len(store.rows) != 1 {
		t.Fatal("existing assignment of a cancelled reservation must not be deleted")
	}
}

func TestRunRecoversFromLostInsertRace(t *testing.T) {
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}
	// The slot already exists in storage but was written after our prefetch.
	conflicting := assignments.Assignment{
		ID:       99,
		Date:     "2025-06-05",
		UnitName: "Cabin 12",
		UnitKey:  "cabin 12",
		CabinNo:  "12",
		Title:    "Sluttrengjøring Cabin 12",
		Type:     assignments.TypeCleaning,
		Status:   assignments.StatusNotStarted,
	}
	store := &fakeStore{nextID: 99, hiddenConflicts: []assignments.Assignment{conflicting}}
	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}}}

	r := newTestReconciler(t, src, store, units, testOptions(t))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if store.inserts != 0 {
		t.Fatalf("insert should have lost the race, got %d inserts", store.inserts)
	}
	if store.updates != 1 {
		t.Fatalf("expected the conflicting row to be updated, got %d updates", store.updates)
	}
	row := store.hiddenConflicts[0]
	if row.MewsReservationID == nil || *row.MewsReservationID != "R1" {
		t.Fatal("conflicting row not relinked to R1")
	}
}

func TestRunRetriesWritesWithoutUnitKeyWhenColumnIsGenerated(t *testing.T) {
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}
	store := &fakeStore{rejectUnitKeyWrites: true}
	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}}}

	r := newTestReconciler(t, src, store, units, testOptions(t))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if store.insertsWithUnitKey != 1 {
		t.Fatalf("expected one rejected unit_key insert attempt, got %d", store.insertsWithUnitKey)
	}
	if store.inserts != 1 {
		t.Fatalf("expected the retry without unit_key to succeed, got %d inserts", store.inserts)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	units := &fakeUnits{dir: map[string]string{"S1": "Cabin 12"}}
	store := &fakeStore{}
	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {cabin12Reservation()}}}

	opts := testOptions(t)
	opts.DryRun = true

	r := newTestReconciler(t, src, store, units, opts)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if store.inserts != 0 || store.updates != 0 || len(store.rows) != 0 {
		t.Fatalf("dry run must not touch the store, got inserts=%d updates=%d rows=%d",
			store.inserts, store.updates, len(store.rows))
	}
}

func TestRunResolvesUnknownSpaceToPlaceholderUnit(t *testing.T) {
	units := &fakeUnits{dir: map[string]string{}}
	store := &fakeStore{}
	res := cabin12Reservation()
	res.SpaceID = "S-mystery"
	src := &fakeSource{reservations: map[string][]mews.Reservation{"svc-1": {res}}}

	r := newTestReconciler(t, src, store, units, testOptions(t))
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	row, ok := findRow(store.rows, assignments.TypeCleaning)
	if !ok {
		t.Fatal("no assignment created for unknown space")
	}
	if row.UnitName != "Ukjent enhet (S-mystery)" {
		t.Fatalf("unexpected placeholder unit name %q", row.UnitName)
	}
}
