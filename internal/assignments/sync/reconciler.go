// Package sync implements the reservation-to-assignment reconciliation: for
// every relevant upstream reservation it computes the desired cleaning and
// linen assignments and upserts them into the assignment store under strict
// idempotency rules.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mews_bridge_backend/internal/assignments"
	"mews_bridge_backend/internal/assignments/repository"
	"mews_bridge_backend/internal/mews"
	"mews_bridge_backend/platform/config"
	"mews_bridge_backend/platform/logger"
)

// Source supplies reservations, order items and products for a service and
// date range.
type Source interface {
	FetchReservations(ctx context.Context, serviceID string, start, end time.Time) ([]mews.Reservation, error)
	FetchOrderItems(ctx context.Context, serviceIDs []string, start, end time.Time) ([]mews.OrderItem, error)
	FetchProducts(ctx context.Context, serviceID string) ([]mews.Product, error)
}

// Store is the assignment store surface the reconciler writes through. The
// uniqueness constraint on (date, unit_key, type) at the storage layer is
// the ultimate arbiter of correctness; the in-memory indices here are a
// performance optimization on top of it.
type Store interface {
	ListRange(ctx context.Context, from, to string) ([]assignments.Assignment, error)
	GetByKey(ctx context.Context, date, unitKey, taskType string) (assignments.Assignment, error)
	Insert(ctx context.Context, a repository.NewAssignment, withUnitKey bool) (assignments.Assignment, error)
	UpdateIdentity(ctx context.Context, id int64, p repository.IdentityPatch, withUnitKey bool) error
}

// UnitDirectory maps upstream space ids to unit display names.
type UnitDirectory interface {
	Directory(ctx context.Context) (map[string]string, error)
}

// Options holds the sync configuration, resolved once at process entry.
type Options struct {
	ReservableServiceIDs []string
	LinenServiceIDs      []string
	LinenProductIDs      []string
	DaysBack             int
	DaysAhead            int
	Location             *time.Location
	DryRun               bool
}

// OptionsFromConfig resolves the sync options from the application config.
func OptionsFromConfig(cfg config.SyncConfig) (Options, error) {
	loc, err := time.LoadLocation(cfg.GetHotelTimezone())
	if err != nil {
		return Options{}, fmt.Errorf("load hotel timezone: %w", err)
	}
	return Options{
		ReservableServiceIDs: cfg.GetReservableServiceIDs(),
		LinenServiceIDs:      cfg.GetLinenServiceIDs(),
		LinenProductIDs:      cfg.GetLinenProductIDs(),
		DaysBack:             cfg.GetSyncDaysBack(),
		DaysAhead:            cfg.GetSyncDaysAhead(),
		Location:             loc,
		DryRun:               cfg.IsSyncDryRun(),
	}, nil
}

// Reconciler runs the sync pass.
type Reconciler struct {
	src   Source
	store Store
	units UnitDirectory
	opts  Options
	log   *logger.Logger
	now   func() time.Time
}

// New creates a reconciler.
func New(src Source, store Store, units UnitDirectory, opts Options, log *logger.Logger) *Reconciler {
	return &Reconciler{
		src:   src,
		store: store,
		units: units,
		opts:  opts,
		log:   log,
		now:   time.Now,
	}
}

// desiredState is the computed target for one assignment row.
type desiredState struct {
	Date          string
	UnitName      string
	UnitKey       string
	CabinNo       string
	Title         string
	Type          string
	ReservationID string
	SpaceID       string
	ServiceID     string
}

// indices gives subsequent reservations in the same run a consistent view
// of the store without re-querying after every write.
type indices struct {
	byRes map[string]assignments.Assignment // reservationID|type
	byKey map[string]assignments.Assignment // date|unitKey|type
}

func resKey(reservationID, taskType string) string {
	return reservationID + "|" + taskType
}

func slotKey(date, unitKey, taskType string) string {
	return date + "|" + unitKey + "|" + taskType
}

func buildIndices(existing []assignments.Assignment) *indices {
	idx := &indices{
		byRes: make(map[string]assignments.Assignment),
		byKey: make(map[string]assignments.Assignment),
	}
	for _, a := range existing {
		idx.byKey[slotKey(a.Date, a.UnitKey, a.Type)] = a
		if a.MewsReservationID != nil && *a.MewsReservationID != "" {
			idx.byRes[resKey(*a.MewsReservationID, a.Type)] = a
		}
	}
	return idx
}

// record replaces old with updated in both indices. The stale slot entry is
// only dropped when it still points at the row being moved.
func (idx *indices) record(old *assignments.Assignment, updated assignments.Assignment) {
	if old != nil {
		oldSlot := slotKey(old.Date, old.UnitKey, old.Type)
		if cur, ok := idx.byKey[oldSlot]; ok && cur.ID == old.ID {
			delete(idx.byKey, oldSlot)
		}
	}
	idx.byKey[slotKey(updated.Date, updated.UnitKey, updated.Type)] = updated
	if updated.MewsReservationID != nil && *updated.MewsReservationID != "" {
		idx.byRes[resKey(*updated.MewsReservationID, updated.Type)] = updated
	}
}

type runStats struct {
	inserted  int
	updated   int
	unchanged int
	skipped   int
}

// Run executes one sync pass. Setup failures (unit directory, prefetch)
// fail the run; everything downstream is recovered at the service or
// assignment granularity.
func (r *Reconciler) Run(ctx context.Context) error {
	now := r.now()
	window := ComputeWindow(now, r.opts.DaysBack, r.opts.DaysAhead, r.opts.Location)

	dir, err := r.units.Directory(ctx)
	if err != nil {
		return fmt.Errorf("load unit directory: %w", err)
	}

	existing, err := r.store.ListRange(ctx, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("prefetch assignments: %w", err)
	}
	idx := buildIndices(existing)

	classifier := NewLinenClassifier(r.opts.LinenProductIDs)
	productServices := r.opts.LinenServiceIDs
	if len(productServices) == 0 {
		productServices = r.opts.ReservableServiceIDs
	}
	for _, serviceID := range productServices {
		products, err := r.src.FetchProducts(ctx, serviceID)
		if err != nil {
			r.log.UpstreamError("fetch_products", serviceID, err)
			continue
		}
		classifier.AddProducts(products)
	}

	items, err := r.src.FetchOrderItems(ctx, productServices, window.FetchStart, window.FetchEnd)
	if err != nil {
		// degrade to zero linen counts rather than aborting the pass
		r.log.UpstreamError("fetch_order_items", "", err)
		items = nil
	}

	orderIndex := make(map[string]string)
	stats := &runStats{}

	for _, serviceID := range r.opts.ReservableServiceIDs {
		reservations, err := r.src.FetchReservations(ctx, serviceID, window.FetchStart, window.FetchEnd)
		if err != nil {
			r.log.UpstreamError("fetch_reservations", serviceID, err)
			continue
		}

		BuildOrderIndex(reservations, orderIndex)

		for _, res := range reservations {
			if !relevantReservation(res.State) {
				continue
			}
			r.reconcileReservation(ctx, res, serviceID, dir, classifier, items, orderIndex, idx, now, stats)
		}
	}

	r.log.SyncRun(window.Start+".."+window.End, stats.inserted, stats.updated, stats.skipped, r.opts.DryRun)
	return nil
}

func (r *Reconciler) reconcileReservation(
	ctx context.Context,
	res mews.Reservation,
	serviceID string,
	dir map[string]string,
	classifier *LinenClassifier,
	items []mews.OrderItem,
	orderIndex map[string]string,
	idx *indices,
	now time.Time,
	stats *runStats,
) {
	unitName := dir[res.SpaceID]
	if unitName == "" {
		unitName = res.SpaceName
	}
	if unitName == "" {
		unitName = assignments.UnknownUnitName(res.SpaceID)
	}

	unitKey := assignments.UnitKey(unitName)
	cabinNo := assignments.CabinNo(unitName)

	// cleaning goes on the departure day, linen on the arrival day, both in
	// the hotel's zone
	departure := LocalDate(res.EndUTC, now, r.opts.Location)
	arrival := LocalDate(res.StartUTC, now, r.opts.Location)

	cleaning := desiredState{
		Date:          departure,
		UnitName:      unitName,
		UnitKey:       unitKey,
		CabinNo:       cabinNo,
		Title:         assignments.CleaningTitle(unitName),
		Type:          assignments.TypeCleaning,
		ReservationID: res.ID,
		SpaceID:       res.SpaceID,
		ServiceID:     serviceID,
	}
	r.apply(ctx, cleaning, idx, stats)

	linenCount := classifier.CountForReservation(res.ID, items, orderIndex)
	if linenCount > 0 {
		linen := desiredState{
			Date:          arrival,
			UnitName:      unitName,
			UnitKey:       unitKey,
			CabinNo:       cabinNo,
			Title:         assignments.LinenTitle(unitName, linenCount),
			Type:          assignments.TypeLinen,
			ReservationID: res.ID,
			SpaceID:       res.SpaceID,
			ServiceID:     serviceID,
		}
		r.apply(ctx, linen, idx, stats)
	}
}

// apply upserts one desired assignment. Lookup priority:
//  1. a row already linked to this (reservation, type) — the reservation
//     may have moved to another unit or date, and the row must follow it
//  2. a row occupying the same (date, unit_key, type) slot — relink it
//  3. insert, converting a lost uniqueness race into an update of the
//     conflicting row
func (r *Reconciler) apply(ctx context.Context, desired desiredState, idx *indices, stats *runStats) {
	if row, ok := idx.byRes[resKey(desired.ReservationID, desired.Type)]; ok {
		if !drifted(row, desired) {
			stats.unchanged++
			return
		}
		r.update(ctx, row, desired, idx, stats)
		return
	}

	if row, ok := idx.byKey[slotKey(desired.Date, desired.UnitKey, desired.Type)]; ok {
		if !drifted(row, desired) && derefStr(row.MewsReservationID) == desired.ReservationID {
			stats.unchanged++
			return
		}
		r.update(ctx, row, desired, idx, stats)
		return
	}

	r.insert(ctx, desired, idx, stats)
}

// drifted reports whether any field the sync owns differs from the desired
// state. Workflow fields are not compared: once staff set them, the sync
// leaves them alone.
func drifted(row assignments.Assignment, desired desiredState) bool {
	return row.Date != desired.Date ||
		row.UnitName != desired.UnitName ||
		row.CabinNo != desired.CabinNo ||
		row.Title != desired.Title ||
		derefStr(row.MewsSpaceID) != desired.SpaceID ||
		derefStr(row.MewsServiceID) != desired.ServiceID
}

func (r *Reconciler) update(ctx context.Context, row assignments.Assignment, desired desiredState, idx *indices, stats *runStats) {
	if r.opts.DryRun {
		r.log.Info("dry run: would update assignment",
			"id", row.ID, "date", desired.Date, "unit_key", desired.UnitKey, "type", desired.Type,
			"reservation_id", desired.ReservationID)
		idx.record(&row, desired.toAssignment(row.ID))
		stats.updated++
		return
	}

	patch := repository.IdentityPatch{
		Date:              desired.Date,
		UnitName:          desired.UnitName,
		UnitKey:           desired.UnitKey,
		CabinNo:           desired.CabinNo,
		Title:             desired.Title,
		MewsReservationID: desired.ReservationID,
		MewsSpaceID:       desired.SpaceID,
		MewsServiceID:     desired.ServiceID,
	}

	err := r.store.UpdateIdentity(ctx, row.ID, patch, true)
	if errors.Is(err, repository.ErrUnwritableColumn) {
		err = r.store.UpdateIdentity(ctx, row.ID, patch, false)
	}
	if err != nil {
		r.log.SyncError("update", desired.Date, desired.UnitKey, desired.Type, err)
		stats.skipped++
		return
	}

	idx.record(&row, desired.toAssignment(row.ID))
	stats.updated++
}

func (r *Reconciler) insert(ctx context.Context, desired desiredState, idx *indices, stats *runStats) {
	if r.opts.DryRun {
		r.log.Info("dry run: would insert assignment",
			"date", desired.Date, "unit_key", desired.UnitKey, "type", desired.Type,
			"reservation_id", desired.ReservationID)
		idx.record(nil, desired.toAssignment(0))
		stats.inserted++
		return
	}

	row := repository.NewAssignment{
		Date:              desired.Date,
		UnitName:          desired.UnitName,
		UnitKey:           desired.UnitKey,
		CabinNo:           desired.CabinNo,
		Title:             desired.Title,
		Type:              desired.Type,
		Status:            assignments.StatusNotStarted,
		MewsReservationID: desired.ReservationID,
		MewsSpaceID:       desired.SpaceID,
		MewsServiceID:     desired.ServiceID,
	}

	created, err := r.store.Insert(ctx, row, true)
	if errors.Is(err, repository.ErrUnwritableColumn) {
		created, err = r.store.Insert(ctx, row, false)
	}
	if errors.Is(err, repository.ErrUniqueViolation) {
		// lost a race against a concurrent run, or the slot appeared between
		// prefetch and write: convert the insert into an update of whoever
		// holds the slot now
		conflicting, getErr := r.store.GetByKey(ctx, desired.Date, desired.UnitKey, desired.Type)
		if getErr != nil {
			r.log.SyncError("resolve_conflict", desired.Date, desired.UnitKey, desired.Type, getErr)
			stats.skipped++
			return
		}
		r.update(ctx, conflicting, desired, idx, stats)
		return
	}
	if err != nil {
		r.log.SyncError("insert", desired.Date, desired.UnitKey, desired.Type, err)
		stats.skipped++
		return
	}

	idx.record(nil, created)
	stats.inserted++
}

// toAssignment materializes the desired state as a row for index updates.
func (d desiredState) toAssignment(id int64) assignments.Assignment {
	return assignments.Assignment{
		ID:                id,
		Date:              d.Date,
		UnitName:          d.UnitName,
		UnitKey:           d.UnitKey,
		CabinNo:           d.CabinNo,
		Title:             d.Title,
		Type:              d.Type,
		Status:            assignments.StatusNotStarted,
		MewsReservationID: ptrStr(d.ReservationID),
		MewsSpaceID:       ptrStr(d.SpaceID),
		MewsServiceID:     ptrStr(d.ServiceID),
	}
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
