package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/pagination"
)

// Migration loads a migration by id.
func (s *Store) Migration(ctx context.Context, id uuid.UUID) (*models.Migration, error) {
	var m models.Migration
	if err := s.Get(ctx, models.Ref{Kind: models.KindMigration, ID: id}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MostRecentIncomplete returns the latest-started migration with no
// completion timestamp.
func (s *Store) MostRecentIncomplete(ctx context.Context) (*models.Migration, error) {
	var rows []models.Migration
	err := s.Query(ctx, Query{
		Kind:   models.KindMigration,
		Filter: map[string]any{"completed_at": nil},
		Order:  []OrderBy{{Column: "started_at", Desc: true}, {Column: "id", Desc: true}},
		Limit:  1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no incomplete migration")
	}
	return &rows[0], nil
}

// IncompleteMigrations lists every migration still in flight.
func (s *Store) IncompleteMigrations(ctx context.Context) ([]models.Migration, error) {
	var rows []models.Migration
	err := s.Query(ctx, Query{
		Kind:   models.KindMigration,
		Filter: map[string]any{"completed_at": nil},
		Order:  []OrderBy{{Column: "started_at"}},
	}, &rows)
	return rows, err
}

// Members lists a migration's family members in creation order.
func (s *Store) Members(ctx context.Context, migrationID uuid.UUID) ([]models.FamilyMember, error) {
	var rows []models.FamilyMember
	err := s.Query(ctx, Query{
		Kind:   models.KindFamilyMember,
		Filter: map[string]any{"migration_id": migrationID},
		Order:  []OrderBy{{Column: "created_at"}, {Column: "name_key"}},
	}, &rows)
	return rows, err
}

// MemberByName finds a member by case-insensitive name within a migration.
func (s *Store) MemberByName(ctx context.Context, migrationID uuid.UUID, name string) (*models.FamilyMember, error) {
	var rows []models.FamilyMember
	err := s.Query(ctx, Query{
		Kind:   models.KindFamilyMember,
		Filter: map[string]any{"migration_id": migrationID, "name_key": models.NameKey(name)},
		Limit:  1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("family member %q not found", name))
	}
	return &rows[0], nil
}

// Adoptions lists every adoption record of a migration.
func (s *Store) Adoptions(ctx context.Context, migrationID uuid.UUID) ([]models.AppAdoption, error) {
	var rows []models.AppAdoption
	err := s.Query(ctx, Query{
		Kind:   models.KindAppAdoption,
		Filter: map[string]any{"migration_id": migrationID},
		Order:  []OrderBy{{Column: "created_at"}, {Column: "service"}},
	}, &rows)
	return rows, err
}

// Adoption loads the record for one member and service.
func (s *Store) Adoption(ctx context.Context, memberID uuid.UUID, service string) (*models.AppAdoption, error) {
	var rows []models.AppAdoption
	err := s.Query(ctx, Query{
		Kind:   models.KindAppAdoption,
		Filter: map[string]any{"member_id": memberID, "service": service},
		Limit:  1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("adoption for service %q not found", service))
	}
	return &rows[0], nil
}

// Transfer loads the media transfer of a migration.
func (s *Store) Transfer(ctx context.Context, migrationID uuid.UUID) (*models.MediaTransfer, error) {
	var rows []models.MediaTransfer
	err := s.Query(ctx, Query{
		Kind:   models.KindMediaTransfer,
		Filter: map[string]any{"migration_id": migrationID},
		Limit:  1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "media transfer not found")
	}
	return &rows[0], nil
}

// Snapshots returns every storage snapshot ordered by (day, sequence).
func (s *Store) Snapshots(ctx context.Context, migrationID uuid.UUID) ([]models.StorageSnapshot, error) {
	var rows []models.StorageSnapshot
	err := s.Query(ctx, Query{
		Kind:   models.KindStorageSnapshot,
		Filter: map[string]any{"migration_id": migrationID},
		Order:  []OrderBy{{Column: "day_number"}, {Column: "sequence"}},
	}, &rows)
	return rows, err
}

// SnapshotPage returns up to limit snapshots after the cursor, plus the
// cursor of the next page when more rows exist.
func (s *Store) SnapshotPage(ctx context.Context, migrationID uuid.UUID, params pagination.Params) ([]models.StorageSnapshot, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := s.base.DB(ctx).Model(&models.StorageSnapshot{}).Where("migration_id = ?", migrationID)
	if cursor != nil {
		query = query.Where("(day_number > ?) OR (day_number = ? AND sequence > ?)", cursor.Day, cursor.Day, cursor.Sequence)
	}

	var rows []models.StorageSnapshot
	err = query.Order("day_number ASC").Order("sequence ASC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error
	if err != nil {
		return nil, "", mapError(err, "list storage snapshots")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{Day: last.DayNumber, Sequence: last.Sequence})
	}
	return rows, next, nil
}

// PaymentSetups lists the minor payment setups of a migration.
func (s *Store) PaymentSetups(ctx context.Context, migrationID uuid.UUID) ([]models.MinorPaymentSetup, error) {
	var rows []models.MinorPaymentSetup
	err := s.Query(ctx, Query{
		Kind:   models.KindMinorPaymentSetup,
		Filter: map[string]any{"migration_id": migrationID},
		Order:  []OrderBy{{Column: "created_at"}},
	}, &rows)
	return rows, err
}

// PaymentSetup loads the setup belonging to a member.
func (s *Store) PaymentSetup(ctx context.Context, memberID uuid.UUID) (*models.MinorPaymentSetup, error) {
	var rows []models.MinorPaymentSetup
	err := s.Query(ctx, Query{
		Kind:   models.KindMinorPaymentSetup,
		Filter: map[string]any{"member_id": memberID},
		Limit:  1,
	}, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "minor payment setup not found")
	}
	return &rows[0], nil
}

// DailyRollups lists stored rollups ordered by day.
func (s *Store) DailyRollups(ctx context.Context, migrationID uuid.UUID) ([]models.DailyProgress, error) {
	var rows []models.DailyProgress
	err := s.Query(ctx, Query{
		Kind:   models.KindDailyProgress,
		Filter: map[string]any{"migration_id": migrationID},
		Order:  []OrderBy{{Column: "day_number"}},
	}, &rows)
	return rows, err
}
