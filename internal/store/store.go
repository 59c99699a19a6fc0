package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/devicemove-backend/internal/repo"
	pkgdb "github.com/angelmondragon/devicemove-backend/pkg/db"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

// Store is the durable keyed store for every migration entity. Existing rows
// change only through MergeUpdate; storage snapshots are append-only.
type Store struct {
	base repo.Base
}

// New constructs a Store over the provided connection.
func New(db *gorm.DB) *Store {
	return &Store{base: repo.NewBase(db)}
}

// NewFromClient constructs a Store over a pooled client.
func NewFromClient(client *pkgdb.Client) *Store {
	return New(client.DB())
}

// OrderBy sorts query results by a known column.
type OrderBy struct {
	Column string
	Desc   bool
}

// Query selects rows of one kind. Filter keys are column names compared for
// equality; a nil value matches NULL.
type Query struct {
	Kind   models.Kind
	Filter map[string]any
	Order  []OrderBy
	Limit  int
}

// WithTx runs fn against a Store bound to a single transaction so a
// multi-row write is applied entirely or not at all.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	err := s.base.Transaction(ctx, func(tx repo.Base) error {
		return fn(&Store{base: tx})
	})
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "transaction failed")
}

// Create inserts a new entity after checking that its parents exist.
func (s *Store) Create(ctx context.Context, entity models.Entity) error {
	kind := entity.EntityKind()
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity kind %q", kind))
	}
	if entity.EntityID() == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s id is required", kind))
	}

	for _, parent := range entity.Parents() {
		ok, err := s.Exists(ctx, parent)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s not found", parent.Kind, parent.ID)).
				WithDetails(map[string]any{"kind": parent.Kind, "id": parent.ID.String()})
		}
	}

	if err := s.base.DB(ctx).Create(entity).Error; err != nil {
		return mapError(err, fmt.Sprintf("create %s", kind))
	}
	return nil
}

// Exists reports whether the referenced row is present.
func (s *Store) Exists(ctx context.Context, ref models.Ref) (bool, error) {
	model := newModel(ref.Kind)
	if model == nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity kind %q", ref.Kind))
	}
	var count int64
	if err := s.base.DB(ctx).Model(model).Where("id = ?", ref.ID).Count(&count).Error; err != nil {
		return false, mapError(err, fmt.Sprintf("check %s", ref.Kind))
	}
	return count > 0, nil
}

// Get loads the referenced row into dest, which must point at the kind's model.
func (s *Store) Get(ctx context.Context, ref models.Ref, dest models.Entity) error {
	if dest.EntityKind() != ref.Kind {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cannot load %s into %s", ref.Kind, dest.EntityKind()))
	}
	err := s.base.DB(ctx).Where("id = ?", ref.ID).Take(dest).Error
	if err != nil {
		return mapError(err, fmt.Sprintf("%s %s", ref.Kind, ref.ID))
	}
	return nil
}

// Query loads every row matching q into dest, a pointer to a slice of the
// kind's model.
func (s *Store) Query(ctx context.Context, q Query, dest any) error {
	model := newModel(q.Kind)
	if model == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity kind %q", q.Kind))
	}
	known := columns[q.Kind]

	tx := s.base.DB(ctx).Model(model)

	keys := make([]string, 0, len(q.Filter))
	for key := range q.Filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !hasColumn(known, key) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown %s column %q", q.Kind, key))
		}
		value := q.Filter[key]
		if value == nil {
			tx = tx.Where(clause.Expr{SQL: "? IS NULL", Vars: []any{clause.Column{Name: key}}})
			continue
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: key}, Value: value})
	}

	for _, order := range q.Order {
		if !hasColumn(known, order.Column) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown %s column %q", q.Kind, order.Column))
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	if err := tx.Find(dest).Error; err != nil {
		return mapError(err, fmt.Sprintf("query %s", q.Kind))
	}
	return nil
}

// MergeUpdate writes only the columns present in patch. Concurrent merges
// touching disjoint columns both survive because unmentioned columns are
// never rewritten.
func (s *Store) MergeUpdate(ctx context.Context, ref models.Ref, patch Patch) error {
	if patch.Kind() != ref.Kind {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s patch cannot target %s", patch.Kind(), ref.Kind))
	}
	switch ref.Kind {
	case models.KindStorageSnapshot:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "storage snapshots are append-only")
	case models.KindDailyProgress:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "daily progress is regenerated, not merged")
	}
	allowed, ok := mergeable[ref.Kind]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity kind %q", ref.Kind))
	}

	fields := patch.Fields()
	var unknown []string
	for column := range fields {
		if !hasColumn(allowed, column) {
			unknown = append(unknown, column)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cannot merge %s columns: %s", ref.Kind, strings.Join(unknown, ", "))).
			WithDetails(map[string]any{"columns": unknown})
	}

	if len(fields) == 0 {
		ok, err := s.Exists(ctx, ref)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s not found", ref.Kind, ref.ID))
		}
		return nil
	}

	res := s.base.DB(ctx).Model(newModel(ref.Kind)).Where("id = ?", ref.ID).Updates(fields)
	if res.Error != nil {
		return mapError(res.Error, fmt.Sprintf("merge %s", ref.Kind))
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s not found", ref.Kind, ref.ID))
	}
	return nil
}

// UpsertDailyProgress regenerates the rollup for (migration, day) and returns
// the stored row.
func (s *Store) UpsertDailyProgress(ctx context.Context, row *models.DailyProgress) (*models.DailyProgress, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	ok, err := s.Exists(ctx, models.Ref{Kind: models.KindMigration, ID: row.MigrationID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("migration %s not found", row.MigrationID))
	}

	err = s.base.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "migration_id"}, {Name: "day_number"}},
		DoUpdates: clause.AssignmentColumns(dailyProgressUpsertColumns),
	}).Create(row).Error
	if err != nil {
		return nil, mapError(err, "upsert daily progress")
	}

	var stored models.DailyProgress
	err = s.base.DB(ctx).
		Where("migration_id = ? AND day_number = ?", row.MigrationID, row.DayNumber).
		Take(&stored).Error
	if err != nil {
		return nil, mapError(err, "reload daily progress")
	}
	return &stored, nil
}

func mapError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, op+" not found")
	case pkgdb.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, op+": already exists")
	default:
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, op)
	}
}
