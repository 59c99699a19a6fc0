// Package coordinator is the validating facade every caller goes through.
// Writes are serialized per migration and applied in a single transaction.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/adoption"
	"github.com/angelmondragon/devicemove-backend/internal/locks"
	"github.com/angelmondragon/devicemove-backend/internal/payments"
	"github.com/angelmondragon/devicemove-backend/internal/reports"
	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
	"github.com/angelmondragon/devicemove-backend/pkg/metrics"
	"github.com/angelmondragon/devicemove-backend/pkg/pagination"
)

// Service exposes the migration operations.
type Service interface {
	InitializeMigration(ctx context.Context, input InitializeInput) (*models.Migration, error)
	MostRecentIncomplete(ctx context.Context) (*models.Migration, error)
	RecordSourceInventory(ctx context.Context, migrationID uuid.UUID, input InventoryInput) (*models.Migration, error)
	AddFamilyMember(ctx context.Context, migrationID uuid.UUID, input AddMemberInput) (*MemberResult, error)
	PendingActions(ctx context.Context, migrationID uuid.UUID) ([]adoption.PendingMember, error)
	UpdateAdoptionStatus(ctx context.Context, migrationID uuid.UUID, memberName, service string, observed enums.AdoptionStatus) (*AdoptionResult, error)
	RecordPaymentEvent(ctx context.Context, migrationID uuid.UUID, memberName string, event enums.PaymentEvent) (*PaymentResult, error)
	ActivateMinorPayment(ctx context.Context, migrationID uuid.UUID, memberName, lastFour string) (*PaymentResult, error)
	RecordTransferStart(ctx context.Context, migrationID uuid.UUID) (*models.MediaTransfer, error)
	UpdateMediaProgress(ctx context.Context, migrationID uuid.UUID, input MediaProgressInput) (*models.MediaTransfer, error)
	RecordStorageSnapshot(ctx context.Context, migrationID uuid.UUID, input SnapshotInput) (*SnapshotResult, error)
	ListSnapshots(ctx context.Context, migrationID uuid.UUID, params pagination.Params) (*SnapshotPage, error)
	Baseline(ctx context.Context, migrationID uuid.UUID) (*BaselineStatus, error)
	GetDailySummary(ctx context.Context, migrationID uuid.UUID, day int) (*DailySummary, error)
	GetOverallStatus(ctx context.Context, migrationID uuid.UUID) (*OverallStatus, error)
	CompleteMigration(ctx context.Context, migrationID uuid.UUID) (*OverallStatus, error)
	GenerateReport(ctx context.Context, migrationID uuid.UUID, detail enums.DetailLevel) (*reports.Report, error)
}

// Params wires a Service.
type Params struct {
	Store   *store.Store
	Locker  locks.Locker
	Policy  config.PolicyConfig
	Logger  *logger.Logger
	Metrics *metrics.OperationMetrics
	Now     func() time.Time
}

type service struct {
	store       *store.Store
	locker      locks.Locker
	logg        *logger.Logger
	metrics     *metrics.OperationMetrics
	now         func() time.Time
	services    []string
	paymentSvc  string
	eligibility payments.Eligibility
	policy      timeline.Policy
	tracker     *adoption.Tracker
	reports     *reports.Generator
}

// NewService builds the coordinator.
func NewService(p Params) (Service, error) {
	if p.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if p.Locker == nil {
		p.Locker = locks.NewKeyedMutex()
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	services := p.Policy.NormalizedServices()
	if len(services) == 0 {
		return nil, fmt.Errorf("at least one adoption service required")
	}

	gen, err := reports.NewGenerator(p.Store, p.Policy, p.Now)
	if err != nil {
		return nil, err
	}

	return &service{
		store:       p.Store,
		locker:      p.Locker,
		logg:        p.Logger,
		metrics:     p.Metrics,
		now:         p.Now,
		services:    services,
		paymentSvc:  normalizeService(p.Policy.PaymentService),
		eligibility: payments.NewEligibility(p.Policy),
		policy:      timeline.New(p.Policy),
		tracker:     adoption.NewTracker(p.Logger),
		reports:     gen,
	}, nil
}

// begin decorates ctx for op and returns the hook that records its outcome.
func (s *service) begin(ctx context.Context, op string, migrationID uuid.UUID) (context.Context, func(error)) {
	ctx = s.logg.WithOperation(ctx, op)
	if migrationID != uuid.Nil {
		ctx = s.logg.WithMigrationID(ctx, migrationID.String())
	}
	started := time.Now()
	return ctx, func(err error) {
		code := "OK"
		if err != nil {
			c := pkgerrors.CodeOf(err)
			code = string(c)
			if pkgerrors.MetadataFor(c).Retryable {
				s.logg.Error(ctx, op+" failed", err)
			} else {
				s.logg.Warn(s.logg.WithField(ctx, "error_code", code), op+" rejected: "+err.Error())
			}
		}
		s.metrics.Observe(op, code, time.Since(started))
	}
}

// write runs fn under the migration's lock inside one transaction, after
// checking the migration exists and is still open.
func (s *service) write(ctx context.Context, migrationID uuid.UUID, fn func(tx *store.Store, m *models.Migration) error) error {
	if migrationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "migration id is required")
	}
	release, err := s.locker.Acquire(ctx, migrationID.String())
	if err != nil {
		return err
	}
	defer release()

	return s.store.WithTx(ctx, func(tx *store.Store) error {
		m, err := tx.Migration(ctx, migrationID)
		if err != nil {
			return err
		}
		if m.IsCompleted() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("migration %s is already completed", m.ID)).
				WithDetails(map[string]any{"migration_id": m.ID.String(), "completed_at": m.CompletedAt})
		}
		return fn(tx, m)
	})
}

func (s *service) migration(ctx context.Context, migrationID uuid.UUID) (*models.Migration, error) {
	if migrationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "migration id is required")
	}
	return s.store.Migration(ctx, migrationID)
}

func (s *service) advancePhase(ctx context.Context, tx *store.Store, m *models.Migration, target enums.MigrationPhase) error {
	next := m.Phase.Advance(target)
	if next == m.Phase {
		return nil
	}
	if err := tx.MergeUpdate(ctx, ref(m), store.MigrationPatch{Phase: &next}); err != nil {
		return err
	}
	m.Phase = next
	return nil
}

func (s *service) timestamp() time.Time {
	return s.now().UTC()
}

func ref(entity models.Entity) models.Ref {
	return models.Ref{Kind: entity.EntityKind(), ID: entity.EntityID()}
}
