package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/devicemove-backend/internal/adoption"
	"github.com/angelmondragon/devicemove-backend/internal/timeline"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

type reader interface {
	Migration(ctx context.Context, id uuid.UUID) (*models.Migration, error)
	Members(ctx context.Context, migrationID uuid.UUID) ([]models.FamilyMember, error)
	Adoptions(ctx context.Context, migrationID uuid.UUID) ([]models.AppAdoption, error)
	Transfer(ctx context.Context, migrationID uuid.UUID) (*models.MediaTransfer, error)
	PaymentSetups(ctx context.Context, migrationID uuid.UUID) ([]models.MinorPaymentSetup, error)
	DailyRollups(ctx context.Context, migrationID uuid.UUID) ([]models.DailyProgress, error)
	Snapshots(ctx context.Context, migrationID uuid.UUID) ([]models.StorageSnapshot, error)
}

// Generator builds reports from stored state.
type Generator struct {
	store    reader
	services []string
	now      func() time.Time
}

// NewGenerator constructs a Generator.
func NewGenerator(store reader, policy config.PolicyConfig, now func() time.Time) (*Generator, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{store: store, services: policy.NormalizedServices(), now: now}, nil
}

type records struct {
	migration *models.Migration
	members   []models.FamilyMember
	adoptions []models.AppAdoption
	transfer  *models.MediaTransfer
	payments  []models.MinorPaymentSetup
	rollups   []models.DailyProgress
	snapshots []models.StorageSnapshot
}

// Generate loads every record of the migration concurrently and renders the
// report. A completed migration always renders as a full success.
func (g *Generator) Generate(ctx context.Context, migrationID uuid.UUID, detail enums.DetailLevel) (*Report, error) {
	if detail == "" {
		detail = enums.DetailLevelSummary
	}
	if !detail.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid detail level %q", detail))
	}

	state, err := g.load(ctx, migrationID, detail)
	if err != nil {
		return nil, err
	}
	return g.render(state, detail), nil
}

func (g *Generator) load(ctx context.Context, migrationID uuid.UUID, detail enums.DetailLevel) (*records, error) {
	var st records
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() (err error) {
		st.migration, err = g.store.Migration(egCtx, migrationID)
		return err
	})
	eg.Go(func() (err error) {
		st.members, err = g.store.Members(egCtx, migrationID)
		return err
	})
	eg.Go(func() (err error) {
		st.adoptions, err = g.store.Adoptions(egCtx, migrationID)
		return err
	})
	eg.Go(func() error {
		t, err := g.store.Transfer(egCtx, migrationID)
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil
		}
		st.transfer = t
		return err
	})
	eg.Go(func() (err error) {
		st.payments, err = g.store.PaymentSetups(egCtx, migrationID)
		return err
	})
	eg.Go(func() (err error) {
		st.rollups, err = g.store.DailyRollups(egCtx, migrationID)
		return err
	})
	if detail == enums.DetailLevelFull {
		eg.Go(func() (err error) {
			st.snapshots, err = g.store.Snapshots(egCtx, migrationID)
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}

func (g *Generator) render(st *records, detail enums.DetailLevel) *Report {
	m := st.migration
	completed := m.IsCompleted()

	r := &Report{
		MigrationID:          m.ID,
		SubjectName:          m.SubjectName,
		YearsOnPriorPlatform: m.YearsOnPriorPlatform,
		Detail:               detail,
		Phase:                m.Phase,
		Completed:            completed,
		CurrentDay:           m.DayNumber(g.now()),
		StartedAt:            m.StartedAt,
		CompletedAt:          m.CompletedAt,
		GeneratedAt:          g.now().UTC(),
	}

	r.Percent, r.Status = latestProgress(m, st.rollups)
	r.Transfer = transferSummary(m, st.transfer)
	r.Adoption = adoption.Counts(st.adoptions, g.services)
	r.Payments = PaymentSummary{Total: len(st.payments)}
	for _, p := range st.payments {
		if p.ActivatedAt != nil {
			r.Payments.Activated++
		}
	}

	if completed {
		r.CurrentDay = timeline.FinalDay
		r.Percent = 100
		r.Status = enums.OverallStatusSuccess
		r.Transfer.Status = enums.TransferStatusCompleted
		r.Transfer.PhotosTransferred = r.Transfer.DeclaredPhotos
		r.Transfer.VideosTransferred = r.Transfer.DeclaredVideos
		for i := range r.Adoption {
			r.Adoption[i].Configured = r.Adoption[i].Total
		}
		r.Payments.Activated = r.Payments.Total
	}

	if detail == enums.DetailLevelFull {
		r.Members = memberDetails(st, completed)
		r.Snapshots = make([]SnapshotEntry, 0, len(st.snapshots))
		for _, s := range st.snapshots {
			r.Snapshots = append(r.Snapshots, SnapshotEntry{
				Day:        s.DayNumber,
				Sequence:   s.Sequence,
				StorageGB:  s.StorageUsedGB,
				Baseline:   s.IsBaseline,
				RawPercent: s.PercentComplete,
				ObservedAt: s.ObservedAt,
			})
		}
	}

	r.Lines = renderLines(r)
	return r
}

func latestProgress(m *models.Migration, rollups []models.DailyProgress) (float64, enums.OverallStatus) {
	if len(rollups) == 0 {
		if m.OverallProgress > 0 {
			return m.OverallProgress, enums.OverallStatusInProgress
		}
		return 0, enums.OverallStatusPending
	}
	latest := rollups[0]
	for _, row := range rollups[1:] {
		if row.DayNumber > latest.DayNumber {
			latest = row
		}
	}
	return latest.ReportedPercent, latest.Status
}

func transferSummary(m *models.Migration, t *models.MediaTransfer) TransferSummary {
	if t == nil {
		return TransferSummary{
			Status:         enums.TransferStatusNotStarted,
			DeclaredPhotos: m.DeclaredPhotoCount,
			DeclaredVideos: m.DeclaredVideoCount,
		}
	}
	return TransferSummary{
		Status:            t.OverallStatus,
		PhotosTransferred: t.PhotosTransferred,
		DeclaredPhotos:    t.DeclaredPhotos,
		VideosTransferred: t.VideosTransferred,
		DeclaredVideos:    t.DeclaredVideos,
		StorageGB:         t.TransferredStorageGB,
	}
}

func memberDetails(st *records, completed bool) []MemberDetail {
	services := map[uuid.UUID][]adoption.ServiceStatus{}
	for _, row := range st.adoptions {
		status := row.Status
		if completed {
			status = enums.AdoptionStatusConfigured
		}
		services[row.MemberID] = append(services[row.MemberID], adoption.ServiceStatus{Service: row.Service, Status: status})
	}
	stages := map[uuid.UUID]enums.PaymentEvent{}
	for _, p := range st.payments {
		stage := p.Stage()
		if completed {
			stage = enums.PaymentEventActivated
		}
		stages[p.MemberID] = stage
	}

	out := make([]MemberDetail, 0, len(st.members))
	for _, member := range st.members {
		svc := services[member.ID]
		if svc == nil {
			svc = []adoption.ServiceStatus{}
		}
		out = append(out, MemberDetail{
			Name:     member.Name,
			Role:     member.Role,
			Age:      member.Age,
			Services: svc,
			Payment:  stages[member.ID],
		})
	}
	return out
}
