package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/adoption"
	"github.com/angelmondragon/devicemove-backend/internal/payments"
	"github.com/angelmondragon/devicemove-backend/internal/store"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
)

const maxAge = 130

func (s *service) AddFamilyMember(ctx context.Context, migrationID uuid.UUID, input AddMemberInput) (_ *MemberResult, err error) {
	ctx, done := s.begin(ctx, "add_family_member", migrationID)
	defer func() { done(err) }()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name is required")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid family role %q", input.Role))
	}
	if input.Age != nil && (*input.Age < 0 || *input.Age > maxAge) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("age must be between 0 and %d", maxAge)).
			WithDetails(map[string]any{"age": *input.Age})
	}
	ctx = s.logg.WithMemberName(ctx, name)

	member := &models.FamilyMember{
		ID:             uuid.New(),
		MigrationID:    migrationID,
		Name:           name,
		NameKey:        models.NameKey(name),
		Role:           input.Role,
		Age:            input.Age,
		ContactAddress: strings.TrimSpace(input.ContactAddress),
	}
	result := &MemberResult{}

	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		if err := tx.Create(ctx, member); err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeDuplicate) {
				return pkgerrors.Wrap(pkgerrors.CodeDuplicate, err, fmt.Sprintf("family member %q already exists", name)).
					WithDetails(map[string]any{"name": name})
			}
			return err
		}

		for _, svc := range s.services {
			rec := &models.AppAdoption{
				ID:          uuid.New(),
				MigrationID: m.ID,
				MemberID:    member.ID,
				Service:     svc,
				Status:      enums.AdoptionStatusNotStarted,
			}
			if err := tx.Create(ctx, rec); err != nil {
				return err
			}
		}

		if s.eligibility.Eligible(member.Age) {
			if err := tx.Create(ctx, payments.NewSetup(m.ID, member.ID)); err != nil {
				return err
			}
		}
		return s.advancePhase(ctx, tx, m, enums.MigrationPhaseFamilySetup)
	})
	if err != nil {
		return nil, err
	}

	loaded, err := s.store.MemberByName(ctx, migrationID, name)
	if err != nil {
		return nil, err
	}
	result.Member = *loaded
	rows, err := s.store.Adoptions(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.MemberID == loaded.ID {
			result.Adoptions = append(result.Adoptions, row)
		}
	}
	setup, err := s.store.PaymentSetup(ctx, loaded.ID)
	switch {
	case err == nil:
		result.PaymentSetup = setup
	case !pkgerrors.Is(err, pkgerrors.CodeNotFound):
		return nil, err
	}

	s.logg.Info(ctx, "family member added")
	return result, nil
}

func (s *service) PendingActions(ctx context.Context, migrationID uuid.UUID) (_ []adoption.PendingMember, err error) {
	ctx, done := s.begin(ctx, "pending_actions", migrationID)
	defer func() { done(err) }()

	m, err := s.migration(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	if m.IsCompleted() {
		return []adoption.PendingMember{}, nil
	}
	members, err := s.store.Members(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Adoptions(ctx, migrationID)
	if err != nil {
		return nil, err
	}
	return adoption.Pending(members, rows), nil
}

func (s *service) UpdateAdoptionStatus(ctx context.Context, migrationID uuid.UUID, memberName, service string, observed enums.AdoptionStatus) (_ *AdoptionResult, err error) {
	ctx, done := s.begin(ctx, "update_adoption_status", migrationID)
	defer func() { done(err) }()

	svc := normalizeService(service)
	if svc == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service name is required")
	}
	if !observed.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid adoption status %q", observed))
	}
	ctx = s.logg.WithMemberName(ctx, memberName)

	var result *AdoptionResult
	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		member, err := tx.MemberByName(ctx, m.ID, memberName)
		if err != nil {
			return err
		}
		rec, changed, err := s.observeAdoption(ctx, tx, member, svc, observed, s.timestamp())
		if err != nil {
			return err
		}
		result = &AdoptionResult{Adoption: *rec, Changed: changed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// observeAdoption advances (creating on first sight) the member's record for
// svc and returns the stored row.
func (s *service) observeAdoption(ctx context.Context, tx *store.Store, member *models.FamilyMember, svc string, observed enums.AdoptionStatus, at time.Time) (*models.AppAdoption, bool, error) {
	rec, err := tx.Adoption(ctx, member.ID, svc)
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		rec = &models.AppAdoption{
			ID:          uuid.New(),
			MigrationID: member.MigrationID,
			MemberID:    member.ID,
			Service:     svc,
			Status:      enums.AdoptionStatusNotStarted,
		}
		err = tx.Create(ctx, rec)
	}
	if err != nil {
		return nil, false, err
	}

	patch, changed, err := s.tracker.Observe(ctx, *rec, observed, at)
	if err != nil || !changed {
		return rec, false, err
	}
	if err := tx.MergeUpdate(ctx, ref(rec), patch); err != nil {
		return nil, false, err
	}
	rec, err = tx.Adoption(ctx, member.ID, svc)
	return rec, true, err
}

func (s *service) RecordPaymentEvent(ctx context.Context, migrationID uuid.UUID, memberName string, event enums.PaymentEvent) (_ *PaymentResult, err error) {
	ctx, done := s.begin(ctx, "record_payment_event", migrationID)
	defer func() { done(err) }()
	ctx = s.logg.WithMemberName(ctx, memberName)

	var result *PaymentResult
	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		member, setup, err := s.paymentSetup(ctx, tx, m.ID, memberName)
		if err != nil {
			return err
		}
		patch, changed, err := payments.Advance(*setup, event, s.timestamp())
		if err != nil {
			return err
		}
		result = &PaymentResult{Changed: changed}
		if changed {
			if err := tx.MergeUpdate(ctx, ref(setup), patch); err != nil {
				return err
			}
			if setup, err = tx.PaymentSetup(ctx, member.ID); err != nil {
				return err
			}
		}
		result.Setup = *setup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ActivateMinorPayment(ctx context.Context, migrationID uuid.UUID, memberName, lastFour string) (_ *PaymentResult, err error) {
	ctx, done := s.begin(ctx, "activate_minor_payment", migrationID)
	defer func() { done(err) }()
	ctx = s.logg.WithMemberName(ctx, memberName)

	lastFour = strings.TrimSpace(lastFour)
	if err := payments.ValidateLastFour(lastFour); err != nil {
		return nil, err
	}

	var result *PaymentResult
	err = s.write(ctx, migrationID, func(tx *store.Store, m *models.Migration) error {
		member, setup, err := s.paymentSetup(ctx, tx, m.ID, memberName)
		if err != nil {
			return err
		}
		at := s.timestamp()
		patch, changed, err := payments.Activate(*setup, lastFour, at)
		if err != nil {
			return err
		}
		result = &PaymentResult{Changed: changed}
		if changed {
			if err := tx.MergeUpdate(ctx, ref(setup), patch); err != nil {
				return err
			}
			if setup, err = tx.PaymentSetup(ctx, member.ID); err != nil {
				return err
			}
		}
		result.Setup = *setup

		if s.paymentSvc != "" {
			rec, _, err := s.observeAdoption(ctx, tx, member, s.paymentSvc, enums.AdoptionStatusConfigured, at)
			if err != nil {
				return err
			}
			result.Adoption = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) paymentSetup(ctx context.Context, tx *store.Store, migrationID uuid.UUID, memberName string) (*models.FamilyMember, *models.MinorPaymentSetup, error) {
	member, err := tx.MemberByName(ctx, migrationID, memberName)
	if err != nil {
		return nil, nil, err
	}
	setup, err := tx.PaymentSetup(ctx, member.ID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s has no minor payment setup", member.Name)).
				WithDetails(map[string]any{"name": member.Name})
		}
		return nil, nil, err
	}
	return member, setup, nil
}
