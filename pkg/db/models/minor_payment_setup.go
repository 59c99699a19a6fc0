package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/pkg/enums"
)

// MinorPaymentSetup tracks a minor's payment-card lifecycle.
type MinorPaymentSetup struct {
	ID               uuid.UUID  `gorm:"column:id;type:text;primaryKey" json:"id"`
	MigrationID      uuid.UUID  `gorm:"column:migration_id;type:text;not null" json:"migration_id"`
	MemberID         uuid.UUID  `gorm:"column:member_id;type:text;not null" json:"member_id"`
	NeedsAccount     bool       `gorm:"column:needs_account;not null" json:"needs_account"`
	AccountCreatedAt *time.Time `gorm:"column:account_created_at" json:"account_created_at"`
	CardOrderedAt    *time.Time `gorm:"column:card_ordered_at" json:"card_ordered_at"`
	CardArrivedAt    *time.Time `gorm:"column:card_arrived_at" json:"card_arrived_at"`
	ActivatedAt      *time.Time `gorm:"column:activated_at" json:"activated_at"`
	CardLastFour     string     `gorm:"column:card_last_four;not null;default:''" json:"card_last_four"`
	Completed        bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MinorPaymentSetup) TableName() string { return "minor_payment_setups" }

func (MinorPaymentSetup) EntityKind() Kind { return KindMinorPaymentSetup }

func (p MinorPaymentSetup) EntityID() uuid.UUID { return p.ID }

func (p MinorPaymentSetup) Parents() []Ref {
	return []Ref{
		{Kind: KindMigration, ID: p.MigrationID},
		{Kind: KindFamilyMember, ID: p.MemberID},
	}
}

// Stage returns the furthest lifecycle step reached, or "" when none.
func (p MinorPaymentSetup) Stage() enums.PaymentEvent {
	switch {
	case p.ActivatedAt != nil:
		return enums.PaymentEventActivated
	case p.CardArrivedAt != nil:
		return enums.PaymentEventCardArrived
	case p.CardOrderedAt != nil:
		return enums.PaymentEventCardOrdered
	case p.AccountCreatedAt != nil:
		return enums.PaymentEventAccountCreated
	}
	return ""
}
