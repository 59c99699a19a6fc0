package models

import "github.com/google/uuid"

// Kind names a persisted entity type.
type Kind string

const (
	KindMigration         Kind = "migration"
	KindFamilyMember      Kind = "family_member"
	KindAppAdoption       Kind = "app_adoption"
	KindMediaTransfer     Kind = "media_transfer"
	KindStorageSnapshot   Kind = "storage_snapshot"
	KindMinorPaymentSetup Kind = "minor_payment_setup"
	KindDailyProgress     Kind = "daily_progress"
)

var tableByKind = map[Kind]string{
	KindMigration:         "migrations",
	KindFamilyMember:      "family_members",
	KindAppAdoption:       "app_adoptions",
	KindMediaTransfer:     "media_transfers",
	KindStorageSnapshot:   "storage_snapshots",
	KindMinorPaymentSetup: "minor_payment_setups",
	KindDailyProgress:     "daily_progress",
}

// Table returns the table backing the kind, or "" when unknown.
func (k Kind) Table() string {
	return tableByKind[k]
}

// IsValid reports whether the kind maps to a table.
func (k Kind) IsValid() bool {
	return k.Table() != ""
}

// Ref identifies a single row.
type Ref struct {
	Kind Kind
	ID   uuid.UUID
}

// Entity is implemented by every persisted model.
type Entity interface {
	EntityKind() Kind
	EntityID() uuid.UUID
	// Parents lists the rows that must exist before this one may be created.
	Parents() []Ref
}
