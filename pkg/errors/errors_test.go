package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", detailsOK: true},
		{code: CodeDuplicate, status: http.StatusConflict, publicMsg: "resource already exists", detailsOK: true},
		{code: CodeStateConflict, status: http.StatusConflict, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodePersistence, status: http.StatusServiceUnavailable, publicMsg: "storage unavailable", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing name")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing name" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "name"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("disk full")
	wrapped := Wrap(CodePersistence, cause, "insert snapshot")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodePersistence {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestCodeOfAndIs(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "migration not found"))
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", CodeOf(err))
	}
	if !Is(err, CodeNotFound) {
		t.Fatal("expected Is to match wrapped code")
	}
	if Is(err, CodeStateConflict) {
		t.Fatal("did not expect STATE_CONFLICT match")
	}
	if CodeOf(stdErrors.New("plain")) != CodeInternal {
		t.Fatal("untyped errors should map to INTERNAL_ERROR")
	}
}

func TestDumpCapturesPgDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_family_members_name", TableName: "family_members"}
	err := Wrap(CodeDuplicate, pgErr, "create member")

	dump := Dump(err)
	if dump.Code != CodeDuplicate {
		t.Fatalf("expected DUPLICATE code, got %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "idx_family_members_name" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
}

func TestDumpCapturesSQLiteDiagnostics(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	dump := Dump(Wrap(CodePersistence, liteErr, "insert snapshot"))
	if dump.SQLiteCode != int(sqlite3.ErrConstraint) || dump.SQLiteExtended != int(sqlite3.ErrConstraintUnique) {
		t.Fatalf("unexpected sqlite fields %+v", dump)
	}
	if !dump.Retryable {
		t.Fatal("persistence errors should be retryable")
	}
	if dump.PGCode != "" {
		t.Fatalf("pg fields should stay empty, got %q", dump.PGCode)
	}
}

func TestDumpUntypedIsInternal(t *testing.T) {
	dump := Dump(stdErrors.New("boom"))
	if dump.Code != CodeInternal || len(dump.Chain) != 1 {
		t.Fatalf("unexpected dump %+v", dump)
	}
}
