package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/devicemove-backend/internal/coordinator"
	"github.com/angelmondragon/devicemove-backend/internal/reports"
	"github.com/angelmondragon/devicemove-backend/pkg/config"
	"github.com/angelmondragon/devicemove-backend/pkg/db/models"
	"github.com/angelmondragon/devicemove-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/devicemove-backend/pkg/errors"
	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

// testService fails every operation it does not override.
type testService struct {
	coordinator.Service

	addMemberFn func(ctx context.Context, id uuid.UUID, input coordinator.AddMemberInput) (*coordinator.MemberResult, error)
	snapshotFn  func(ctx context.Context, id uuid.UUID, input coordinator.SnapshotInput) (*coordinator.SnapshotResult, error)
	summaryFn   func(ctx context.Context, id uuid.UUID, day int) (*coordinator.DailySummary, error)
	reportFn    func(ctx context.Context, id uuid.UUID, detail enums.DetailLevel) (*reports.Report, error)
	adoptionFn  func(ctx context.Context, id uuid.UUID, member, service string, status enums.AdoptionStatus) (*coordinator.AdoptionResult, error)
}

func (s *testService) AddFamilyMember(ctx context.Context, id uuid.UUID, input coordinator.AddMemberInput) (*coordinator.MemberResult, error) {
	return s.addMemberFn(ctx, id, input)
}

func (s *testService) RecordStorageSnapshot(ctx context.Context, id uuid.UUID, input coordinator.SnapshotInput) (*coordinator.SnapshotResult, error) {
	return s.snapshotFn(ctx, id, input)
}

func (s *testService) GetDailySummary(ctx context.Context, id uuid.UUID, day int) (*coordinator.DailySummary, error) {
	return s.summaryFn(ctx, id, day)
}

func (s *testService) GenerateReport(ctx context.Context, id uuid.UUID, detail enums.DetailLevel) (*reports.Report, error) {
	return s.reportFn(ctx, id, detail)
}

func (s *testService) UpdateAdoptionStatus(ctx context.Context, id uuid.UUID, member, service string, status enums.AdoptionStatus) (*coordinator.AdoptionResult, error) {
	return s.adoptionFn(ctx, id, member, service, status)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withRouteParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for k, v := range params {
		routeCtx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestAddFamilyMemberCreated(t *testing.T) {
	migrationID := uuid.New()
	svc := &testService{
		addMemberFn: func(ctx context.Context, id uuid.UUID, input coordinator.AddMemberInput) (*coordinator.MemberResult, error) {
			if id != migrationID {
				t.Fatalf("unexpected migration %s", id)
			}
			if input.Name != "Maya" || input.Role != enums.FamilyRoleMinorDependent {
				t.Fatalf("unexpected input %+v", input)
			}
			if input.Age == nil || *input.Age != 15 {
				t.Fatalf("expected age 15")
			}
			return &coordinator.MemberResult{Member: models.FamilyMember{Name: input.Name}}, nil
		},
	}

	body := `{"name":"  Maya ","role":"minor_dependent","age":15}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = withRouteParams(req, map[string]string{"migrationId": migrationID.String()})
	resp := httptest.NewRecorder()
	AddFamilyMember(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAddFamilyMemberRejectsBadRole(t *testing.T) {
	svc := &testService{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Maya","role":"cousin"}`))
	req = withRouteParams(req, map[string]string{"migrationId": uuid.NewString()})
	resp := httptest.NewRecorder()
	AddFamilyMember(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestAddFamilyMemberDuplicateIsConflict(t *testing.T) {
	svc := &testService{
		addMemberFn: func(context.Context, uuid.UUID, coordinator.AddMemberInput) (*coordinator.MemberResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicate, `family member "Maya" already exists`)
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Maya","role":"minor_dependent","age":15}`))
	req = withRouteParams(req, map[string]string{"migrationId": uuid.NewString()})
	resp := httptest.NewRecorder()
	AddFamilyMember(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != string(pkgerrors.CodeDuplicate) {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestRecordStorageSnapshotStatus(t *testing.T) {
	created := true
	svc := &testService{
		snapshotFn: func(_ context.Context, _ uuid.UUID, input coordinator.SnapshotInput) (*coordinator.SnapshotResult, error) {
			if input.StorageGB != 121 || input.Day != 4 {
				t.Fatalf("unexpected input %+v", input)
			}
			return &coordinator.SnapshotResult{Created: created}, nil
		},
	}
	id := uuid.NewString()
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"storage_gb":121,"day":4}`))
		req = withRouteParams(req, map[string]string{"migrationId": id})
		resp := httptest.NewRecorder()
		RecordStorageSnapshot(svc, testLogger())(resp, req)
		return resp.Code
	}

	if code := send(); code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", code)
	}
	created = false
	if code := send(); code != http.StatusOK {
		t.Fatalf("expected 200 on replay got %d", code)
	}
}

func TestDailySummaryValidatesDay(t *testing.T) {
	called := false
	svc := &testService{
		summaryFn: func(_ context.Context, _ uuid.UUID, day int) (*coordinator.DailySummary, error) {
			called = true
			return &coordinator.DailySummary{Day: day, ReportedPercent: 28.01}, nil
		},
	}
	id := uuid.NewString()

	req := withRouteParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"migrationId": id, "day": "9"})
	resp := httptest.NewRecorder()
	DailySummary(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest || called {
		t.Fatalf("expected 400 without service call, got %d", resp.Code)
	}

	req = withRouteParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"migrationId": id, "day": "4"})
	resp = httptest.NewRecorder()
	DailySummary(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data coordinator.DailySummary `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Day != 4 || envelope.Data.ReportedPercent != 28.01 {
		t.Fatalf("unexpected summary %+v", envelope.Data)
	}
}

func TestReportDetailParsing(t *testing.T) {
	var got enums.DetailLevel
	svc := &testService{
		reportFn: func(_ context.Context, _ uuid.UUID, detail enums.DetailLevel) (*reports.Report, error) {
			got = detail
			return &reports.Report{}, nil
		},
	}
	id := uuid.NewString()

	req := withRouteParams(httptest.NewRequest(http.MethodGet, "/?detail=full", nil), map[string]string{"migrationId": id})
	resp := httptest.NewRecorder()
	Report(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK || got != enums.DetailLevelFull {
		t.Fatalf("expected full report, got %d %s", resp.Code, got)
	}

	req = withRouteParams(httptest.NewRequest(http.MethodGet, "/?detail=verbose", nil), map[string]string{"migrationId": id})
	resp = httptest.NewRecorder()
	Report(svc, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateAdoptionStatusDecodesMemberName(t *testing.T) {
	svc := &testService{
		adoptionFn: func(_ context.Context, _ uuid.UUID, member, service string, status enums.AdoptionStatus) (*coordinator.AdoptionResult, error) {
			if member != "Maya Lee" || service != "messaging" || status != enums.AdoptionStatusInstalled {
				t.Fatalf("unexpected call %q %q %q", member, service, status)
			}
			return &coordinator.AdoptionResult{Changed: true}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"service":"messaging","status":"installed"}`))
	req = withRouteParams(req, map[string]string{"migrationId": uuid.NewString(), "memberName": "Maya%20Lee"})
	resp := httptest.NewRecorder()
	UpdateAdoptionStatus(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, nil)(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", resp.Code)
	}
	if resp.Header().Get(envHeader) != "test" {
		t.Fatalf("expected env header")
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{err: errors.New("down")})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
