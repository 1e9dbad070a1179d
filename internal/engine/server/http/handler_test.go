package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/engine/core/service"
	"github.com/veltrack-io/veltrack/internal/pkg/util"
	"github.com/veltrack-io/veltrack/pkg/options"
)

// stubRepo backs the router tests with one vehicle and one client.
type stubRepo struct {
	vehicle   model.Vehicle
	pin       string
	positions []model.Position
	events    []model.Event
	commands  []model.CommandLogEntry
}

func (s *stubRepo) Vehicle() core.VehicleRepository       { return (*stubVehicles)(s) }
func (s *stubRepo) Position() core.PositionRepository     { return (*stubPositions)(s) }
func (s *stubRepo) Event() core.EventRepository           { return (*stubEvents)(s) }
func (s *stubRepo) Client() core.ClientRepository         { return (*stubClients)(s) }
func (s *stubRepo) CommandLog() core.CommandLogRepository { return (*stubCommands)(s) }

func (s *stubRepo) InTx(ctx context.Context, plate string, fn func(core.Repository) error) error {
	return fn(s)
}

type stubVehicles stubRepo

func (s *stubVehicles) GetByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	if plate != s.vehicle.Plate {
		return nil, util.ErrNotFound
	}
	clone := s.vehicle
	return &clone, nil
}

func (s *stubVehicles) SetIgnition(ctx context.Context, vehicleID int64, on bool) error {
	s.vehicle.Ignition = on
	return nil
}

func (s *stubVehicles) TouchLastContact(ctx context.Context, vehicleID int64, ts time.Time) error {
	s.vehicle.LastContact = ts
	return nil
}

type stubPositions stubRepo

func (s *stubPositions) LastByPlate(ctx context.Context, plate string) (*model.Position, error) {
	if len(s.positions) == 0 {
		return nil, util.ErrNotFound
	}
	clone := s.positions[len(s.positions)-1]
	return &clone, nil
}

func (s *stubPositions) Append(ctx context.Context, p *model.Position) error {
	s.positions = append(s.positions, *p)
	return nil
}

func (s *stubPositions) Range(ctx context.Context, plate string, from, to time.Time) ([]model.Position, error) {
	return append([]model.Position(nil), s.positions...), nil
}

type stubEvents stubRepo

func (s *stubEvents) LastByVehicle(ctx context.Context, vehicleID int64) (*model.Event, error) {
	if len(s.events) == 0 {
		return nil, util.ErrNotFound
	}
	clone := s.events[len(s.events)-1]
	return &clone, nil
}

func (s *stubEvents) Append(ctx context.Context, e *model.Event) error {
	s.events = append(s.events, *e)
	return nil
}

type stubClients stubRepo

func (s *stubClients) PIN(ctx context.Context, clientID int64) (string, error) {
	if clientID != s.vehicle.ClientID {
		return "", util.ErrNotFound
	}
	if s.pin == "" {
		return "", util.ErrPinNotSet
	}
	return s.pin, nil
}

type stubCommands stubRepo

func (s *stubCommands) Append(ctx context.Context, entry *model.CommandLogEntry) error {
	s.commands = append(s.commands, *entry)
	return nil
}

func newTestRouter(t *testing.T, repo *stubRepo) http.Handler {
	t.Helper()
	classifier, err := service.NewClassifier(nil)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	svc := service.New(repo, nil, nil, nil, nil, classifier, nil)
	return NewServer(options.NewHttpOptions(), svc).server.Handler
}

func defaultRepo() *stubRepo {
	return &stubRepo{
		vehicle: model.Vehicle{ID: 1, Plate: "ABC1D23", ClientID: 7, Ignition: true, Active: true},
		pin:     "4321",
	}
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIngestPositionEndpoint(t *testing.T) {
	repo := defaultRepo()
	h := newTestRouter(t, repo)

	rec := doJSON(t, h, http.MethodPost, "/v1/positions",
		`{"plate":"ABC1D23","latitude":-23.5505,"longitude":-46.6333,"timestamp":"2026-08-30T12:00:00Z","led":"green"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp positionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Errorf("events = %+v, want ignition on and moving", resp.Events)
	}
	if len(repo.positions) != 1 {
		t.Errorf("stored %d positions, want 1", len(repo.positions))
	}
}

func TestIngestPositionEndpointRejectsBadInput(t *testing.T) {
	h := newTestRouter(t, defaultRepo())

	for _, tc := range []struct {
		name string
		body string
		want int
	}{
		{"missing plate", `{"latitude":1,"longitude":1}`, http.StatusBadRequest},
		{"bad timestamp", `{"plate":"ABC1D23","latitude":1,"longitude":1,"timestamp":"yesterday"}`, http.StatusBadRequest},
		{"out of range coordinates", `{"plate":"ABC1D23","latitude":95,"longitude":1}`, http.StatusBadRequest},
		{"unknown plate", `{"plate":"ZZZ0Z00","latitude":1,"longitude":1}`, http.StatusNotFound},
		{"garbage body", `{{{`, http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/v1/positions", tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestSubmitCommandEndpoint(t *testing.T) {
	repo := defaultRepo()
	h := newTestRouter(t, repo)

	rec := doJSON(t, h, http.MethodPost, "/v1/vehicles/ABC1D23/command",
		`{"command":"Cut","client_id":7,"pin":"4321"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp commandResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Status != "Confirmed" || resp.Ignition {
		t.Errorf("response = %+v", resp)
	}
	if repo.vehicle.Ignition {
		t.Error("ignition still on after cut")
	}
}

func TestSubmitCommandEndpointStatusMapping(t *testing.T) {
	for _, tc := range []struct {
		name string
		body string
		want int
	}{
		{"wrong pin", `{"command":"Cut","client_id":7,"pin":"0000"}`, http.StatusForbidden},
		{"unknown client", `{"command":"Cut","client_id":9,"pin":"4321"}`, http.StatusNotFound},
		{"invalid command", `{"command":"Boost","client_id":7,"pin":"4321"}`, http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(t, defaultRepo())
			rec := doJSON(t, h, http.MethodPost, "/v1/vehicles/ABC1D23/command", tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestVehicleStatusEndpoint(t *testing.T) {
	repo := defaultRepo()
	repo.positions = append(repo.positions, model.Position{
		Plate: "ABC1D23", Timestamp: time.Now(),
	})
	h := newTestRouter(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles/ABC1D23/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Status != "Online" {
		t.Errorf("status = %q, want Online", resp.Status)
	}
}

func TestHealthEndpoints(t *testing.T) {
	calls := 0
	classifier, _ := service.NewClassifier(nil)
	svc := service.New(defaultRepo(), nil, nil, nil, nil, classifier, nil)
	srv := NewServer(options.NewHttpOptions(), svc, func(ctx context.Context) error {
		calls++
		return nil
	})
	h := srv.server.Handler

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
	if calls != 1 {
		t.Errorf("readiness checker ran %d times, want 1", calls)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d", rec.Code)
	}
}
