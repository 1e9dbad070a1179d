package service

import (
	"context"
	"errors"
	"testing"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
)

func commandFixture() (*fakeRepo, *fakeNotifier, *Service) {
	repo := newFakeRepo()
	repo.addVehicle(&model.Vehicle{ID: 1, Plate: "ABC1D23", ClientID: 7, Ignition: true, Active: true})
	repo.pins[7] = "4321"
	notifier := &fakeNotifier{}
	return repo, notifier, newTestService(repo, nil, notifier, nil)
}

func TestSubmitIgnitionCommandCut(t *testing.T) {
	repo, notifier, s := commandFixture()

	res, err := s.SubmitIgnitionCommand(context.Background(), &CommandRequest{
		Plate:    "ABC1D23",
		Command:  model.CommandTypeCut,
		ClientID: 7,
		PIN:      "4321",
	})
	if err != nil {
		t.Fatalf("SubmitIgnitionCommand: %v", err)
	}

	if res.Status != model.CommandStatusConfirmed {
		t.Errorf("status = %s, want Confirmed", res.Status)
	}
	if res.Ignition {
		t.Error("ignition still on after cut")
	}
	if repo.vehicles["ABC1D23"].Ignition {
		t.Error("stored ignition flag still on after cut")
	}
	if repo.vehicles["ABC1D23"].LastContact.IsZero() {
		t.Error("last contact not recorded")
	}

	if len(repo.commands) != 1 {
		t.Fatalf("stored %d command log entries, want 1", len(repo.commands))
	}
	entry := repo.commands[0]
	if entry.Command != model.CommandTypeCut || entry.Origin != model.CommandOriginApp || entry.Status != model.CommandStatusConfirmed {
		t.Errorf("command log entry = %+v", entry)
	}

	if len(repo.events) != 1 || repo.events[0].Type != model.EventTypeIgnitionCut {
		t.Fatalf("events = %+v, want a single ignition cut", repo.events)
	}
	if repo.events[0].ClientID != 7 {
		t.Errorf("event client = %d, want 7", repo.events[0].ClientID)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("notified %d events, want 1", len(notifier.sent))
	}
}

func TestSubmitIgnitionCommandReactivate(t *testing.T) {
	repo, _, s := commandFixture()
	repo.vehicles["ABC1D23"].Ignition = false

	res, err := s.SubmitIgnitionCommand(context.Background(), &CommandRequest{
		Plate:    "ABC1D23",
		Command:  model.CommandTypeReactivate,
		ClientID: 7,
		PIN:      "4321",
		Origin:   model.CommandOriginCentral,
	})
	if err != nil {
		t.Fatalf("SubmitIgnitionCommand: %v", err)
	}

	if !res.Ignition || !repo.vehicles["ABC1D23"].Ignition {
		t.Error("ignition not restored")
	}
	if res.Event.Type != model.EventTypeIgnitionReactivated {
		t.Errorf("event type = %s, want IgnitionReactivated", res.Event.Type)
	}
	if repo.commands[0].Origin != model.CommandOriginCentral {
		t.Errorf("origin = %s, want Central", repo.commands[0].Origin)
	}
}

func TestSubmitIgnitionCommandDispatchesDirective(t *testing.T) {
	repo := newFakeRepo()
	repo.addVehicle(&model.Vehicle{ID: 1, Plate: "ABC1D23", ClientID: 7, Ignition: true})
	repo.pins[7] = "4321"
	dispatcher := &fakeDispatcher{}
	s := New(repo, nil, nil, dispatcher, nil, mustClassifier(), nil)

	if _, err := s.SubmitIgnitionCommand(context.Background(), &CommandRequest{
		Plate:    "ABC1D23",
		Command:  model.CommandTypeCut,
		ClientID: 7,
		PIN:      "4321",
	}); err != nil {
		t.Fatalf("SubmitIgnitionCommand: %v", err)
	}

	if len(dispatcher.sent) != 1 {
		t.Fatalf("dispatched %d directives, want 1", len(dispatcher.sent))
	}
	if d := dispatcher.sent[0]; d.plate != "ABC1D23" || d.command != model.CommandTypeCut {
		t.Errorf("dispatched %+v", d)
	}
}

func TestSubmitIgnitionCommandDenied(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*fakeRepo)
		req     CommandRequest
		wantErr error
	}{
		{
			name:    "invalid command type",
			req:     CommandRequest{Plate: "ABC1D23", Command: "SelfDestruct", ClientID: 7, PIN: "4321"},
			wantErr: ErrInvalidCommand,
		},
		{
			name:    "unknown plate",
			req:     CommandRequest{Plate: "ZZZ0Z00", Command: model.CommandTypeCut, ClientID: 7, PIN: "4321"},
			wantErr: ErrVehicleNotFound,
		},
		{
			name:    "unknown client",
			req:     CommandRequest{Plate: "ABC1D23", Command: model.CommandTypeCut, ClientID: 99, PIN: "4321"},
			wantErr: ErrClientNotFound,
		},
		{
			name:    "client without security code",
			mutate:  func(r *fakeRepo) { r.pins[7] = "" },
			req:     CommandRequest{Plate: "ABC1D23", Command: model.CommandTypeCut, ClientID: 7, PIN: "4321"},
			wantErr: ErrPinNotConfigured,
		},
		{
			name:    "wrong security code",
			req:     CommandRequest{Plate: "ABC1D23", Command: model.CommandTypeCut, ClientID: 7, PIN: "0000"},
			wantErr: ErrPinMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, notifier, s := commandFixture()
			if tt.mutate != nil {
				tt.mutate(repo)
			}

			_, err := s.SubmitIgnitionCommand(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			// A denied command leaves no trace.
			if !repo.vehicles["ABC1D23"].Ignition {
				t.Error("ignition flag mutated by denied command")
			}
			if len(repo.commands) != 0 {
				t.Errorf("stored %d command log entries, want none", len(repo.commands))
			}
			if len(repo.events) != 0 {
				t.Errorf("stored %d events, want none", len(repo.events))
			}
			if len(notifier.sent) != 0 {
				t.Errorf("notified %d events, want none", len(notifier.sent))
			}
		})
	}
}
