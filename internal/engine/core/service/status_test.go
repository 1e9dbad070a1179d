package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core"
	"github.com/veltrack-io/veltrack/internal/engine/core/model"
)

func TestQueryOnlineStatus(t *testing.T) {
	now := sampleTime

	tests := []struct {
		name    string
		live    *core.LiveState
		liveErr error
		lastPos *model.Position
		contact time.Time
		want    OnlineStatus
	}{
		{
			name: "fresh live state answers online",
			live: &core.LiveState{Plate: "ABC1D23", Timestamp: now.Add(-2 * time.Second)},
			want: StatusOnline,
		},
		{
			name:    "stale live state falls back to storage",
			live:    &core.LiveState{Plate: "ABC1D23", Timestamp: now.Add(-time.Minute)},
			lastPos: &model.Position{Plate: "ABC1D23", Timestamp: now.Add(-3 * time.Second)},
			want:    StatusOnline,
		},
		{
			name:    "recent stored position answers online",
			lastPos: &model.Position{Plate: "ABC1D23", Timestamp: now.Add(-8 * time.Second)},
			want:    StatusOnline,
		},
		{
			name:    "old position but recent contact answers online",
			lastPos: &model.Position{Plate: "ABC1D23", Timestamp: now.Add(-time.Hour)},
			contact: now.Add(-4 * time.Second),
			want:    StatusOnline,
		},
		{
			name:    "everything stale answers offline",
			lastPos: &model.Position{Plate: "ABC1D23", Timestamp: now.Add(-time.Hour)},
			contact: now.Add(-time.Hour),
			want:    StatusOffline,
		},
		{
			name: "no history at all answers offline",
			want: StatusOffline,
		},
		{
			name:    "live store failure falls back to storage",
			liveErr: errors.New("mirror down"),
			lastPos: &model.Position{Plate: "ABC1D23", Timestamp: now.Add(-time.Second)},
			want:    StatusOnline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.addVehicle(&model.Vehicle{ID: 1, Plate: "ABC1D23", LastContact: tt.contact})
			if tt.lastPos != nil {
				repo.positions = append(repo.positions, *tt.lastPos)
			}

			live := newFakeLive()
			live.err = tt.liveErr
			if tt.live != nil {
				live.states[tt.live.Plate] = tt.live
			}

			s := newTestService(repo, live, nil, nil)
			s.now = func() time.Time { return now }

			got, err := s.QueryOnlineStatus(context.Background(), "ABC1D23")
			if err != nil {
				t.Fatalf("QueryOnlineStatus: %v", err)
			}
			if got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQueryOnlineStatusUnknownVehicle(t *testing.T) {
	s := newTestService(newFakeRepo(), nil, nil, nil)

	_, err := s.QueryOnlineStatus(context.Background(), "ZZZ0Z00")
	if !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("err = %v, want ErrVehicleNotFound", err)
	}
}

func TestQueryOnlineStatusBoundary(t *testing.T) {
	now := sampleTime
	repo := newFakeRepo()
	repo.addVehicle(&model.Vehicle{ID: 1, Plate: "ABC1D23"})
	repo.positions = append(repo.positions, model.Position{
		Plate:     "ABC1D23",
		Timestamp: now.Add(-onlineWindow),
	})

	s := newTestService(repo, nil, nil, nil)
	s.now = func() time.Time { return now }

	// Exactly at the window edge still counts as online.
	got, err := s.QueryOnlineStatus(context.Background(), "ABC1D23")
	if err != nil {
		t.Fatalf("QueryOnlineStatus: %v", err)
	}
	if got != StatusOnline {
		t.Errorf("status = %s, want Online at the window boundary", got)
	}
}
