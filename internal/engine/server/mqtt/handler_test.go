package mqtt

import (
	"strings"
	"testing"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core/service"
)

func TestDecodeSample(t *testing.T) {
	topic := "veltrack/v1/position/ABC1D23"

	tests := []struct {
		name    string
		payload string
		wantErr string

		wantSignal service.IgnitionSignal
	}{
		{
			name:       "full payload",
			payload:    `{"latitude":-23.5505,"longitude":-46.6333,"timestamp":"2026-08-30T12:00:00Z","led":"green"}`,
			wantSignal: service.SignalOn,
		},
		{
			name:       "red led",
			payload:    `{"latitude":-23.5505,"longitude":-46.6333,"timestamp":"2026-08-30T12:00:00Z","led":"red"}`,
			wantSignal: service.SignalOff,
		},
		{
			name:       "unknown led color carries no signal",
			payload:    `{"latitude":-23.5505,"longitude":-46.6333,"timestamp":"2026-08-30T12:00:00Z","led":"blue"}`,
			wantSignal: service.SignalNone,
		},
		{
			name:    "matching payload plate accepted",
			payload: `{"plate":"ABC1D23","latitude":-23.5505,"longitude":-46.6333,"timestamp":"2026-08-30T12:00:00Z"}`,
		},
		{
			name:    "mismatched payload plate rejected",
			payload: `{"plate":"XYZ9K88","latitude":-23.5505,"longitude":-46.6333}`,
			wantErr: "does not match",
		},
		{
			name:    "garbage rejected",
			payload: `{{{`,
			wantErr: "invalid payload",
		},
		{
			name:    "unparseable timestamp rejected",
			payload: `{"latitude":-23.5505,"longitude":-46.6333,"timestamp":"30/08/2026"}`,
			wantErr: "unparseable timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := decodeSample(topic, []byte(tt.payload))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeSample: %v", err)
			}
			if sample.Plate != "ABC1D23" {
				t.Errorf("plate = %q", sample.Plate)
			}
			if sample.Signal != tt.wantSignal {
				t.Errorf("signal = %q, want %q", sample.Signal, tt.wantSignal)
			}
		})
	}
}

func TestParseTrackerTime(t *testing.T) {
	got, err := parseTrackerTime("2026-08-30T12:00:00Z")
	if err != nil {
		t.Fatalf("parseTrackerTime: %v", err)
	}
	if !got.Equal(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}

	// Zone-less firmware timestamps are wall-clock time in the fleet's home
	// zone, three hours behind UTC.
	got, err = parseTrackerTime("2026-08-30 09:00:00")
	if err != nil {
		t.Fatalf("parseTrackerTime: %v", err)
	}
	if !got.Equal(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("naive timestamp parsed as %v, want 12:00 UTC", got.UTC())
	}
}
