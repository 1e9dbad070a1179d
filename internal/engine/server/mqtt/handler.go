package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/veltrack-io/veltrack/internal/engine/core/service"
	"github.com/veltrack-io/veltrack/pkg/log"
)

// trackerSample is the JSON payload published by the tracker firmware.
type trackerSample struct {
	Plate     string  `json:"plate"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
	LED       string  `json:"led"`
}

// localZone interprets zone-less tracker timestamps. Deployed firmware
// reports wall-clock time in the fleet's home zone.
var localZone = func() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.UTC
	}
	return loc
}()

func (s *Server) handlePosition(ctx context.Context, topic string, payload []byte) {
	sample, err := decodeSample(topic, payload)
	if err != nil {
		log.Error(err, "Dropping malformed tracker payload", "topic", topic)
		return
	}

	res, err := s.svc.IngestTelemetry(ctx, sample)
	if err != nil {
		log.Error(err, "Failed to ingest sample", "plate", sample.Plate)
		return
	}
	if len(res.Events) > 0 {
		log.Info("Ingested sample", "plate", sample.Plate, "events", len(res.Events))
	}
}

// decodeSample turns one tracker publication into a telemetry sample. The
// plate comes from the topic; a plate inside the payload must agree with it.
func decodeSample(topic string, payload []byte) (*service.TelemetrySample, error) {
	plate := topic[strings.LastIndex(topic, "/")+1:]
	if plate == "" {
		return nil, fmt.Errorf("no plate segment in topic %q", topic)
	}

	var raw trackerSample
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if raw.Plate != "" && raw.Plate != plate {
		return nil, fmt.Errorf("payload plate %q does not match topic plate %q", raw.Plate, plate)
	}

	ts := time.Now()
	if raw.Timestamp != "" {
		parsed, err := parseTrackerTime(raw.Timestamp)
		if err != nil {
			return nil, err
		}
		ts = parsed
	}

	return &service.TelemetrySample{
		Plate:     plate,
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Timestamp: ts,
		Signal:    service.SignalFromLED(raw.LED),
	}, nil
}

// parseTrackerTime accepts RFC 3339 and the zone-less layouts older firmware
// emits. Zone-less times are taken as the fleet's home zone.
func parseTrackerTime(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.ParseInLocation(layout, value, localZone); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}
