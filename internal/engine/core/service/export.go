package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/veltrack-io/veltrack/internal/pkg/util"
)

// exportURLExpiry bounds how long a generated download link stays valid.
const exportURLExpiry = time.Hour

// ExportHistory renders the plate's raw positions in [from, to] as CSV,
// uploads the file to the archive store and returns a temporary download
// link.
func (s *Service) ExportHistory(ctx context.Context, plate string, from, to time.Time) (string, error) {
	if s.archive == nil {
		return "", errors.New("archive store is not configured")
	}
	if to.Before(from) {
		return "", fmt.Errorf("invalid export range: %s is before %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}

	if _, err := s.repo.Vehicle().GetByPlate(ctx, plate); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return "", ErrVehicleNotFound
		}
		return "", fmt.Errorf("failed to load vehicle: %w", err)
	}

	positions, err := s.repo.Position().Range(ctx, plate, from, to)
	if err != nil {
		return "", fmt.Errorf("failed to load positions: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"plate", "latitude", "longitude", "timestamp"})
	for i := range positions {
		p := &positions[i]
		_ = w.Write([]string{
			p.Plate,
			strconv.FormatFloat(p.Latitude, 'f', -1, 64),
			strconv.FormatFloat(p.Longitude, 'f', -1, 64),
			p.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to render csv: %w", err)
	}

	key := fmt.Sprintf("%s/%s_%s.csv", plate,
		from.UTC().Format("20060102T150405Z"), to.UTC().Format("20060102T150405Z"))
	if err := s.archive.Put(ctx, key, "text/csv", buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := s.archive.PresignedURL(ctx, key, exportURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign export url: %w", err)
	}

	s.logger.Info("Exported position history", "plate", plate, "rows", len(positions), "object", key)
	return url, nil
}
