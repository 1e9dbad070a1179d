package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/veltrack-io/veltrack/internal/engine/core/model"
	"github.com/veltrack-io/veltrack/internal/engine/core/service"
	"github.com/veltrack-io/veltrack/pkg/log"
)

type handler struct {
	svc    *service.Service
	logger log.Logger
}

type positionRequest struct {
	Plate     string  `json:"plate"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Timestamp is RFC 3339. Empty means "now".
	Timestamp string `json:"timestamp"`
	// LED is the tracker status color: "green" (engine on) or "red" (off).
	LED string `json:"led"`
}

type positionResponse struct {
	Events    []eventResponse `json:"events"`
	Ignition  bool            `json:"ignition"`
	Duplicate bool            `json:"duplicate,omitempty"`
}

type eventResponse struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func (h *handler) ingestPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Plate == "" {
		writeError(w, http.StatusBadRequest, "plate is required")
		return
	}

	ts := time.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "timestamp must be RFC 3339")
			return
		}
		ts = parsed
	}

	res, err := h.svc.IngestTelemetry(r.Context(), &service.TelemetrySample{
		Plate:     req.Plate,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Timestamp: ts,
		Signal:    service.SignalFromLED(req.LED),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	out := positionResponse{
		Events:    make([]eventResponse, 0, len(res.Events)),
		Ignition:  res.Ignition,
		Duplicate: res.Duplicate,
	}
	for _, e := range res.Events {
		out.Events = append(out.Events, eventResponse{
			Type:        string(e.Type),
			Description: e.Description,
			Timestamp:   e.Timestamp,
		})
	}
	writeJSON(w, http.StatusAccepted, out)
}

type commandRequest struct {
	Command  string `json:"command"`
	ClientID int64  `json:"client_id"`
	PIN      string `json:"pin"`
	Origin   string `json:"origin"`
}

type commandResponse struct {
	Status   string `json:"status"`
	Ignition bool   `json:"ignition"`
}

func (h *handler) submitCommand(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.SubmitIgnitionCommand(r.Context(), &service.CommandRequest{
		Plate:    plate,
		Command:  model.CommandType(req.Command),
		ClientID: req.ClientID,
		PIN:      req.PIN,
		Origin:   model.CommandOrigin(req.Origin),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{
		Status:   string(res.Status),
		Ignition: res.Ignition,
	})
}

type statusResponse struct {
	Plate  string `json:"plate"`
	Status string `json:"status"`
}

func (h *handler) vehicleStatus(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]

	status, err := h.svc.QueryOnlineStatus(r.Context(), plate)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Plate: plate, Status: string(status)})
}

type exportRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type exportResponse struct {
	URL string `json:"url"`
}

func (h *handler) exportHistory(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := time.Parse(time.RFC3339, req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be RFC 3339")
		return
	}
	to, err := time.Parse(time.RFC3339, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be RFC 3339")
		return
	}

	url, err := h.svc.ExportHistory(r.Context(), plate, from, to)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{URL: url})
}

// writeServiceError maps service errors onto HTTP status codes.
func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrVehicleNotFound), errors.Is(err, service.ErrClientNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPinMismatch), errors.Is(err, service.ErrPinNotConfigured):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCommand), errors.Is(err, service.ErrInvalidCoordinates):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(err, "Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
