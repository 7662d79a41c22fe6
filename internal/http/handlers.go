package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/liftctl/liftctl/internal/car"
	"github.com/liftctl/liftctl/internal/constants"
	"github.com/liftctl/liftctl/internal/dispatcher"
	"github.com/liftctl/liftctl/internal/domain"
	"github.com/liftctl/liftctl/internal/infra/config"
	"github.com/liftctl/liftctl/internal/infra/logging"
)

// V1Handlers contains all v1 API handlers, generalized from the teacher's
// single-elevator Manager-backed handlers to the multi-car dispatcher.
type V1Handlers struct {
	dispatcher *dispatcher.Dispatcher
	cfg        *config.Config
	logger     *slog.Logger
}

// NewV1Handlers creates a new V1Handlers instance.
func NewV1Handlers(d *dispatcher.Dispatcher, cfg *config.Config, logger *slog.Logger) *V1Handlers {
	return &V1Handlers{
		dispatcher: d,
		cfg:        cfg,
		logger:     logger,
	}
}

// HallCallRequestBody is the submit_hall_call request body.
type HallCallRequestBody struct {
	Floor     int    `json:"floor"`
	Direction string `json:"direction"`
}

// HallCallResponse is the submit_hall_call response.
type HallCallResponse struct {
	AssignedCarID int `json:"assigned_car_id"`
}

// CarCallRequestBody is the submit_car_call request body.
type CarCallRequestBody struct {
	Floor int `json:"floor"`
}

// BuildingReconfigureRequestBody is the reconfigure_building request body.
type BuildingReconfigureRequestBody struct {
	TotalFloors int `json:"total_floors"`
	CarCount    int `json:"car_count"`
}

// StatusResponse is the get_status response.
type StatusResponse struct {
	TotalFloors     int            `json:"total_floors"`
	CarCount        int            `json:"car_count"`
	EfficiencyScore float64        `json:"efficiency_score"`
	Cars            []car.Snapshot `json:"cars"`
}

// APIInfoResponse represents API information.
type APIInfoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// parseDirection accepts both the wire format ("U"/"D") named in §6 and the
// domain's lowercase "up"/"down" for leniency with existing simple clients.
func parseDirection(raw string) (domain.Direction, bool) {
	switch strings.ToUpper(raw) {
	case "U", "UP":
		return domain.DirectionUp, true
	case "D", "DOWN":
		return domain.DirectionDown, true
	default:
		return domain.DirectionIdle, false
	}
}

// HallCallHandler handles hall call submission (POST /v1/hall-calls).
func (h *V1Handlers) HallCallHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only POST method is supported")
		return
	}

	var body HallCallRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to decode hall call request",
			slog.String("error", err.Error()), slog.String("request_id", requestID))
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON", "Request body contains invalid JSON")
		return
	}

	dir, ok := parseDirection(body.Direction)
	if !ok {
		rw.WriteError(http.StatusBadRequest, ErrorCodeValidation,
			"Validation Failed", "direction must be UP or DOWN")
		return
	}

	assigned, err := h.dispatcher.SubmitHallCall(r.Context(), body.Floor, dir)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "hall call submission failed",
			slog.Int("floor", body.Floor), slog.String("direction", string(dir)),
			slog.String("error", err.Error()), slog.String("request_id", requestID))
		rw.WriteDomainError(err)
		return
	}

	h.logger.InfoContext(r.Context(), "hall call submitted",
		slog.Int("floor", body.Floor), slog.String("direction", string(dir)),
		slog.String("car", assigned.Name()), slog.String("request_id", requestID),
		slog.String("component", constants.ComponentHTTPHandler))

	rw.WriteJSON(http.StatusOK, HallCallResponse{AssignedCarID: assigned.ID})
}

// CarCallHandler handles car call submission (POST /v1/cars/{car_id}/calls).
func (h *V1Handlers) CarCallHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only POST method is supported")
		return
	}

	carID, ok := carIDFromPath(r.URL.Path)
	if !ok {
		rw.WriteError(http.StatusBadRequest, ErrorCodeValidation,
			"Validation Failed", "car id missing or malformed in path")
		return
	}

	var body CarCallRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to decode car call request",
			slog.String("error", err.Error()), slog.String("request_id", requestID))
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON", "Request body contains invalid JSON")
		return
	}

	if err := h.dispatcher.SubmitCarCallByID(carID, body.Floor); err != nil {
		h.logger.ErrorContext(r.Context(), "car call submission failed",
			slog.Int("car_id", carID), slog.Int("floor", body.Floor),
			slog.String("error", err.Error()), slog.String("request_id", requestID))
		rw.WriteDomainError(err)
		return
	}

	h.logger.InfoContext(r.Context(), "car call submitted",
		slog.Int("car_id", carID), slog.Int("floor", body.Floor),
		slog.String("request_id", requestID), slog.String("component", constants.ComponentHTTPHandler))

	rw.WriteJSON(http.StatusOK, map[string]interface{}{})
}

// carIDFromPath extracts the {car_id} segment from "/v1/cars/{car_id}/calls".
func carIDFromPath(path string) (int, bool) {
	const prefix = "/v1/cars/"
	const suffix = "/calls"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return 0, false
	}
	idStr := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, false
	}
	return id, true
}

// StatusHandler handles get_status (GET /v1/status).
func (h *V1Handlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodGet {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only GET method is supported")
		return
	}

	cars := h.dispatcher.Cars()
	snapshots := make([]car.Snapshot, 0, len(cars))
	for _, c := range cars {
		snapshots = append(snapshots, c.Snapshot())
	}

	response := StatusResponse{
		TotalFloors:     h.dispatcher.TotalFloors(),
		CarCount:        h.dispatcher.CarCount(),
		EfficiencyScore: h.dispatcher.EfficiencyScore(),
		Cars:            snapshots,
	}

	rw.WriteJSON(http.StatusOK, response)
}

// BuildingReconfigureHandler handles reconfigure_building (POST /v1/building/reconfigure).
func (h *V1Handlers) BuildingReconfigureHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodPost {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only POST method is supported")
		return
	}

	var body BuildingReconfigureRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		rw.WriteError(http.StatusBadRequest, ErrorCodeInvalidJSON,
			"Invalid JSON", "Request body contains invalid JSON")
		return
	}

	if err := h.dispatcher.Reconfigure(body.TotalFloors, body.CarCount); err != nil {
		h.logger.ErrorContext(r.Context(), "building reconfigure failed",
			slog.Int("total_floors", body.TotalFloors), slog.Int("car_count", body.CarCount),
			slog.String("error", err.Error()), slog.String("request_id", requestID))
		rw.WriteDomainError(err)
		return
	}

	h.logger.InfoContext(r.Context(), "building reconfigured",
		slog.Int("total_floors", body.TotalFloors), slog.Int("car_count", body.CarCount),
		slog.String("request_id", requestID), slog.String("component", constants.ComponentHTTPHandler))

	rw.WriteJSON(http.StatusOK, map[string]interface{}{})
}

// APIInfoHandler provides information about available API endpoints (GET /v1).
func (h *V1Handlers) APIInfoHandler(w http.ResponseWriter, r *http.Request) {
	requestID := logging.GetRequestID(r.Context())
	rw := NewResponseWriter(w, h.logger, requestID)

	if r.Method != http.MethodGet {
		rw.WriteError(http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed,
			"Method not allowed", "Only GET method is supported")
		return
	}

	response := APIInfoResponse{
		Name:        "Elevator Dispatch API",
		Version:     "v1",
		Description: "RESTful API for a multi-car elevator dispatch system",
		Endpoints: map[string]string{
			"POST /v1/hall-calls":             "Submit a hall call for a floor and direction",
			"POST /v1/cars/{car_id}/calls":    "Submit a car call (destination) to a specific car",
			"GET /v1/status":                  "Get building and fleet status",
			"POST /v1/building/reconfigure":   "Rebuild the fleet with a new floor/car count",
			"GET /v1/ws":                      "Real-time diff-gated car state stream",
			"GET /v1":                         "Get API information",
			"GET /healthz":                    "Liveness probe",
			"GET /readyz":                     "Readiness probe",
			"GET /health/detailed":            "Detailed cached health status",
			"GET /metrics":                    "Prometheus metrics endpoint",
		},
	}

	rw.WriteJSON(http.StatusOK, response)
}
