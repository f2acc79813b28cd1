package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yegors/aeroai/internal/metrics"
	"github.com/yegors/aeroai/internal/turbulence"
	"github.com/yegors/aeroai/internal/voice"
	"github.com/yegors/aeroai/pkg/logger"
)

// RootMessage is returned by GET /
const RootMessage = "AeroAI Aviation Safety API is running"

// maxRequestBodySize is the maximum accepted request body (1 MB)
const maxRequestBodySize = 1 << 20

// Handler contains the API handlers
type Handler struct {
	estimator *turbulence.Estimator
	relay     voice.Relay
	validator *requestValidator
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(estimator *turbulence.Estimator, relay voice.Relay, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		estimator: estimator,
		relay:     relay,
		validator: newRequestValidator(),
		metrics:   m,
		logger:    log.Named("api-handler"),
	}
}

// FlightDataRequest is the body of POST /predict_turbulence. Pointers
// distinguish a missing field from an explicit zero.
type FlightDataRequest struct {
	Altitude    *float64 `json:"altitude" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" validate:"required"`
	WindSpeed   *float64 `json:"wind_speed" validate:"required"`
	Pressure    *float64 `json:"pressure" validate:"required"`
	Humidity    *float64 `json:"humidity" validate:"required"`
	Temperature *float64 `json:"temperature" validate:"required"`
}

// Sample converts a validated request into a flight sample
func (r FlightDataRequest) Sample() turbulence.FlightSample {
	return turbulence.FlightSample{
		Altitude:    *r.Altitude,
		Latitude:    *r.Latitude,
		Longitude:   *r.Longitude,
		WindSpeed:   *r.WindSpeed,
		Pressure:    *r.Pressure,
		Humidity:    *r.Humidity,
		Temperature: *r.Temperature,
	}
}

// VoiceRequest is the body of POST /voice_assistant
type VoiceRequest struct {
	Text          *string        `json:"text" validate:"required"`
	FlightContext map[string]any `json:"flight_context"`
}

// ErrorResponse is the body of every client error
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// GetRoot reports that the API is up
func (h *Handler) GetRoot(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"voice_mode": string(h.relay.Mode()),
	})
}

// PredictTurbulence estimates turbulence for the submitted flight parameters
func (h *Handler) PredictTurbulence(w http.ResponseWriter, r *http.Request) {
	var req FlightDataRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.Debug("Rejected turbulence request", logger.Error(err))
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
		return
	}

	sample := req.Sample()
	assessment := h.estimator.Estimate(sample)

	h.metrics.Estimates.WithLabelValues(string(assessment.RiskLevel)).Inc()
	h.metrics.EstimateProbability.Observe(assessment.Probability)

	h.logger.Debug("Turbulence estimate served",
		logger.Float("wind_speed", sample.WindSpeed),
		logger.Float("pressure", sample.Pressure),
		logger.Float("probability", assessment.Probability),
		logger.String("risk_level", string(assessment.RiskLevel)))

	WriteJSON(w, http.StatusOK, assessment)
}

// VoiceAssistant relays a pilot query to the voice assistant. Collaborator
// failures are part of the reply text, so this always answers 200 once the
// body is valid.
func (h *Handler) VoiceAssistant(w http.ResponseWriter, r *http.Request) {
	var req VoiceRequest
	if err := h.decode(w, r, &req); err != nil {
		h.logger.Debug("Rejected voice request", logger.Error(err))
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
		return
	}

	start := time.Now()
	reply := h.relay.Reply(r.Context(), voice.Query{
		Text:          *req.Text,
		FlightContext: req.FlightContext,
	})

	h.metrics.VoiceReplies.WithLabelValues(string(reply.Outcome)).Inc()
	h.metrics.VoiceDuration.Observe(time.Since(start).Seconds())

	WriteJSON(w, http.StatusOK, reply)
}

// NotFound mirrors the JSON shape of other client errors
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
}

// MethodNotAllowed mirrors the JSON shape of other client errors
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: "Method Not Allowed"})
}

// decode reads a single JSON object from the body into dst and validates it
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is required")
		case errors.As(err, &typeErr) && typeErr.Field == "":
			return errors.New("request body must be a JSON object")
		case errors.As(err, &typeErr):
			return fmt.Errorf("field '%s' must be of type %s", typeErr.Field, typeErr.Type)
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("malformed JSON at offset %d", syntaxErr.Offset)
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("invalid request body: %w", err)
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}

	return h.validator.Validate(dst)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
