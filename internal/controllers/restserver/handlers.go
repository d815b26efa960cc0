package restserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/pkg/responseformat"
)

// maxSpan caps how far back the /span endpoint will query.
const maxSpan = 365 * 24 * time.Hour

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// validateStationExists checks if a station name exists in the configuration
func (h *Handlers) validateStationExists(stationName string) bool {
	for _, device := range h.controller.Devices {
		if device.Name == stationName {
			return true
		}
	}
	return false
}

// queryStation resolves the station a request refers to: the explicit
// station parameter if given, the configured pull-from-device otherwise.
func (h *Handlers) queryStation(req *http.Request) (string, error) {
	stationName := req.URL.Query().Get("station")
	if stationName == "" {
		return h.controller.restConfig.PullFromDevice, nil
	}
	if !h.validateStationExists(stationName) {
		return "", fmt.Errorf("station not found")
	}
	return stationName, nil
}

// GetLatest handles requests for the most recent reading
func (h *Handlers) GetLatest(w http.ResponseWriter, req *http.Request) {
	stationName, err := h.queryStation(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if r, ok := h.controller.Cache.Latest(stationName); ok {
		h.formatter.WriteResponse(w, req, r, map[string]string{"Cache-Control": "max-age=10"})
		return
	}

	// Nothing cached yet; fall back to the database if we have one.
	if h.controller.DBEnabled {
		r, err := h.controller.DB.GetLatestReading(stationName)
		if err != nil {
			log.Errorf("error fetching latest reading: %v", err)
			http.Error(w, "error fetching latest reading", http.StatusInternalServerError)
			return
		}
		if r.Timestamp.IsZero() {
			http.Error(w, "no recent data available for this station", http.StatusNotFound)
			return
		}
		h.formatter.WriteResponse(w, req, r, map[string]string{"Cache-Control": "max-age=10"})
		return
	}

	http.Error(w, "no data available yet", http.StatusNotFound)
}

// GetSafety handles requests for the current observatory safety verdict
func (h *Handlers) GetSafety(w http.ResponseWriter, req *http.Request) {
	v := h.controller.Cache.Verdict()
	if v.Evaluated.IsZero() {
		http.Error(w, "no readings evaluated yet", http.StatusServiceUnavailable)
		return
	}
	h.formatter.WriteResponse(w, req, v, nil)
}

// GetSpan handles requests for bucketed readings over a time span
func (h *Handlers) GetSpan(w http.ResponseWriter, req *http.Request) {
	if !h.controller.DBEnabled {
		http.Error(w, "database not enabled", http.StatusInternalServerError)
		return
	}

	stationName, err := h.queryStation(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if stationName == "" {
		http.Error(w, "station parameter is required", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(req)
	span, err := time.ParseDuration(vars["span"])
	if err != nil {
		log.Errorf("invalid request: unable to parse duration: %v", vars["span"])
		http.Error(w, "error: invalid span duration", http.StatusBadRequest)
		return
	}
	if span <= 0 || span > maxSpan {
		http.Error(w, "error: span out of range", http.StatusBadRequest)
		return
	}

	readings, err := h.controller.DB.GetBucketReadings(stationName, span)
	if err != nil {
		log.Errorf("error fetching span readings: %v", err)
		http.Error(w, "error fetching span readings", http.StatusInternalServerError)
		return
	}

	h.formatter.WriteResponse(w, req, readings, map[string]string{"Cache-Control": "max-age=60"})
}
