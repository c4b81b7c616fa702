package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/graph"
	"tour-planner-service/internal/ports"
	"tour-planner-service/internal/services"
	"tour-planner-service/internal/tsp"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// allowMethod answers 405 unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeJSON reads exactly one JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writeServiceError maps domain and service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTimeBudget),
		errors.Is(err, tsp.ErrUnknownAlgorithm):
		status = http.StatusBadRequest
	case errors.Is(err, graph.ErrNoRoute),
		errors.Is(err, graph.ErrUnknownPoint),
		errors.Is(err, tsp.ErrInfeasibleRequestSet),
		errors.Is(err, tsp.ErrNoSolution),
		errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, status, "internal server error")
		return
	}
	writeError(w, r, status, err.Error())
}
