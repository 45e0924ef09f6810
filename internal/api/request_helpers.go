package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-tracker/internal/domain"
)

// getPathID extracts an integer task id from the URL path parameters.
// Any integer is accepted; ids that were never assigned are left for the
// store to report as not found.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "required field", domain.ErrInvalidID)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(paramName, "must be an integer", domain.ErrInvalidID)
	}

	return id, nil
}

// handlePathID extracts the task id and writes a 422 response if it is not
// an integer. The boolean reports whether the handler may continue.
func handlePathID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	id, err := getPathID(r, "id")
	if err != nil {
		log.Debug("invalid task id", slog.String("value", chi.URLParam(r, "id")))
		HandleAPIError(w, r, err)
		return 0, false
	}
	return id, true
}
