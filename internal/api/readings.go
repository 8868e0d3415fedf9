package api

import (
	"net/http"
	"strconv"
	"time"
)

// readingView is one grid state reading in API responses.
type readingView struct {
	ID         int64     `json:"id"`
	GridState  bool      `json:"gridState"`
	RecordedAt time.Time `json:"recordedAt"`
}

// handleListReadings returns recent grid readings for the calling user,
// newest first. An optional ?limit= query caps the result size.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	user, err := s.users.GetByUsername(r.Context(), claims.Subject)
	if err != nil {
		writeUnauthorized(w, "unknown account")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
	}

	readings, err := s.readings.History(r.Context(), user.ID, limit)
	if err != nil {
		s.logger.Error("readings query failed", "user_id", user.ID, "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	views := make([]readingView, 0, len(readings))
	for _, rd := range readings {
		views = append(views, readingView{
			ID:         rd.ID,
			GridState:  rd.GridState,
			RecordedAt: rd.RecordedAt,
		})
	}

	writeJSON(w, http.StatusOK, views)
}
