package api

import (
	"encoding/json"
	"net/http"

	"github.com/gridwatch/gridwatch-core/internal/liveness"
)

// pingRequest is the heartbeat body sent by edge reporter devices.
// Field names match the device firmware's wire format.
type pingRequest struct {
	MACAddress string `json:"macAddress"`
	FWVersion  string `json:"fwVersion"`
	FSVersion  string `json:"fsVersion"`
	Uptime     int64  `json:"uptime"`
}

// handlePing ingests one heartbeat from an edge reporter device.
//
// The reporting user comes from the token subject, never the body. Any
// failure (unknown reporter, storage error) collapses to a generic 500
// so devices cannot distinguish rejection from infrastructure faults.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req pingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.MACAddress == "" {
		writeBadRequest(w, "macAddress is required")
		return
	}

	ping := liveness.Ping{
		MACAddress: req.MACAddress,
		FWVersion:  req.FWVersion,
		FSVersion:  req.FSVersion,
		Uptime:     req.Uptime,
	}

	if err := s.engine.ProcessPing(r.Context(), ping, claims.Subject); err != nil {
		s.logger.Error("heartbeat processing failed",
			"mac", req.MACAddress,
			"username", claims.Subject,
			"error", err,
		)
		writeInternalError(w, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListDevices returns the device list view: every device joined
// with its owner's current grid state.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	views, err := s.engine.ListDevices(r.Context())
	if err != nil {
		s.logger.Error("device list failed", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	if views == nil {
		views = []liveness.DeviceView{}
	}
	writeJSON(w, http.StatusOK, views)
}
