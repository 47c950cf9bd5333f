// File path: internal/api/complaints_handler.go
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/complaint"
	"github.com/animalert/animalert/internal/metadata"
)

type submitResponse struct {
	Success    bool   `json:"success"`
	PublicID   string `json:"publicId,omitempty"`
	InternalID string `json:"internalId,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) handleSubmitComplaint(w http.ResponseWriter, r *http.Request) {
	var sub complaint.Submission
	if err := s.decodeJSON(w, r, &sub); err != nil {
		common.Logger().Warn("request failed", "status", http.StatusBadRequest, "error", err)
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: err.Error()})
		return
	}
	res, err := s.complaints.GenerateAndSend(r.Context(), sub)
	if err != nil {
		status := statusFor(complaint.CodeOf(err))
		if status >= http.StatusInternalServerError {
			common.Logger().Error("request failed", "status", status, "error", err)
		} else {
			common.Logger().Warn("request failed", "status", status, "error", err)
		}
		writeJSON(w, status, submitResponse{Error: complaint.MessageOf(err)})
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{
		Success:    true,
		PublicID:   res.PublicID,
		InternalID: res.InternalID,
	})
}

func (s *Server) handleComplaintStatus(w http.ResponseWriter, r *http.Request) {
	publicID := strings.TrimSpace(chi.URLParam(r, "publicId"))
	if publicID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("publicId required"))
		return
	}
	status, err := s.metadata.ComplaintStatus(r.Context(), publicID)
	if errors.Is(err, metadata.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Errorf("complaint %s not found", publicID))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("complaint status: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, status)
}
