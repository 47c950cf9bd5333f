// File path: internal/api/catalog_handler.go
package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/metadata"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.metadata.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("list categories: %w", err))
		return
	}
	if categories == nil {
		categories = []metadata.CategoryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

type uploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploads == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("uploads not configured"))
		return
	}
	var req uploadRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.FileName) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("fileName required"))
		return
	}
	upload, err := s.uploads.PresignUpload(r.Context(), req.FileName, req.ContentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("presign upload: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.LogLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = value
	}
	entries := common.LogEntries(limit)
	component := strings.TrimSpace(r.URL.Query().Get("component"))
	if component != "" {
		filtered := entries[:0:0]
		for _, entry := range entries {
			if entry.Component == component {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	if entries == nil {
		entries = []common.LogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
