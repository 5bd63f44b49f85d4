package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veil-sh/veil/internal/detect"
)

// maxBodyBytes caps request bodies at 10 MB.
const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Entities []detect.Entity `json:"entities"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}

	result := s.processor.ProcessText(r.Context(), req.Text)

	log.Debug().
		Str("document_id", result.DocumentID).
		Int("entities", result.EntitiesFound).
		Msg("detect request")

	writeJSON(w, http.StatusOK, detectResponse{Entities: result.Entities})
}

type redactRequest struct {
	Text   string `json:"text"`
	Marker string `json:"marker,omitempty"`
}

type redactStats struct {
	DocumentID     string `json:"document_id"`
	EntitiesFound  int    `json:"entities_found"`
	CharsRedacted  int    `json:"chars_redacted"`
	OriginalLength int    `json:"original_length"`
	RedactedLength int    `json:"redacted_length"`
	ElapsedNS      int64  `json:"elapsed_ns"`
}

type redactResponse struct {
	Redacted string          `json:"redacted"`
	Entities []detect.Entity `json:"entities"`
	Stats    redactStats     `json:"stats"`
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if len(req.Marker) > 0 && len([]rune(req.Marker)) != 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "marker must be a single character")
		return
	}

	result := s.processor.ProcessText(r.Context(), req.Text)
	redacted := result.Redacted
	if req.Marker != "" {
		redacted = detect.Redact(req.Text, result.Entities, []rune(req.Marker)[0])
	}

	log.Debug().
		Str("document_id", result.DocumentID).
		Int("entities", result.EntitiesFound).
		Int("chars_redacted", result.CharsRedacted).
		Msg("redact request")

	writeJSON(w, http.StatusOK, redactResponse{
		Redacted: redacted,
		Entities: result.Entities,
		Stats: redactStats{
			DocumentID:     result.DocumentID,
			EntitiesFound:  result.EntitiesFound,
			CharsRedacted:  result.CharsRedacted,
			OriginalLength: result.OriginalLength,
			RedactedLength: len(redacted),
			ElapsedNS:      result.Elapsed.Nanoseconds(),
		},
	})
}
