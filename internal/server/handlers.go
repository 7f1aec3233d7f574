package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/voice"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	respondJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	var req voice.Request
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.voice.Handle(r.Context(), &req)
	switch {
	case errors.Is(err, voice.ErrBadRequest):
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case err != nil:
		s.log.WithRequestID(req.Request.RequestID).WithError(err).Error("voice request failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL", "voice request failed")
	default:
		respondJSON(w, http.StatusOK, resp)
	}
}

// InterpretRequest is the body of POST /v1/interpret.
type InterpretRequest struct {
	Text          string                    `json:"text"`
	Now           *time.Time                `json:"now,omitempty"`
	StatusSlot    string                    `json:"status_slot,omitempty"`
	CurrentStatus interpret.Status          `json:"current_status,omitempty"`
	Candidates    []interpret.CandidateTask `json:"candidates,omitempty"`
}

// InterpretResponse reports every engine reading of one utterance.
type InterpretResponse struct {
	Attributes     interpret.TaskAttributes `json:"attributes"`
	Query          interpret.QueryFilter    `json:"query"`
	CleanedName    string                   `json:"cleaned_name"`
	Match          interpret.MatchResult    `json:"match"`
	TargetStatus   interpret.Status         `json:"target_status"`
	StatusEvidence interpret.StatusEvidence `json:"status_evidence"`
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "MISSING_TEXT", "text is required")
		return
	}
	now := s.now().In(s.cfg.Location)
	if req.Now != nil {
		now = *req.Now
	}
	current := req.CurrentStatus
	if current == "" {
		current = interpret.StatusToDo
	}

	cleaned := interpret.CleanTaskName(req.Text)
	target, evidence := interpret.ExplainTargetStatus(req.Text, req.StatusSlot, current)
	respondJSON(w, http.StatusOK, InterpretResponse{
		Attributes:     s.cfg.Parser.ParseTask(req.Text, now),
		Query:          s.cfg.Parser.ParseQuery(req.Text, now),
		CleanedName:    cleaned,
		Match:          interpret.Resolve(cleaned, req.Candidates),
		TargetStatus:   target,
		StatusEvidence: evidence,
	})
}
