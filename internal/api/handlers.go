package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MedCausal/DiagPipe/internal/models"
	"github.com/MedCausal/DiagPipe/internal/report"
	"github.com/MedCausal/DiagPipe/internal/session"
)

// sessionsHandler handles POST /sessions (start a case) and GET /sessions
// (list live session identifiers).
func (s *Server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	switch r.Method {
	case http.MethodPost:
		s.startCaseHandler(w, r)
	case http.MethodGet:
		writeJSONResponse(w, http.StatusOK, models.Success(s.sessions.IDs()))
	default:
		w.Header().Set("Allow", "GET, POST")
		slog.Warn("Server.sessionsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// startCaseHandler creates a session and feeds it the initial case text.
func (s *Server) startCaseHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.startCaseHandler: processing start case request")

	var req models.StartCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.startCaseHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.startCaseHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	sess := s.sessions.Create()
	result, err := sess.Submit(r.Context(), req.CaseText)
	if err != nil {
		slog.Error("Server.startCaseHandler: initial submit failed", "error", err, "sessionID", sess.ID())
		// The empty session stays registered; the caller may retry Submit.
		writeJSONResponse(w, statusForError(err), models.Error("Failed to start case: "+err.Error()))
		return
	}

	slog.Info("Server.startCaseHandler: case started", "sessionID", sess.ID(), "stage", result.Stage)
	writeJSONResponse(w, http.StatusCreated, models.Success(map[string]interface{}{
		"status": sess.Status(),
		"result": result,
	}))
}

// sessionDispatchHandler routes /sessions/{id} and /sessions/{id}/{action}.
func (s *Server) sessionDispatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, action, _ := strings.Cut(path, "/")
	if id == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Session ID required"))
		return
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		slog.Debug("Server.sessionDispatchHandler: session not found", "sessionID", id)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			writeJSONResponse(w, http.StatusOK, models.Success(sess.Status()))
		case http.MethodDelete:
			s.sessions.Delete(id)
			writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session deleted", nil))
		default:
			w.Header().Set("Allow", "GET, DELETE")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "submit":
		s.submitHandler(w, r, sess)
	case "approve":
		s.approveHandler(w, r, sess)
	case "refine":
		s.refineHandler(w, r, sess)
	case "restart":
		s.restartHandler(w, r, sess)
	case "status":
		writeJSONResponse(w, http.StatusOK, models.Success(sess.Status()))
	case "results":
		s.resultsHandler(w, r, sess)
	case "report":
		s.reportHandler(w, r, sess)
	default:
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown session operation"))
	}
}

// submitHandler handles POST /sessions/{id}/submit.
func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.submitHandler: failed to decode JSON", "error", err, "sessionID", sess.ID())
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	result, err := sess.Submit(r.Context(), req.Text)
	if err != nil {
		slog.Error("Server.submitHandler: submit failed", "error", err, "sessionID", sess.ID())
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}

	slog.Info("Server.submitHandler: stage executed", "sessionID", sess.ID(), "stage", result.Stage)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"status": sess.Status(),
		"result": result,
	}))
}

// approveHandler handles POST /sessions/{id}/approve.
func (s *Server) approveHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := sess.Approve(); err != nil {
		slog.Warn("Server.approveHandler: approve rejected", "error", err, "sessionID", sess.ID())
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}

	slog.Info("Server.approveHandler: stage approved", "sessionID", sess.ID())
	writeJSONResponse(w, http.StatusOK, models.Success(sess.Status()))
}

// refineHandler handles POST /sessions/{id}/refine.
func (s *Server) refineHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.refineHandler: failed to decode JSON", "error", err, "sessionID", sess.ID())
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	result, err := sess.Refine(r.Context(), req.Text)
	if err != nil {
		slog.Error("Server.refineHandler: refine failed", "error", err, "sessionID", sess.ID())
		writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
		return
	}

	slog.Info("Server.refineHandler: stage refined", "sessionID", sess.ID(), "stage", result.Stage)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"status": sess.Status(),
		"result": result,
	}))
}

// restartHandler handles POST /sessions/{id}/restart.
func (s *Server) restartHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess.Clear()
	slog.Info("Server.restartHandler: session restarted", "sessionID", sess.ID())
	writeJSONResponse(w, http.StatusOK, models.Success(sess.Status()))
}

// resultsHandler handles GET /sessions/{id}/results.
func (s *Server) resultsHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sess.Results()))
}

// reportHandler handles GET /sessions/{id}/report, rendering the HTML case
// report over the session's recorded results.
func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	html, err := report.RenderCaseReport(sess.Results())
	if err != nil {
		slog.Error("Server.reportHandler: report rendering failed", "error", err, "sessionID", sess.ID())
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to render report"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		slog.Error("Server.reportHandler: failed to write report", "error", err, "sessionID", sess.ID())
	}
}
