package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/engine"
	"github.com/hammamikhairi/ottolift/internal/reorganize"
	"github.com/hammamikhairi/ottolift/internal/session"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Status())
}

func (s *Server) handleRoutines(w http.ResponseWriter, r *http.Request) {
	list, err := s.routines.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleBests(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.PersonalBests(entries))
}

// --- Session ---

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoutineID string `json:"routineId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.RoutineID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("routineId is required"))
		return
	}
	ws, err := s.eng.StartWorkout(r.Context(), req.RoutineID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	res, err := s.eng.EndWorkout(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	s.command(s.eng.DiscardWorkout)(w, r)
}

func (s *Server) handleMinimized(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minimized bool `json:"minimized"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.SetMinimized(r.Context(), req.Minimized))
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.eng.RemoveExercise(r.Context(), chi.URLParam(r, "exerciseID")))
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	id, err := s.eng.AddSet(r.Context(), chi.URLParam(r, "exerciseID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"setId": id})
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var patch engine.SetPatch
	if !decode(w, r, &patch) {
		return
	}
	s.respond(w, s.eng.UpdateSet(r.Context(), chi.URLParam(r, "exerciseID"), chi.URLParam(r, "setID"), patch))
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.eng.RemoveSet(r.Context(), chi.URLParam(r, "exerciseID"), chi.URLParam(r, "setID")))
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Complete bool `json:"complete"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.SetCompletion(r.Context(), chi.URLParam(r, "exerciseID"), chi.URLParam(r, "setID"), req.Complete))
}

// --- Timers ---

type secondsReq struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handleAddRest(w http.ResponseWriter, r *http.Request) {
	var req secondsReq
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.AddRestTime(r.Context(), req.Seconds))
}

func (s *Server) handleRestDuration(w http.ResponseWriter, r *http.Request) {
	var req secondsReq
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.ChangeRestDuration(r.Context(), req.Seconds))
}

func (s *Server) handleQuickStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int    `json:"seconds"`
		Label   string `json:"label"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.StartQuickTimer(r.Context(), req.Seconds, req.Label))
}

func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	var req secondsReq
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.AddQuickTime(r.Context(), req.Seconds))
}

func (s *Server) handleIntervalStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Work   int `json:"work"`
		Rest   int `json:"rest"`
		Rounds int `json:"rounds"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.StartInterval(r.Context(), req.Work, req.Rest, req.Rounds))
}

// --- Superset player ---

func (s *Server) handleSupersetStart(w http.ResponseWriter, r *http.Request) {
	st, err := s.eng.StartSuperset(r.Context(), chi.URLParam(r, "supersetID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSupersetComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.SupersetCompleteSet(r.Context(), req.Weight, req.Reps))
}

func (s *Server) handleSupersetAdd(w http.ResponseWriter, r *http.Request) {
	var req secondsReq
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.eng.SupersetAddTime(r.Context(), req.Seconds))
}

func (s *Server) handleVisible(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Visible bool `json:"visible"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.eng.SetVisible(r.Context(), req.Visible)
	s.respond(w, nil)
}

// --- Reorganize ---

func (s *Server) handleReorganizeBegin(w http.ResponseWriter, r *http.Request) {
	l, err := s.eng.BeginReorganize(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleReorganizeMove(w http.ResponseWriter, r *http.Request) {
	var mv reorganize.Move
	if !decode(w, r, &mv) {
		return
	}
	l, err := s.eng.Reorganize(r.Context(), mv)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// --- Helpers ---

// command adapts a no-argument engine command to a handler.
func (s *Server) command(fn func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, fn(r.Context()))
	}
}

// respond answers a command with the resulting status snapshot.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.eng.Status())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  err.Error(),
			"issues": verr.Issues,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidMove),
		errors.Is(err, domain.ErrEmptySuperset):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, domain.ErrNoActiveSession), errors.Is(err, domain.ErrSessionActive),
		errors.Is(err, domain.ErrInvalidPhase), errors.Is(err, domain.ErrNotReorganizing),
		errors.Is(err, domain.ErrNoTimer):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, domain.ErrCapabilityDenied), errors.Is(err, domain.ErrNotImplemented):
		writeJSON(w, http.StatusNotImplemented, errorBody(err.Error()))
	default:
		s.log.Error("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid JSON: %v", err)))
		return false
	}
	return true
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
