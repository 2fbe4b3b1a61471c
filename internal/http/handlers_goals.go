package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"spendy/internal/core"
	"spendy/internal/storage"
)

// goalRequest is the wire shape for creating and updating goals.
type goalRequest struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	MonthlyAmount float64 `json:"monthlyAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	Category      string  `json:"category"`
	TargetDate    string  `json:"targetDate,omitempty"` // RFC 3339 date, optional
}

func (g goalRequest) toGoal(w http.ResponseWriter) (core.SavingsGoal, bool) {
	goal := core.SavingsGoal{
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		MonthlyAmount: g.MonthlyAmount,
		CurrentAmount: g.CurrentAmount,
		Category:      g.Category,
	}
	if g.TargetDate != "" {
		t, err := time.Parse("2006-01-02", g.TargetDate)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, g.TargetDate); err != nil {
				writeError(w, http.StatusBadRequest, "invalid targetDate, use YYYY-MM-DD")
				return goal, false
			}
		}
		goal.TargetDate = t
	}
	return goal, true
}

func goalStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrGoalNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidTargetAmount),
		errors.Is(err, core.ErrInvalidMonthlyAmount),
		errors.Is(err, core.ErrNegativeAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List goals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list goals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"goals": goals})
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, ok := req.toGoal(w)
	if !ok {
		return
	}

	created, err := s.goals.Create(r.Context(), goal)
	if err != nil {
		status := goalStatus(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "Create goal failed", "error", err)
			writeError(w, status, "failed to create goal")
			return
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.goals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrGoalNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Get goal failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	goal, ok := req.toGoal(w)
	if !ok {
		return
	}

	updated, err := s.goals.Update(r.Context(), r.PathValue("id"), goal)
	if err != nil {
		status := goalStatus(err)
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "Update goal failed", "error", err)
			writeError(w, status, "failed to update goal")
			return
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrGoalNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Delete goal failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalAmount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount    float64 `json:"amount"`
		Operation string  `json:"operation"` // "add" or "remove"
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	id := r.PathValue("id")
	var goal *core.SavingsGoal
	var err error
	switch req.Operation {
	case "add", "":
		goal, err = s.goals.AddAmount(r.Context(), id, req.Amount)
	case "remove":
		goal, err = s.goals.RemoveAmount(r.Context(), id, req.Amount)
	default:
		writeError(w, http.StatusBadRequest, "operation must be add or remove")
		return
	}
	if err != nil {
		if errors.Is(err, storage.ErrGoalNotFound) {
			writeError(w, http.StatusNotFound, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Adjust goal amount failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update goal amount")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	reports, err := s.insight.GoalProgress(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal progress failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute goal progress")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": reports})
}
