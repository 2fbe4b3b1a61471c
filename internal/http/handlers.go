package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"spendy/internal/notify"
	"spendy/internal/prefs"
	"spendy/internal/savings"
)

const alertsCacheKey = "alerts"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.alertsCache.Get(alertsCacheKey); ok {
		writeJSON(w, http.StatusOK, map[string]any{"alerts": cached})
		return
	}

	alerts, err := s.insight.Alerts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Alert generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate alerts")
		return
	}

	s.alertsCache.Set(alertsCacheKey, alerts)
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AlertID string `json:"alertId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.AlertID) == "" {
		writeError(w, http.StatusBadRequest, "alertId is required")
		return
	}

	if err := s.insight.DismissAlert(r.Context(), req.AlertID); err != nil {
		slog.ErrorContext(r.Context(), "Dismiss alert failed", "alert_id", req.AlertID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to dismiss alert")
		return
	}

	s.alertsCache.Delete(alertsCacheKey)
	writeJSON(w, http.StatusOK, map[string]any{"dismissed": req.AlertID})
}

func (s *Server) handleClearDismissals(w http.ResponseWriter, r *http.Request) {
	if err := s.insight.ClearDismissedAlerts(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Clear dismissals failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear dismissals")
		return
	}

	s.alertsCache.Delete(alertsCacheKey)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	capacity, err := s.insight.Capacity(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Capacity calculation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to calculate capacity")
		return
	}
	writeJSON(w, http.StatusOK, capacity)
}

type suggestionsResponse struct {
	Amounts  savings.Amounts             `json:"amounts"`
	Cutbacks []savings.CutbackSuggestion `json:"cutbacks"`
	Smart    []savings.SmartSuggestion   `json:"smart"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	amounts, err := s.insight.SuggestedAmounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Amount suggestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute suggestions")
		return
	}
	cutbacks, err := s.insight.CutbackSuggestions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Cutback suggestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute suggestions")
		return
	}
	smart, err := s.insight.SmartSuggestions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Smart suggestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute suggestions")
		return
	}

	writeJSON(w, http.StatusOK, suggestionsResponse{
		Amounts:  amounts,
		Cutbacks: cutbacks,
		Smart:    smart,
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.insight.Preferences(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Load preferences failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load preferences")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	// Decode over the defaults so fields absent from the body keep their
	// documented values instead of collapsing to Go zero values.
	p := prefs.Defaults()
	if !decodeJSON(w, r, p) {
		return
	}

	if err := s.insight.SavePreferences(r.Context(), p); err != nil {
		slog.ErrorContext(r.Context(), "Save preferences failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	s.alertsCache.Delete(alertsCacheKey)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleResetPreferences(w http.ResponseWriter, r *http.Request) {
	defaults := prefs.Defaults()
	if err := s.insight.SavePreferences(r.Context(), defaults); err != nil {
		slog.ErrorContext(r.Context(), "Reset preferences failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset preferences")
		return
	}

	s.alertsCache.Delete(alertsCacheKey)
	writeJSON(w, http.StatusOK, defaults)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.insight.Chat(r.Context(), req.Message)
	if err != nil {
		slog.ErrorContext(r.Context(), "Chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to answer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.insight.Refresh()
	s.alertsCache.Delete(alertsCacheKey)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSendWhatsApp(w http.ResponseWriter, r *http.Request) {
	if s.notifier == nil {
		writeError(w, http.StatusServiceUnavailable, "whatsapp gateway not configured")
		return
	}

	var req struct {
		Message     string `json:"message"`
		PhoneNumber string `json:"phoneNumber"`
		Type        string `json:"type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var resp *notify.Response
	var err error
	if req.PhoneNumber != "" {
		resp, err = s.notifier.SendTo(r.Context(), req.Message, req.PhoneNumber, req.Type)
	} else {
		resp, err = s.notifier.Send(r.Context(), req.Message, req.Type)
	}
	if err != nil {
		if errors.Is(err, notify.ErrEmptyMessage) || errors.Is(err, notify.ErrEmptyPhoneNumber) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "WhatsApp send failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to send whatsapp message")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
