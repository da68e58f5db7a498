package http

import (
	"net/http"
	"time"

	"community-backend/internal/service"
)

// EventHandler serves event registration, cancellation, and incident
// reporting endpoints.
type EventHandler struct {
	events    service.EventService
	incidents service.IncidentService
}

func NewEventHandler(events service.EventService, incidents service.IncidentService) *EventHandler {
	return &EventHandler{events: events, incidents: incidents}
}

func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	var body struct {
		ParticipationType string `json:"participation_type"`
		Metadata          string `json:"metadata"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	participation, err := h.events.RegisterForEvent(r.Context(), actorID, eventID, body.ParticipationType, body.Metadata)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, participation)
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	participationID, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid participation id"})
		return
	}
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.events.CancelParticipation(r.Context(), participationID, body.Reason, actorID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *EventHandler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	var body struct {
		InvolvedParties string    `json:"involved_parties"`
		Witnesses       string    `json:"witnesses"`
		Description     string    `json:"description"`
		OccurredAt      time.Time `json:"occurred_at"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	input := service.ReportIncidentInput{
		InvolvedParties: body.InvolvedParties,
		Witnesses:       body.Witnesses,
		Description:     body.Description,
		OccurredAt:      body.OccurredAt,
	}
	incident, err := h.incidents.ReportIncident(r.Context(), actorID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, incident)
}
