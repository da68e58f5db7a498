package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"community-backend/internal/domain"
	"community-backend/internal/service"
)

type decisionFunc func(ctx context.Context, applicationID uuid.UUID, reasoning string, actorID uuid.UUID) (*domain.VettingApplication, error)

// VettingHandler serves the vetting application endpoints.
type VettingHandler struct {
	vetting service.VettingService
}

func NewVettingHandler(vetting service.VettingService) *VettingHandler {
	return &VettingHandler{vetting: vetting}
}

func (h *VettingHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	var body struct {
		Answers string `json:"answers"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	app, err := h.vetting.SubmitApplication(r.Context(), actorID, body.Answers)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

func (h *VettingHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid application id"})
		return
	}
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	details, err := h.vetting.GetApplication(r.Context(), id, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

// GetMemberApplication serves the member-centric vetting read used by the
// admin member detail screen.
func (h *VettingHandler) GetMemberApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid member id"})
		return
	}
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	details, err := h.vetting.GetApplicationByMember(r.Context(), id, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

func (h *VettingHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid application id"})
		return
	}
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	var body struct {
		Status    string `json:"status"`
		Reasoning string `json:"reasoning"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	app, err := h.vetting.ChangeStatus(r.Context(), id, body.Status, body.Reasoning, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

func (h *VettingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.vetting.Approve)
}

func (h *VettingHandler) Deny(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.vetting.Deny)
}

func (h *VettingHandler) decide(w http.ResponseWriter, r *http.Request, fn decisionFunc) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid application id"})
		return
	}
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	var body struct {
		Reasoning string `json:"reasoning"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	app, err := fn(r.Context(), id, body.Reasoning, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}
