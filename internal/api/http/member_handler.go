package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"community-backend/internal/service"
)

// MemberHandler serves the admin member-management endpoints.
type MemberHandler struct {
	members service.MemberService
	admin   service.AdminService
}

func NewMemberHandler(members service.MemberService, admin service.AdminService) *MemberHandler {
	return &MemberHandler{members: members, admin: admin}
}

func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}

func (h *MemberHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.MemberSearchInput{
		Query: q.Get("query"),
		Role:  q.Get("role"),
	}
	if raw := q.Get("isActive"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	if raw := q.Get("vettingStatus"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			code := int32(v)
			filter.VettingStatus = &code
		}
	}

	page, err := h.admin.SearchMembers(r.Context(), filter, queryInt32(r, "page", 1), queryInt32(r, "pageSize", 20))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *MemberHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid member id"})
		return
	}
	details, err := h.members.GetMemberDetails(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

func (h *MemberHandler) GetEventHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid member id"})
		return
	}
	history, err := h.members.GetEventHistory(r.Context(), id, queryInt32(r, "page", 1), queryInt32(r, "pageSize", 20))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *MemberHandler) GetIncidents(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid member id"})
		return
	}
	incidents, err := h.members.GetIncidents(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, incidentViews(incidents))
}

// incidentView flattens the typed decryption results for the wire: a failed
// field is rendered as a placeholder with an explicit flag.
type incidentView struct {
	ID                 uuid.UUID  `json:"id"`
	ReporterID         uuid.UUID  `json:"reporter_id"`
	CoordinatorID      *uuid.UUID `json:"coordinator_id,omitempty"`
	InvolvedParties    string     `json:"involved_parties"`
	Witnesses          string     `json:"witnesses"`
	Description        string     `json:"description"`
	DecryptionDegraded bool       `json:"decryption_degraded,omitempty"`
	OccurredAt         string     `json:"occurred_at"`
	ReportedAt         string     `json:"reported_at"`
}

const decryptPlaceholder = "[unavailable]"

func incidentViews(incidents []service.IncidentView) []incidentView {
	views := make([]incidentView, 0, len(incidents))
	for _, in := range incidents {
		v := incidentView{
			ID:            in.ID,
			ReporterID:    in.ReporterID,
			CoordinatorID: in.CoordinatorID,
			OccurredAt:    in.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			ReportedAt:    in.ReportedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
		v.InvolvedParties, v.Witnesses, v.Description = in.InvolvedParties.Value, in.Witnesses.Value, in.Description.Value
		if in.InvolvedParties.Failed {
			v.InvolvedParties = decryptPlaceholder
		}
		if in.Witnesses.Failed {
			v.Witnesses = decryptPlaceholder
		}
		if in.Description.Failed {
			v.Description = decryptPlaceholder
		}
		v.DecryptionDegraded = in.InvolvedParties.Failed || in.Witnesses.Failed || in.Description.Failed
		views = append(views, v)
	}
	return views
}

func (h *MemberHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid member id"})
		return
	}
	notes, err := h.members.GetNotes(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

func (h *MemberHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
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
	var body struct {
		Content  string `json:"content"`
		NoteType string `json:"note_type"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	note, err := h.members.CreateNote(r.Context(), id, body.Content, body.NoteType, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

func (h *MemberHandler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(r, "noteId")
	if !ok {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid note id"})
		return
	}
	actorID, ok := callerID(r)
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}
	if err := h.members.ArchiveNote(r.Context(), noteID, actorID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *MemberHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var body struct {
		IsActive bool   `json:"is_active"`
		Reason   string `json:"reason"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.admin.UpdateMemberStatus(r.Context(), id, body.IsActive, body.Reason, actorID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *MemberHandler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
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
	var body struct {
		Role string `json:"role"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := h.admin.UpdateMemberRole(r.Context(), id, body.Role, actorID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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
	var body struct {
		SceneName *string `json:"scene_name"`
		LegalName *string `json:"legal_name"`
		Email     *string `json:"email"`
		Pronouns  *string `json:"pronouns"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	input := service.UpdateMemberInput{
		SceneName: body.SceneName,
		LegalName: body.LegalName,
		Email:     body.Email,
		Pronouns:  body.Pronouns,
	}
	if err := h.admin.UpdateMember(r.Context(), id, input, actorID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
