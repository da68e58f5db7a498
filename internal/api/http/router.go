package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"community-backend/internal/security"
)

// NewRouter wires the REST endpoints. Every route sits behind token
// authentication; the admin member-management surface additionally requires
// an administrator role claim.
func NewRouter(tokens security.TokenManager, members *MemberHandler, vetting *VettingHandler, events *EventHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(tokens))

	// Self-service surface.
	api.HandleFunc("/vetting/applications", vetting.SubmitApplication).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}/register", events.Register).Methods(http.MethodPost)
	api.HandleFunc("/participations/{id}/cancel", events.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/incidents", events.ReportIncident).Methods(http.MethodPost)

	// Admin surface.
	admin := api.PathPrefix("").Subrouter()
	admin.Use(RequireAdminRole)

	admin.HandleFunc("/vetting/applications/{id}", vetting.GetApplication).Methods(http.MethodGet)
	admin.HandleFunc("/vetting/applications/{id}/status", vetting.ChangeStatus).Methods(http.MethodPut)
	admin.HandleFunc("/vetting/applications/{id}/approve", vetting.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/vetting/applications/{id}/deny", vetting.Deny).Methods(http.MethodPost)

	admin.HandleFunc("/users", members.Search).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", members.UpdateProfile).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}/details", members.GetDetails).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/vetting-details", vetting.GetMemberApplication).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/event-history", members.GetEventHistory).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/incidents", members.GetIncidents).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/notes", members.GetNotes).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/notes", members.CreateNote).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/notes/{noteId}", members.ArchiveNote).Methods(http.MethodDelete)
	admin.HandleFunc("/users/{id}/status", members.UpdateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}/roles", members.UpdateRoles).Methods(http.MethodPut)

	return router
}
