package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olesko/rodovid/internal/family"
	"github.com/olesko/rodovid/internal/store"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, receives person change notifications.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *family.Service, db *store.DB, photos *PhotoHandler,
	events EventPublisher, authEnabled bool, token string, sseHandler http.Handler) chi.Router {

	h := NewHandler(svc, photos, events)
	sh := NewScheduleHandler(db)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Persons CRUD and family tree.
	r.Get("/persons", h.ListPersons)
	r.Post("/persons", h.CreatePerson)
	r.Get("/persons/{id}", h.GetPerson)
	r.Put("/persons/{id}", h.UpdatePerson)
	r.Delete("/persons/{id}", h.DeletePerson)
	r.Get("/persons/{id}/family-tree", h.FamilyTree)

	// Schedule.
	r.Get("/schedule", sh.List)
	r.Post("/schedule", sh.Create)
	r.Delete("/schedule/{id}", sh.Delete)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
