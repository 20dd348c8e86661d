package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/olesko/rodovid/internal/apperr"
	"github.com/olesko/rodovid/internal/family"
)

const maxBodyBytes = 6 << 20 // JSON body or multipart form with a photo

// EventPublisher receives person change notifications. May be nil.
type EventPublisher interface {
	PublishPersonEvent(kind, id string)
}

// Handler holds API route handlers.
type Handler struct {
	svc    *family.Service
	photos *PhotoHandler
	events EventPublisher
}

// NewHandler creates a new Handler.
func NewHandler(svc *family.Service, photos *PhotoHandler, events EventPublisher) *Handler {
	return &Handler{svc: svc, photos: photos, events: events}
}

// idParam extracts and validates the {id} path parameter.
// Malformed identifiers short-circuit with 400 before any store access.
func idParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.ErrInvalidID
	}
	return id, nil
}

func (h *Handler) publish(kind, id string) {
	if h.events != nil {
		h.events.PublishPersonEvent(kind, id)
	}
}

// fail maps service errors onto the response envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	switch {
	case errors.Is(err, apperr.ErrInvalidID):
		respondError(w, http.StatusBadRequest, "invalid id format")
	case errors.Is(err, apperr.ErrNotFound):
		respondError(w, http.StatusNotFound, "person not found")
	case apperr.IsValidation(err), errors.As(err, &verrs):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodePersonRequest reads a person payload from a JSON body or a
// multipart form. When the form carries a "photo" file it is stored
// and its web path returned.
func (h *Handler) decodePersonRequest(w http.ResponseWriter, r *http.Request) (PersonRequest, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req PersonRequest
	var photo string

	ct := r.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return req, "", apperr.Validationf("invalid multipart form")
		}
		req = PersonRequest{
			FirstName:  r.FormValue("firstName"),
			LastName:   r.FormValue("lastName"),
			MiddleName: r.FormValue("middleName"),
			Gender:     r.FormValue("gender"),
			BirthDate:  r.FormValue("birthDate"),
			DeathDate:  r.FormValue("deathDate"),
			Parent1:    r.FormValue("parent1"),
			Parent2:    r.FormValue("parent2"),
			Spouse:     r.FormValue("spouse"),
			Comments:   r.FormValue("comments"),
		}
		file, header, err := r.FormFile("photo")
		switch {
		case err == nil:
			defer file.Close()
			photo, err = h.photos.Save(file, header)
			if err != nil {
				return req, "", apperr.Validationf("%s", err.Error())
			}
		case errors.Is(err, http.ErrMissingFile):
			// No photo attached.
		default:
			return req, "", apperr.Validationf("invalid photo field")
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, "", apperr.Validationf("invalid JSON body")
		}
	}

	if err := req.Validate(); err != nil {
		return req, "", err
	}
	return req, photo, nil
}

// ListPersons handles GET /api/persons.
// Returns everyone sorted by family name then given name, with
// relationship references expanded one level.
func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.ListPersons(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondList(w, people, len(people))
}

// GetPerson handles GET /api/persons/{id}.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	person, err := h.svc.GetPerson(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, person)
}

// CreatePerson handles POST /api/persons.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	req, photo, err := h.decodePersonRequest(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.ToInput(photo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	person, err := h.svc.CreatePerson(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish("created", person.ID)
	respondDataMessage(w, http.StatusCreated, person, "person created")
}

// UpdatePerson handles PUT /api/persons/{id}.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, photo, err := h.decodePersonRequest(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.ToInput(photo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	person, err := h.svc.UpdatePerson(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish("updated", id)
	respondDataMessage(w, http.StatusOK, person, "person updated")
}

// DeletePerson handles DELETE /api/persons/{id}.
// Cascades: the person's id is removed from every former parent's
// children set and every spouse's marriage links.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.DeletePerson(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.publish("deleted", id)
	respondMessage(w, http.StatusOK, "person deleted")
}

// FamilyTree handles GET /api/persons/{id}/family-tree.
func (h *Handler) FamilyTree(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tree, err := h.svc.FamilyTree(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondData(w, http.StatusOK, tree)
}
