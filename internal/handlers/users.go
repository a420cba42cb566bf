package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/alfagnish/users-gateway/internal/events"
	"github.com/alfagnish/users-gateway/internal/middleware"
	"github.com/alfagnish/users-gateway/internal/users"
	"github.com/go-chi/chi/v5"
)

// Plain-text bodies for error responses.
const (
	msgNotFound    = "User not found"
	msgRequired    = "Name and email are required"
	msgInvalidJSON = "Invalid JSON body"
)

// UsersHandler serves CRUD endpoints for the user resource.
type UsersHandler struct {
	store users.Store
	hub   *events.Hub
}

// NewUsersHandler creates a new UsersHandler. hub may be nil, in which case
// no change events are published.
func NewUsersHandler(store users.Store, hub *events.Hub) *UsersHandler {
	return &UsersHandler{store: store, hub: hub}
}

// Routes registers user routes on the given chi router.
func (h *UsersHandler) Routes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Get("/{id}", h.GetUser)
	r.Put("/{id}", h.UpdateUser)
	r.Delete("/{id}", h.DeleteUser)
}

// userInput is the request body for create and update.
type userInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// decodeUserInput parses the JSON body. An empty body decodes to a zero
// userInput so that presence checks stay with the store.
func decodeUserInput(r *http.Request) (userInput, error) {
	var in userInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return userInput{}, err
	}
	return in, nil
}

// ListUsers returns all users.
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetUser returns a single user by id.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeText(w, http.StatusNotFound, msgNotFound)
		return
	}

	u, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CreateUser creates a new user.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, err := decodeUserInput(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	u, err := h.store.Create(r.Context(), in.Name, in.Email)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.publish(events.UserCreated, u)
	writeJSON(w, http.StatusCreated, u)
}

// UpdateUser replaces every field of an existing user.
func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeText(w, http.StatusNotFound, msgNotFound)
		return
	}
	in, err := decodeUserInput(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	u, err := h.store.Update(r.Context(), id, in.Name, in.Email)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.publish(events.UserUpdated, u)
	writeJSON(w, http.StatusOK, u)
}

// DeleteUser removes a user by id.
func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeText(w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.publish(events.UserDeleted, users.User{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError maps store errors onto HTTP status codes.
func (h *UsersHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		writeText(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, users.ErrInvalidInput):
		writeText(w, http.StatusBadRequest, msgRequired)
	default:
		log.Printf("[%s] %s %s: %v", middleware.RequestIDFromContext(r.Context()), r.Method, r.URL.Path, err)
		writeText(w, http.StatusInternalServerError, "Database error: "+err.Error())
	}
}

func (h *UsersHandler) publish(typ events.Type, u users.User) {
	if h.hub != nil {
		h.hub.Publish(typ, u)
	}
}

// userID parses the {id} path parameter. Anything that is not a base-10
// integer cannot match a user.
func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
