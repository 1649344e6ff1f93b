package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/domain"
	"storefront/internal/validation"
	"storefront/pkg/logger"
)

type UserHandler struct {
	service   domain.UserService
	validator *validation.Validator
	logger    logger.Logger
}

func NewUserHandler(service domain.UserService, validator *validation.Validator, logger logger.Logger) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/by-username/{username}", h.GetUserByUsername)

		r.Route("/{user_id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Delete("/", h.DeleteUser)

			r.Post("/profile", h.CreateProfile)
			r.Get("/profile", h.GetProfile)
			r.Patch("/profile", h.UpdateProfile)

			r.Post("/posts", h.CreatePosts)
			r.Get("/posts", h.ListUserPosts)
		})
	})
	r.Get("/posts", h.ListPosts)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.validator.UserCreate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), s, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), s)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, s, ok := h.userScope(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), s, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.service.GetUserByUsername(r.Context(), s, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, s, ok := h.userScope(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), s, userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileInput
	if !h.decode(w, r, &in, func() error { return h.validator.ProfileCreate(in) }) {
		return
	}

	userID, s, ok := h.userScope(w, r)
	if !ok {
		return
	}

	profile, err := h.service.CreateProfile(r.Context(), s, userID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, s, ok := h.userScope(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), s, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.ProfileInput
	if !h.decode(w, r, &in, func() error { return h.validator.ProfilePartial(in) }) {
		return
	}

	userID, s, ok := h.userScope(w, r)
	if !ok {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), s, userID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) CreatePosts(w http.ResponseWriter, r *http.Request) {
	var in domain.PostsInput
	if !h.decode(w, r, &in, func() error { return h.validator.PostsCreate(in) }) {
		return
	}

	userID, s, ok := h.userScope(w, r)
	if !ok {
		return
	}

	posts, err := h.service.CreatePosts(r.Context(), s, userID, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, posts)
}

func (h *UserHandler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, s, ok := h.userScope(w, r)
	if !ok {
		return
	}

	posts, err := h.service.ListUserPosts(r.Context(), s, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *UserHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	posts, err := h.service.ListPosts(r.Context(), s)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// decode reads the body into dst and runs validate; on failure the response is
// already written and false is returned.
func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, validate func() error) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeError(w, r, h.logger, err)
		return false
	}
	if err := validate(); err != nil {
		writeError(w, r, h.logger, err)
		return false
	}
	return true
}

// userScope parses {user_id} and resolves the request session.
func (h *UserHandler) userScope(w http.ResponseWriter, r *http.Request) (int64, domain.Session, bool) {
	userID, err := validation.PathID("user_id", chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return 0, nil, false
	}

	s, err := session(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return 0, nil, false
	}

	return userID, s, true
}
