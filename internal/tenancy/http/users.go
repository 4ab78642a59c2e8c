package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/authsdk"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

const msgUserNotFound = "User not found"

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe returns the user named by the access token's subject.
//
//	@Summary	Current user
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	authsdk.User
//	@Failure	401	{string}	string	"Missing or invalid access token"
//	@Failure	404	{string}	string	"User not found"
//	@Security	BearerAuth
//	@Router		/me [get]
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpx.SubjectFromContext(r.Context())
	if !ok {
		httpx.WriteText(w, http.StatusUnauthorized, "")
		return
	}

	u, err := h.UserService.GetUserByID(r.Context(), subject)
	if err != nil {
		writeServiceError(w, r, err, msgUserNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleCreate godoc
//
//	@Summary		Create a user
//	@Description	The password is hashed with the configured algorithm. date_of_birth is YYYY-MM-DD.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"User"
//	@Success		201		{object}	authsdk.User
//	@Failure		400		{string}	string	"Invalid input, unknown tenant or email taken"
//	@Security		BearerAuth
//	@Router			/users [post]
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	var dob *time.Time
	if req.DateOfBirth != "" {
		d, err := domain.ParseDate(req.DateOfBirth)
		if err != nil {
			httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
			return
		}
		dob = &d
	}

	u, err := h.UserService.Create(r.Context(), service.NewUser{
		TenantID:     req.TenantID,
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,

		DateOfBirth:       dob,
		Gender:            req.Gender,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		writeServiceError(w, r, err, msgUserNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUser(u))
}

// HandleList godoc
//
//	@Summary	List users
//	@Tags		Users
//	@Produce	json
//	@Success	200	{array}	authsdk.User
//	@Security	BearerAuth
//	@Router		/users [get]
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, msgUserNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mapSlice(users, toUser))
}

// HandleGet godoc
//
//	@Summary	Get a user by id
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ULID"
//	@Success	200	{object}	authsdk.User
//	@Failure	404	{string}	string	"User not found"
//	@Security	BearerAuth
//	@Router		/users/{id} [get]
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	u, err := h.UserService.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, msgUserNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleGetByEmail godoc
//
//	@Summary	Get a user by email
//	@Tags		Users
//	@Produce	json
//	@Param		email	path		string	true	"Email address"
//	@Success	200		{object}	authsdk.User
//	@Failure	404		{string}	string	"User not found"
//	@Security	BearerAuth
//	@Router		/users/email/{email} [get]
func (h *UsersHandler) HandleGetByEmail(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUserByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		writeServiceError(w, r, err, msgUserNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleUpdate godoc
//
//	@Summary		Update a user
//	@Description	Omitted fields are left as they are. The password cannot be changed here.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ULID"
//	@Param			request	body		authsdk.UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.User
//	@Failure		400		{string}	string	"Invalid input or email taken"
//	@Failure		404		{string}	string	"User not found"
//	@Security		BearerAuth
//	@Router			/users/{id} [put]
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	var req authsdk.UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	u, err := h.UserService.Update(r.Context(), id, domain.UserPatch{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,

		DateOfBirth:       dob,
		Gender:            req.Gender,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		writeServiceError(w, r, err, msgUserNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleDelete godoc
//
//	@Summary		Delete a user
//	@Description	The user is soft deleted and every live refresh token it holds is revoked.
//	@Tags			Users
//	@Param			id	path	string	true	"User ULID"
//	@Success		204
//	@Failure		404	{string}	string	"User not found"
//	@Security		BearerAuth
//	@Router			/users/{id} [delete]
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteText(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	if err := h.UserService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, msgUserNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
