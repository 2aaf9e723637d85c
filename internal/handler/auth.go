package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/omnidash/omnidash/internal/handler/dto"
	"github.com/omnidash/omnidash/internal/service"
)

// AuthHandler handles HTTP requests for registration, login and profile
// management. All mutating endpoints accept form-encoded bodies and the
// access token is presented as a token query parameter.
type AuthHandler struct {
	profiles       *service.ProfileService
	uploads        *service.UploadService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(profiles *service.ProfileService, uploads *service.UploadService, maxUploadBytes int64, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		profiles:       profiles,
		uploads:        uploads,
		logger:         logger.With("handler", "auth"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	email := r.PostFormValue("email")
	name := r.PostFormValue("name")
	password := r.PostFormValue("password")
	if email == "" || name == "" || password == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELD", "email, name and password are required")
		return
	}

	user, err := h.profiles.Register(r.Context(), email, name, password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Msg: "User registered successfully"})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELD", "email and password are required")
		return
	}

	token, err := h.profiles.Login(r.Context(), email, password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	user, err := h.profiles.Me(r.Context(), token)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Edit handles POST /auth/edit.
//
// A field takes effect when the form contains its key, even with an empty
// value; omitted keys leave the attribute untouched. This is stricter than
// the usual "empty means skip" form handling on purpose: it lets a client
// clear the bio or phone.
func (h *AuthHandler) Edit(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	input := service.EditInput{
		Name:     formValue(r, "name"),
		Bio:      formValue(r, "bio"),
		Phone:    formValue(r, "phone"),
		Email:    formValue(r, "email"),
		Password: formValue(r, "password"),
	}

	user, err := h.profiles.Edit(r.Context(), token, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("profile_edited", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Msg: "Profile updated successfully"})
}

// UploadPhoto handles POST /auth/upload-photo.
func (h *AuthHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Uploaded file exceeds the size limit")
			return
		}
		h.writeError(w, http.StatusBadRequest, "MISSING_FILE", "A file upload is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FILE", "Could not read uploaded file")
		return
	}

	path, err := h.uploads.UploadPhoto(r.Context(), token, data, header.Filename)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PhotoUploadResponse{
		Msg:      "Photo uploaded successfully",
		PhotoURL: path,
	})
}

// GoogleLogin handles POST /auth/google-login.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	assertion := r.PostFormValue("dummy_token")
	if assertion == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELD", "dummy_token is required")
		return
	}

	token, err := h.profiles.FederatedLogin(r.Context(), assertion)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{AccessToken: token})
}

// Logout handles POST /auth/logout. Tokens are stateless, so invalidation is
// the caller's responsibility.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{Msg: "Logged out successfully. Remove token on client side."})
}

// handleServiceError maps service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		h.writeError(w, http.StatusBadRequest, "DUPLICATE_EMAIL", "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		h.writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
	case errors.Is(err, service.ErrBlankField):
		h.writeError(w, http.StatusBadRequest, "EMPTY_FIELD", "Email and password cannot be set to empty values")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// formValue reports form field presence: nil when the key is absent, a
// pointer to the (possibly empty) value when present.
func formValue(r *http.Request, key string) *string {
	if !r.PostForm.Has(key) {
		return nil
	}
	v := r.PostForm.Get(key)
	return &v
}
