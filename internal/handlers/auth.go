package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bloghub/internal/middleware"
	"bloghub/internal/models"
	"bloghub/internal/service"
)

// Auth groups the account handlers: registration, sign-in, the caller's
// own profile and the password-reset flow.
type Auth struct {
	svc       *service.AuthService
	publicURL string
	log       *zap.Logger
}

// NewAuth creates a new Auth handler group. publicURL is the base of
// emailed links; when empty it is derived from each request.
func NewAuth(svc *service.AuthService, publicURL string, log *zap.Logger) *Auth {
	return &Auth{svc: svc, publicURL: publicURL, log: log}
}

// authPayload is an account with its freshly issued token.
type authPayload struct {
	*models.User
	Token string `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=100"`
	Email    *string `json:"email" validate:"omitnil,email,max=254"`
	Bio      *string `json:"bio" validate:"omitnil,max=1000"`
	Password *string `json:"password" validate:"omitnil,min=8,max=72"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Register handles POST /api/auth/register.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, a.log, err)
		return
	}

	res, err := a.svc.Register(r.Context(), service.RegisterInput(req))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusCreated, authPayload{User: res.User, Token: res.Token})
}

// Login handles POST /api/auth/login.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, a.log, err)
		return
	}

	res, err := a.svc.Login(r.Context(), service.LoginInput(req))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, authPayload{User: res.User, Token: res.Token})
}

// Profile handles GET /api/auth/profile.
func (a *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := a.svc.Profile(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, u)
}

// UpdateProfile handles PUT /api/auth/profile. It accepts JSON or a
// multipart form carrying an optional profilePicture file.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var (
		req     profileRequest
		picture []byte
		err     error
	)
	if isMultipart(r) {
		if picture, err = parseMultipart(w, r, "profilePicture"); err == nil {
			req = profileRequest{
				Name:     formValue(r, "name"),
				Email:    formValue(r, "email"),
				Bio:      formValue(r, "bio"),
				Password: formValue(r, "password"),
			}
		}
	} else {
		err = decodeJSON(r, &req)
	}
	if err == nil {
		err = validateRequest(req)
	}
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}

	res, err := a.svc.UpdateProfile(r.Context(), middleware.PrincipalFromCtx(r.Context()), service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Bio:      req.Bio,
		Password: req.Password,
		Picture:  picture,
	})
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, authPayload{User: res.User, Token: res.Token})
}

// ForgotPassword handles POST /api/auth/forgotpassword.
func (a *Auth) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, a.log, err)
		return
	}

	if err := a.svc.ForgotPassword(r.Context(), req.Email, a.baseURL(r)); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, "Email sent")
}

// ResetPassword handles PUT /api/auth/resetpassword/{token}.
func (a *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, a.log, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, a.log, err)
		return
	}

	res, err := a.svc.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if err != nil {
		writeError(w, r, a.log, err)
		return
	}
	writeData(w, http.StatusOK, authPayload{User: res.User, Token: res.Token})
}

func (a *Auth) baseURL(r *http.Request) string {
	if a.publicURL != "" {
		return a.publicURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
