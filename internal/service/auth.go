// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"bloghub/internal/access"
	"bloghub/internal/apperr"
	"bloghub/internal/auth"
	"bloghub/internal/mail"
	"bloghub/internal/models"
	"bloghub/internal/store"
)

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is a sign-in attempt.
type LoginInput struct {
	Email    string
	Password string
}

// ProfileUpdate changes the caller's own account. Nil fields are left
// unchanged; a non-empty Picture replaces the profile image.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Bio      *string
	Password *string
	Picture  []byte
}

// AuthResult is an account together with a freshly issued identity token.
type AuthResult struct {
	User  *models.User
	Token string
}

// AuthService handles registration, sign-in, self-service profile edits
// and the password-reset flow.
type AuthService struct {
	users       UserRepository
	creds       *auth.Credentials
	tokens      *auth.TokenService
	media       MediaUploader
	mailer      Mailer
	mediaFolder string
	log         *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserRepository, creds *auth.Credentials, tokens *auth.TokenService, mediaUploader MediaUploader, mailer Mailer, mediaFolder string, log *zap.Logger) *AuthService {
	return &AuthService{
		users:       users,
		creds:       creds,
		tokens:      tokens,
		media:       mediaUploader,
		mailer:      mailer,
		mediaFolder: mediaFolder,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashPassword hashes plaintext, reporting an over-long password as a
// validation error.
func (s *AuthService) hashPassword(plaintext string) (string, error) {
	hash, err := s.creds.HashPassword(plaintext)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperr.Validation("Password must be at most 72 bytes")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	return hash, nil
}

func (s *AuthService) result(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "issue token", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := required(field{"name", in.Name}, field{"email", in.Email}, field{"password", in.Password}); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, storeFailure(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("User already exists")
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, storeFailure(err)
	}

	s.log.Info("user registered", zap.String("user_id", u.ID.String()))
	return s.result(u)
}

// Login checks an email and password pair. Unknown emails and wrong
// passwords fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := required(field{"email", in.Email}, field{"password", in.Password}); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, storeFailure(err)
	}
	if u == nil || !s.creds.VerifyPassword(in.Password, u.PasswordHash) {
		return nil, apperr.Unauthenticated("Invalid email or password", nil)
	}
	return s.result(u)
}

// Profile returns the caller's own account.
func (s *AuthService) Profile(ctx context.Context, p *access.Principal) (*models.User, error) {
	if p == nil {
		return nil, apperr.Unauthenticated("Not authorized", nil)
	}
	u, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return u, nil
}

// UpdateProfile applies in to the caller's account and returns it with a
// new token. A replaced profile image is released after the save.
func (s *AuthService) UpdateProfile(ctx context.Context, p *access.Principal, in ProfileUpdate) (*AuthResult, error) {
	u, err := s.Profile(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(p, access.User, u.ID, access.Update); err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := required(field{"name", *in.Name}); err != nil {
			return nil, err
		}
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		if err := required(field{"email", *in.Email}); err != nil {
			return nil, err
		}
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Bio != nil {
		u.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	oldPicture := models.ExternalIDOf(u.ProfilePicture)
	var uploaded *models.Image
	if len(in.Picture) > 0 {
		uploaded, err = uploadImage(ctx, s.media, in.Picture, s.mediaFolder)
		if err != nil {
			return nil, err
		}
		u.ProfilePicture = uploaded
	}

	if err := s.users.Update(ctx, u); err != nil {
		if uploaded != nil {
			releaseImage(ctx, s.media, s.log, uploaded.ExternalID)
		}
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict("Email already in use")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		}
		return nil, storeFailure(err)
	}
	if uploaded != nil {
		releaseImage(ctx, s.media, s.log, oldPicture)
	}
	return s.result(u)
}

// ForgotPassword issues a reset token for the account registered under
// email and mails a link to baseURL. If delivery fails the token is
// cleared again so no usable token outlives the failed request.
func (s *AuthService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	if err := required(field{"email", email}); err != nil {
		return err
	}
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return storeFailure(err)
	}
	if u == nil {
		return apperr.NotFound("User not found")
	}

	raw, hash, expires, err := s.creds.IssueResetToken()
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "issue reset token", err)
	}
	if err := s.users.SetResetToken(ctx, u.ID, hash, expires); err != nil {
		return storeFailure(err)
	}

	link := strings.TrimRight(baseURL, "/") + "/api/auth/resetpassword/" + raw
	validFor := fmt.Sprintf("%d minutes", int(expires.Sub(s.creds.Now()).Round(time.Minute).Minutes()))
	body, err := mail.ResetEmail(u.Name, link, validFor)
	if err == nil {
		err = s.mailer.Send(ctx, u.Email, mail.ResetSubject, body)
	}
	if err != nil {
		if clearErr := s.users.ClearResetToken(ctx, u.ID); clearErr != nil {
			s.log.Error("clear reset token failed", zap.String("user_id", u.ID.String()), zap.Error(clearErr))
		}
		return apperr.Upstream("Email could not be sent", err)
	}

	s.log.Info("password reset requested", zap.String("user_id", u.ID.String()))
	return nil
}

// ResetPassword sets a new password for the holder of an unexpired reset
// token. Each token succeeds at most once.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password string) (*AuthResult, error) {
	if err := required(field{"token", rawToken}, field{"password", password}); err != nil {
		return nil, err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	u, err := s.users.ConsumeResetToken(ctx, auth.HashResetToken(rawToken), hash, s.creds.Now())
	if err != nil {
		return nil, storeFailure(err)
	}
	if u == nil {
		return nil, apperr.Validation("Invalid or expired reset token")
	}

	s.log.Info("password reset", zap.String("user_id", u.ID.String()))
	return s.result(u)
}

