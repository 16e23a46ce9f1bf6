package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"weekly-agenda-api/internal/auth"
	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/store"
	"weekly-agenda-api/internal/validation"
	"weekly-agenda-api/internal/webutil"
)

const (
	msgEmailTaken      = "Email already registered"
	msgUserNotFound    = "User not found"
	msgInvalidPassword = "Invalid password!"
)

type loginResponse struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

type userResponse struct {
	User model.PublicUser `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	var p validation.Payload
	if err := webutil.DecodeJSON(w, r, &p); err != nil {
		return err
	}
	if err := validation.RegisterSchema.Validate(p); err != nil {
		return webutil.ErrValidation(validation.Messages(err))
	}

	ctx := r.Context()
	email := p.String("email")
	_, err := h.store.UserByEmail(ctx, email)
	switch {
	case err == nil:
		return webutil.ErrConflict(msgEmailTaken, nil)
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(p.String("password"))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	birth, _ := validation.ParseDate(p["birthDate"])

	u := &model.User{
		FirstName:    p.String("firstName"),
		LastName:     p.String("lastName"),
		BirthDate:    birth,
		City:         p.String("city"),
		Country:      p.String("country"),
		Email:        email,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, store.ErrDuplicate) {
			return webutil.ErrConflict(msgEmailTaken, err)
		}
		return fmt.Errorf("create user: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", u.ID).Msg("user registered")
	webutil.RespondWithJSON(w, http.StatusCreated, message{"User created successfully"})
	return nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	var p validation.Payload
	if err := webutil.DecodeJSON(w, r, &p); err != nil {
		return err
	}
	if err := validation.LoginSchema.Validate(p); err != nil {
		return webutil.ErrValidation(validation.Messages(err))
	}

	u, err := h.store.UserByEmail(r.Context(), p.String("email"))
	if errors.Is(err, store.ErrNotFound) {
		return webutil.ErrUnprocessable(webutil.TitleNotFound, msgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(u.PasswordHash, p.String("password")) {
		return webutil.ErrUnprocessable(webutil.TitleAuth, msgInvalidPassword)
	}

	tok, err := auth.MakeToken(u.ID, h.secret)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, loginResponse{Token: tok, User: u.Profile()})
	return nil
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) error {
	u, err := h.store.UserByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		return webutil.ErrNotFound(msgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, userResponse{User: u.Public()})
	return nil
}
