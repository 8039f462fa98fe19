package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/taskloop/taskloop/internal/identity"
)

// Handler exposes the register and login endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionResponse struct {
	User        identity.PublicUser `json:"user"`
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	ExpiresIn   int64               `json:"expires_in"`
}

// Register creates a new account and returns it with an access token.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.svc.Register(c.UserContext(), RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailTaken):
			return fiber.NewError(http.StatusConflict, identity.ErrEmailTaken.Error())
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "registration failed")
		}
	}
	return c.Status(http.StatusCreated).JSON(sessionResponse{
		User:        session.User.Public(),
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   session.ExpiresIn,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns an access token. The failure
// message never reveals which part of the credential pair was wrong.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "login failed")
	}
	return c.Status(http.StatusOK).JSON(sessionResponse{
		User:        session.User.Public(),
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   session.ExpiresIn,
	})
}
