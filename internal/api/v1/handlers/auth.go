package handlers

import (
	"context"

	"task-management/internal/api/response"
	"task-management/internal/models"
	"task-management/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Credentials is satisfied by *service.CredentialStore.
type Credentials interface {
	Register(ctx context.Context, username, password string) (uuid.UUID, error)
	VerifyCredentials(ctx context.Context, username, password string) (models.User, error)
}

// TokenIssuer is satisfied by *service.TokenService.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

type AuthHandler struct {
	creds  Credentials
	tokens TokenIssuer
	log    *logger.Loggers
}

func NewAuthHandler(creds Credentials, tokens TokenIssuer, log *logger.Loggers) *AuthHandler {
	return &AuthHandler{creds: creds, tokens: tokens, log: log}
}

// SignUp answers 201 with an empty body.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req models.AuthCredentials
	if err := c.BodyParser(&req); err != nil {
		h.log.Error.Error("Bad request in signup", zap.Error(err))
		return response.Fail(c, fiber.StatusBadRequest, "Bad request")
	}
	h.log.Request.Info("Signup request received", zap.String("username", req.Username))

	if _, err := h.creds.Register(c.UserContext(), req.Username, req.Password); err != nil {
		return response.Error(c, err)
	}

	h.log.Request.Info("Signup request processed", zap.String("username", req.Username))
	return c.SendStatus(fiber.StatusCreated)
}

// SignIn does not validate the body: anything that does not match a stored
// user is just bad credentials.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req models.AuthCredentials
	if err := c.BodyParser(&req); err != nil {
		h.log.Error.Error("Bad request in signin", zap.Error(err))
		return response.Fail(c, fiber.StatusBadRequest, "Bad request")
	}
	h.log.Request.Info("Signin request received", zap.String("username", req.Username))

	user, err := h.creds.VerifyCredentials(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.tokens.Issue(user.Username)
	if err != nil {
		h.log.Error.Error("Error generating token", zap.Error(err))
		return response.Error(c, err)
	}

	h.log.Audit.Info("Login success", zap.String("user_id", user.ID.String()))
	return c.JSON(models.SignInResponse{AccessToken: token})
}
