// Package login provides the HTTP handler that exchanges credentials for a session.
package login

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/web/handler"
	"github.com/shopkeep/shopkeep/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPath + "/auth/login"

	tagLogin = "login"
)

type credentials struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=255"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	local     *auth.LocalProvider
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return handler.ErrNilDependency
	}

	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)
	s.validator = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// Post authenticates the credentials and opens a session. The session id
// is set as cookie and returned as token for clients that send it as bearer.
func (s *Service) Post(c *fiber.Ctx) error {
	in := new(credentials)
	if err := c.BodyParser(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidFormData.Error()})
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidFormData.Error()})
	}

	user, err := s.local.Authenticate(c.UserContext(), in.Username, in.Password)
	switch {
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrUserAccountDisabled):
		log.Warn().Str("username", in.Username).Err(err).Msg("login rejected")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrInvalidCredentials.Error()})
	case err != nil:
		return handler.RespondError(c, tagLogin, err)
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return handler.RespondError(c, tagLogin, err)
	}

	ttl := s.cfg.Webserver.Session.ExpiryTime
	userSession := &session.Data{User: *user, CreatedAt: time.Now()}

	if err = userSession.Write(sessionID, ttl); err != nil {
		return handler.RespondError(c, tagLogin, err)
	}

	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		Path:     handler.RootPath,
		Domain:   s.cfg.Webserver.Domain,
		MaxAge:   int(ttl.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	c.Cookie(cookieSettings)

	log.Info().Str("user_id", user.ID).Msg("user logged in")

	return c.JSON(fiber.Map{
		"token":     sessionID,
		"expiresAt": time.Now().Add(ttl),
		"user":      user,
	})
}
