package posts

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-posts/middleware/jwtware"
	"github.com/goliatone/go-print"
)

// RouteAuthenticator builds the auth gate and the error responses of the API
type RouteAuthenticator struct {
	cfg              Config
	tokens           TokenValidator
	listeners        []ValidationListener
	Logger           Logger
	AuthErrorHandler fiber.ErrorHandler
	ErrorHandler     fiber.ErrorHandler
}

// NewHTTPAuthenticator creates a RouteAuthenticator validating tokens with tokens
func NewHTTPAuthenticator(tokens TokenValidator, cfg Config) *RouteAuthenticator {
	a := &RouteAuthenticator{
		cfg:    cfg,
		tokens: tokens,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a
}

func (a *RouteAuthenticator) WithLogger(l Logger) *RouteAuthenticator {
	a.Logger = resolveLogger(l)
	return a
}

// WithValidationListeners adds listeners run after every successful token check
func (a *RouteAuthenticator) WithValidationListeners(listeners ...ValidationListener) *RouteAuthenticator {
	a.listeners = append(a.listeners, listeners...)
	return a
}

// ProtectedRoute returns the auth gate. Handlers placed after it only run
// for requests carrying a valid token.
func (a *RouteAuthenticator) ProtectedRoute() fiber.Handler {
	cfg := jwtware.Config{
		ErrorHandler:    a.AuthErrorHandler,
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		TokenValidator:  JWTValidatorAdapter(a.tokens),
		ContextEnricher: ContextEnricherAdapter,
	}
	RegisterValidationListeners(&cfg, a.listeners...)
	return jwtware.New(cfg)
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) || errors.Is(err, ErrUnauthenticated) {
		return sendMessage(c, http.StatusUnauthorized, ErrUnauthenticated.Message)
	}

	a.Logger.Debug("auth gate rejected token", "error", err, "path", c.OriginalURL())
	return sendMessage(c, http.StatusUnauthorized, ErrInvalidToken.Message)
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	return ErrorResponder(a.Logger)(c, err)
}

// ErrorResponder maps errors to the JSON bodies of the API. Unknown errors
// are logged and answered with a generic 500.
func ErrorResponder(logger Logger) fiber.ErrorHandler {
	logger = resolveLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"errors": verr.Fields})
		}

		if errors.Is(err, ErrInvalidCredentials) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"errors": []FieldError{{Msg: ErrInvalidCredentials.Message}},
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return sendMessage(c, fe.Code, fe.Message)
		}

		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Code > 0 && richErr.Code < http.StatusInternalServerError {
			return sendMessage(c, richErr.Code, richErr.Message)
		}

		var details any
		if richErr != nil {
			details = richErr.Metadata
		}

		logger.Error("request failed",
			"error", err,
			"method", c.Method(),
			"path", c.OriginalURL(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"details", print.MaybePrettyJSON(details),
		)
		return sendMessage(c, http.StatusInternalServerError, ErrServerError.Message)
	}
}

func sendMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"msg": msg})
}
