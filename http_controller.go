package posts

import (
	"github.com/gofiber/fiber/v2"
)

// AuthController serves POST /auth and GET /auth
type AuthController struct {
	Logger       Logger
	Auther       Authenticator
	ContextKey   string
	ErrorHandler fiber.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithAuthControllerLogger(l Logger) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Logger = resolveLogger(l)
		return a
	}
}

func WithAuthControllerErrorHandler(h fiber.ErrorHandler) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		if h != nil {
			a.ErrorHandler = h
		}
		return a
	}
}

func WithAuthControllerContextKey(key string) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		if key != "" {
			a.ContextKey = key
		}
		return a
	}
}

func NewAuthController(auther Authenticator, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		Auther:     auther,
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = ErrorResponder(c.Logger)
	}

	return c
}

// Login exchanges credentials for a token
func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		a.Logger.Debug("login body parse failed", "error", err)
		payload = LoginRequest{}
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(fiber.Map{"token": token})
}

// Me returns the user behind the token
func (a *AuthController) Me(c *fiber.Ctx) error {
	claims, ok := GetClaims(c.UserContext())
	if !ok {
		if claims, ok = GetFiberClaims(c, a.ContextKey); !ok {
			return a.ErrorHandler(c, ErrUnauthenticated)
		}
	}

	user, err := a.Auther.IdentityFromClaims(c.UserContext(), claims)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	return c.JSON(user)
}
