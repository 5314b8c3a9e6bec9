package posts

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// PostsController exposes PostService over HTTP
type PostsController struct {
	Logger       Logger
	Service      *PostService
	ContextKey   string
	ErrorHandler fiber.ErrorHandler
}

func NewPostsController(service *PostService, logger Logger) *PostsController {
	if service == nil {
		panic("Missing PostService in posts controller...")
	}

	logger = resolveLogger(logger)
	return &PostsController{
		Logger:       logger,
		Service:      service,
		ContextKey:   "user",
		ErrorHandler: ErrorResponder(logger),
	}
}

func (p *PostsController) Create(c *fiber.Ctx) error {
	actor, err := p.actor(c)
	if err != nil {
		return p.ErrorHandler(c, err)
	}

	post, err := p.Service.CreatePost(c.UserContext(), actor, p.text(c))
	if err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(post)
}

func (p *PostsController) List(c *fiber.Ctx) error {
	records, err := p.Service.ListPosts(c.UserContext())
	if err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(records)
}

func (p *PostsController) Get(c *fiber.Ctx) error {
	post, err := p.Service.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(post)
}

func (p *PostsController) Delete(c *fiber.Ctx) error {
	actor, err := p.actor(c)
	if err != nil {
		return p.ErrorHandler(c, err)
	}

	if err := p.Service.DeletePost(c.UserContext(), actor, c.Params("id")); err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(fiber.Map{"msg": "Post removed!"})
}

func (p *PostsController) Like(c *fiber.Ctx) error {
	actor, err := p.actor(c)
	if err != nil {
		return p.ErrorHandler(c, err)
	}

	likes, err := p.Service.LikePost(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(likes)
}

func (p *PostsController) Unlike(c *fiber.Ctx) error {
	actor, err := p.actor(c)
	if err != nil {
		return p.ErrorHandler(c, err)
	}

	likes, err := p.Service.UnlikePost(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(likes)
}

func (p *PostsController) Comment(c *fiber.Ctx) error {
	actor, err := p.actor(c)
	if err != nil {
		return p.ErrorHandler(c, err)
	}

	comments, err := p.Service.AddComment(c.UserContext(), actor, c.Params("id"), p.text(c))
	if err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(comments)
}

func (p *PostsController) Uncomment(c *fiber.Ctx) error {
	actor, err := p.actor(c)
	if err != nil {
		return p.ErrorHandler(c, err)
	}

	comments, err := p.Service.RemoveComment(c.UserContext(), actor, c.Params("id"), c.Params("comment_id"))
	if err != nil {
		return p.ErrorHandler(c, err)
	}
	return c.JSON(comments)
}

func (p *PostsController) actor(c *fiber.Ctx) (string, error) {
	if id, ok := ActorID(c.UserContext()); ok {
		return id, nil
	}
	if claims, ok := GetFiberClaims(c, p.ContextKey); ok && claims.UserID() != "" {
		return claims.UserID(), nil
	}
	return "", ErrUnauthenticated
}

func (p *PostsController) text(c *fiber.Ctx) string {
	payload := PostTextRequest{}
	if err := c.BodyParser(&payload); err != nil {
		p.Logger.Debug("post body parse failed", "error", err)
	}
	return payload.Text
}

// RoutesConfig controls how the API is mounted
type RoutesConfig struct {
	Prefix          string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// RegisterRoutes mounts the API on router. Everything except POST /auth
// and /health sits behind the auth gate.
func RegisterRoutes(router fiber.Router, gate *RouteAuthenticator, auth *AuthController, posts *PostsController, cfg RoutesConfig) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := router.Group(cfg.Prefix)
	protected := gate.ProtectedRoute()

	loginHandlers := []fiber.Handler{}
	if cfg.LoginRateLimit > 0 {
		window := cfg.LoginRateWindow
		if window <= 0 {
			window = time.Minute
		}
		loginHandlers = append(loginHandlers, limiter.New(limiter.Config{
			Max:        cfg.LoginRateLimit,
			Expiration: window,
			LimitReached: func(c *fiber.Ctx) error {
				return sendMessage(c, http.StatusTooManyRequests, "Too many login attempts")
			},
		}))
	}
	loginHandlers = append(loginHandlers, auth.Login)

	api.Post("/auth", loginHandlers...)
	api.Get("/auth", protected, auth.Me)

	api.Post("/posts", protected, posts.Create)
	api.Get("/posts", protected, posts.List)
	api.Get("/posts/:id", protected, posts.Get)
	api.Delete("/posts/:id", protected, posts.Delete)

	api.Put("/posts/like/:id", protected, posts.Like)
	api.Put("/posts/unlike/:id", protected, posts.Unlike)

	api.Post("/posts/comment/:id", protected, posts.Comment)
	api.Delete("/posts/comment/:id/:comment_id", protected, posts.Uncomment)
}
