package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"biolinks/internal/clicks"
	"biolinks/internal/db"
	"biolinks/internal/models"
)

// UserStore looks up the owner behind a session. *db.DB implements it.
type UserStore interface {
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
}

// AuthMiddleware handles user authentication via sessions. It is the only
// place that decides which owner a request acts for.
type AuthMiddleware struct {
	store *session.Store
	db    UserStore
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(store *session.Store, db UserStore) *AuthMiddleware {
	return &AuthMiddleware{store: store, db: db}
}

// currentUser resolves the session's user, destroying sessions whose user was deleted.
func (m *AuthMiddleware) currentUser(c fiber.Ctx) *models.User {
	var (
		userSub string
		destroy func() error
	)
	if sess := session.FromContext(c); sess != nil {
		userSub, _ = sess.Get("user_sub").(string)
		destroy = sess.Destroy
	} else {
		sess, err := m.store.Get(c)
		if err != nil {
			return nil
		}
		defer sess.Release()
		userSub, _ = sess.Get("user_sub").(string)
		destroy = sess.Destroy
	}

	if userSub == "" {
		return nil
	}

	user, err := m.db.GetUserBySub(c.Context(), userSub)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			_ = destroy()
		}
		return nil
	}
	return user
}

// RequireAuth ensures the user is authenticated, redirecting to /login if not.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user := m.currentUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	c.Locals("user", user)
	return c.Next()
}

// RequireAPIAuth ensures the user is authenticated, answering 401 in the
// JSON envelope if not.
func (m *AuthMiddleware) RequireAPIAuth(c fiber.Ctx) error {
	user := m.currentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "unauthorized",
		})
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := m.currentUser(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

// ClickLoader gives each request its own click count loader so counts
// looked up while building one view are fetched together.
func ClickLoader(store clicks.CountStore) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.SetContext(clicks.WithLoader(c.Context(), store))
		return c.Next()
	}
}
