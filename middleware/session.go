package middleware

import (
	"strings"
	"time"

	"creatorpulse/models"
	"creatorpulse/services"
	"creatorpulse/state"

	"github.com/gofiber/fiber/v2"
)

const (
	localSession = "session"
	localPage    = "page"

	// PageCookie carries the id of the browser's page state.
	PageCookie = "portal_page"
)

// TokenFrom reads the credential from the Authorization header, falling back
// to the session cookie.
func TokenFrom(c *fiber.Ctx, cookieName string) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) == 2 && strings.EqualFold(tokenParts[0], "Bearer") {
			return strings.TrimSpace(tokenParts[1])
		}
		return ""
	}
	return c.Cookies(cookieName)
}

// Session builds the request's models.Session once and stores it in Locals.
// It never rejects; gating is AuthGate's job.
func Session(auth *services.AuthService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localSession, auth.Session(TokenFrom(c, cookieName)))
		return c.Next()
	}
}

// CurrentSession returns the session built by Session, or an empty one.
func CurrentSession(c *fiber.Ctx) *models.Session {
	if sess, ok := c.Locals(localSession).(*models.Session); ok {
		return sess
	}
	return &models.Session{}
}

// Pages attaches the browser's page state, creating it on first visit.
func Pages(store *state.Store, ttl time.Duration, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(PageCookie)
		page := store.GetOrCreate(id)
		if page.ID != id {
			c.Cookie(&fiber.Cookie{
				Name:     PageCookie,
				Value:    page.ID,
				Path:     "/",
				Expires:  time.Now().Add(ttl),
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(localPage, page)
		return c.Next()
	}
}

// CurrentPage returns the page state attached by Pages.
func CurrentPage(c *fiber.Ctx) *state.Page {
	page, _ := c.Locals(localPage).(*state.Page)
	return page
}
