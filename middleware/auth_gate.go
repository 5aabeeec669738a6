package middleware

import (
	"strings"

	"creatorpulse/models"
	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
)

type Area string

const (
	AreaPublic Area = "public"
	AreaAdmin  Area = "admin"
	AreaPortal Area = "portal"
)

// GateState is where the auth gate ends up for a request.
type GateState string

const (
	GateUnknown         GateState = "unknown"
	GateUnauthenticated GateState = "unauthenticated"
	GateAdmin           GateState = "admin"
	GateNonAdmin        GateState = "non_admin"
)

const (
	LoginPath      = "/login"
	AdminHomePath  = "/admin/creators"
	PortalHomePath = "/portal"
)

// GateDecision is the outcome of Decide. Redirect is empty when Allow is set.
type GateDecision struct {
	State    GateState `json:"state"`
	Allow    bool      `json:"allow"`
	Redirect string    `json:"redirect,omitempty"`
}

// AreaOf maps a request path to the area that guards it.
func AreaOf(path string) Area {
	switch {
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return AreaAdmin
	case path == "/portal" || strings.HasPrefix(path, "/portal/"):
		return AreaPortal
	default:
		return AreaPublic
	}
}

// Decide runs the gate. It only steers the browser to the right area; the API
// authorizes every call on its own.
func Decide(sess *models.Session, path string) GateDecision {
	area := AreaOf(path)
	if area == AreaPublic {
		return GateDecision{State: GateUnknown, Allow: true}
	}
	if !sess.Authenticated() {
		return GateDecision{State: GateUnauthenticated, Redirect: LoginPath}
	}
	if sess.IsAdmin {
		if area != AreaAdmin {
			return GateDecision{State: GateAdmin, Redirect: AdminHomePath}
		}
		return GateDecision{State: GateAdmin, Allow: true}
	}
	if area == AreaAdmin {
		return GateDecision{State: GateNonAdmin, Redirect: PortalHomePath}
	}
	return GateDecision{State: GateNonAdmin, Allow: true}
}

func isAPIRequest(c *fiber.Ctx) bool {
	return strings.Contains(c.Path(), "/api/") || c.Get(fiber.HeaderAccept) == fiber.MIMEApplicationJSON
}

// AuthGate applies Decide. Pages are redirected; API calls get a 401 or 403
// toast carrying the redirect target.
func AuthGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := Decide(CurrentSession(c), c.Path())
		if decision.Allow {
			return c.Next()
		}

		if !isAPIRequest(c) {
			return c.Redirect(decision.Redirect, fiber.StatusFound)
		}

		status, message := fiber.StatusForbidden, "This area is not available for your account"
		if decision.State == GateUnauthenticated {
			status, message = fiber.StatusUnauthorized, "Please sign in to continue"
		}
		c.Set("X-Redirect", decision.Redirect)
		return utils.ErrorResponse(c, status, message, nil)
	}
}
