package controller

import (
	"time"

	"creatorpulse/middleware"
	"creatorpulse/services"
	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type SignupRequest struct {
	Email           string `json:"email" form:"email" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
}

type CheckoutRequest struct {
	Plan string `json:"plan" form:"plan" validate:"required,oneof=silver gold"`
}

type AuthController struct {
	auth           *services.AuthService
	cookieName     string
	cookieTTL      time.Duration
	secure         bool
	publishableKey string
}

func NewAuthController(auth *services.AuthService, cookieName string, cookieTTL time.Duration, secure bool, publishableKey string) *AuthController {
	return &AuthController{
		auth:           auth,
		cookieName:     cookieName,
		cookieTTL:      cookieTTL,
		secure:         secure,
		publishableKey: publishableKey,
	}
}

func (ac *AuthController) setToken(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     ac.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   ac.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Login exchanges credentials upstream, stores the profile and sets the
// credential cookie. Admins land in /admin, everyone else in /portal.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, err, "Login failed")
	}

	token, profile, err := ac.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Login failed")
	}
	ac.setToken(c, token.AccessToken, time.Now().Add(ac.cookieTTL))
	resetPage(c)

	redirect := middleware.PortalHomePath
	if profile.IsAdmin {
		redirect = "/admin"
	}
	return c.JSON(utils.SuccessToast(fiber.Map{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"profile":      profile,
		"redirect":     redirect,
	}, "Signed in"))
}

func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, err, "Signup failed")
	}

	if _, err := ac.auth.Signup(c.UserContext(), req.Email, req.Password, req.ConfirmPassword); err != nil {
		return respondError(c, err, "Signup failed")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessToast(fiber.Map{
		"redirect": middleware.LoginPath,
	}, "Account created. Please sign in."))
}

// Logout clears the credential cookie, the stored profile and the page state.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	ac.auth.Logout(middleware.CurrentSession(c).Token)
	ac.setToken(c, "", time.Unix(0, 0))
	resetPage(c)
	return c.JSON(utils.SuccessResponse(fiber.Map{"redirect": middleware.LoginPath}))
}

// resetPage drops state left by whoever used this browser before.
func resetPage(c *fiber.Ctx) {
	if page := middleware.CurrentPage(c); page != nil {
		page.Reset()
	}
}

// Me reports who is signed in and where the gate would send them.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	identity := ac.auth.ResolveIdentity(c.UserContext(), sess.Token)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"identity":      identity,
		"is_admin":      sess.IsAdmin,
		"authenticated": sess.Authenticated(),
	}))
}

// Plans returns what the plans page needs to start a checkout.
func (ac *AuthController) Plans(c *fiber.Ctx) error {
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"plans":           []string{"silver", "gold"},
		"publishable_key": ac.publishableKey,
	}))
}

func (ac *AuthController) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, err, "Checkout failed")
	}

	url, err := ac.auth.Checkout(c.UserContext(), middleware.CurrentSession(c), req.Plan)
	if err != nil {
		return respondError(c, err, "Checkout failed")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{"url": url}))
}
