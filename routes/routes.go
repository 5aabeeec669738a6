package routes

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"creatorpulse/config"
	controller "creatorpulse/controllers"
	"creatorpulse/middleware"
	"creatorpulse/services"
	"creatorpulse/state"
	"creatorpulse/utils"
	"creatorpulse/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

const logFormat = "[${time}] ${status} - ${latency} ${method} ${path}\n"

// Deps is everything the route table hands to controllers.
type Deps struct {
	Config  config.Config
	Auth    *services.AuthService
	Reader  *services.Reader
	Orch    *services.Orchestrator
	Inbox   *services.InboxService
	Twitter *services.TwitterService
	Pages   *state.Store
	Hub     *worker.Hub
	// LimiterStorage keeps outreach rate-limit counters. Nil keeps them in memory.
	LimiterStorage fiber.Storage
}

func secureCookies(cfg config.Config) bool {
	return cfg.Environment == "production"
}

func SetupAuthRoutes(app *fiber.App, d Deps) {
	authController := controller.NewAuthController(
		d.Auth,
		d.Config.SessionCookie,
		d.Config.ProfileCacheTTL,
		secureCookies(d.Config),
		d.Config.StripePublishableKey,
	)

	auth := app.Group("/auth", logger.New(logger.Config{Format: logFormat}))
	auth.Post("/login", authController.Login)
	auth.Post("/signup", authController.Signup)
	auth.Post("/logout", authController.Logout)
	auth.Get("/me", authController.Me)
	auth.Get("/plans", authController.Plans)
	auth.Post("/checkout", authController.Checkout)
}

func SetupAdminRoutes(app *fiber.App, d Deps) {
	creatorController := controller.NewCreatorController(d.Reader, d.Orch)
	outreachController := controller.NewOutreachController(d.Reader, d.Orch)
	inboxController := controller.NewInboxController(d.Inbox, d.Reader, d.Orch, d.Hub, d.Config.InboxPollInterval, d.Config.SearchDebounce)
	twitterController := controller.NewTwitterController(d.Twitter)

	// The gate covers the admin pages as well as the API below them.
	admin := app.Group("/admin", middleware.AuthGate())
	api := admin.Group("/api", logger.New(logger.Config{Format: logFormat}))

	api.Get("/clients", creatorController.ListClients)
	api.Get("/clients/:id/creators", creatorController.ClientCreators)
	api.Get("/payments", creatorController.Payments)

	// Creator routes
	creators := api.Group("/creators")
	creators.Get("/", creatorController.ListCreators)
	creators.Post("/emails", creatorController.CopyEmails)
	creators.Post("/mark-contacted", creatorController.MarkContacted)
	creators.Get("/:id", creatorController.GetCreator)
	creators.Put("/:id/status", creatorController.UpdateStatus)
	creators.Put("/:id/clients/:clientId/status", creatorController.UpdateClientStatus)
	creators.Put("/:id/onboarding", creatorController.UpdateOnboarding)
	creators.Delete("/:id", creatorController.DeleteCreator)

	api.Get("/selection", creatorController.Selection)
	api.Post("/selection", creatorController.Selection)

	// Template editor routes
	api.Get("/templates", outreachController.ListTemplates)
	editor := api.Group("/editor")
	editor.Get("/", outreachController.Editor)
	editor.Post("/select", outreachController.SelectTemplate)
	editor.Put("/draft", outreachController.EditDraft)
	editor.Post("/reset", outreachController.ResetDraft)
	editor.Delete("/", outreachController.ClearEditor)

	// Outreach routes; sends are rate limited per user
	outreach := api.Group("/outreach")
	outreach.Get("/logs", outreachController.Logs)
	rateLimit := middleware.OutreachRateLimiter(d.Config.RateLimitOutreach, d.LimiterStorage)
	outreach.Post("/send", rateLimit, outreachController.Send)
	outreach.Post("/mass", rateLimit, outreachController.SendMass)

	// Inbox routes
	inbox := api.Group("/inbox/:clientId")
	inbox.Get("/", inboxController.GetInbox)
	inbox.Post("/refresh", inboxController.Refresh)
	inbox.Post("/reply", inboxController.Reply)
	api.Get("/ws/inbox/:clientId", inboxController.UpgradeInbox, websocket.New(inboxController.InboxSocket))

	// Twitter routes
	tweets := api.Group("/tweets")
	tweets.Get("/", twitterController.ListTweets)
	tweets.Post("/", twitterController.PostTweet)
	tweets.Get("/:id/replies", twitterController.ListReplies)
	tweets.Post("/:id/replies/:replyId/process", twitterController.ProcessReply)
	api.Post("/twitter/dm", twitterController.SendDM)
}

func SetupPortalRoutes(app *fiber.App, d Deps) {
	portalController := controller.NewPortalController(d.Reader)

	portal := app.Group("/portal", middleware.AuthGate())
	api := portal.Group("/api", logger.New(logger.Config{Format: logFormat}))
	api.Get("/creators", portalController.ListCreators)
}

// spaFallback serves index.html for page routes the static handler did not
// match, and a JSON 404 for everything else.
func spaFallback(staticDir string) fiber.Handler {
	index := filepath.Join(staticDir, "index.html")
	_, err := os.Stat(index)
	hasIndex := err == nil

	return func(c *fiber.Ctx) error {
		if hasIndex && c.Method() == fiber.MethodGet && !strings.Contains(c.Path(), "/api/") {
			return c.SendFile(index)
		}
		return utils.ErrorResponse(c, fiber.StatusNotFound, "The requested resource was not found", nil)
	}
}

func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(
		middleware.Session(d.Auth, d.Config.SessionCookie),
		middleware.Pages(d.Pages, d.Config.SessionStateTTL, secureCookies(d.Config)),
	)

	SetupAuthRoutes(app, d)
	SetupAdminRoutes(app, d)
	SetupPortalRoutes(app, d)

	if d.Config.StaticDir != "" {
		app.Static("/", d.Config.StaticDir)
	}
	app.Use(spaFallback(d.Config.StaticDir))

	log.Println("Routes initialized successfully")
}
