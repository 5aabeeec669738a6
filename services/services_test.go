package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"creatorpulse/cache"
	"creatorpulse/client"
	"creatorpulse/client/clienttest"
	"creatorpulse/models"
	"creatorpulse/state"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeCRM is a minimal in-memory CRM API.
type fakeCRM struct {
	mu        sync.Mutex
	creators  []models.Creator
	logs      []models.OutreachLog
	replies   []models.TweetReply
	fail      map[string]int
	calls     map[string]int
	lastBody  map[string][]byte
	profile   models.Profile
	validPass string
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		creators: []models.Creator{
			{ID: 1, Name: "Jane Doe", Emails: []string{"jane@x.com"}},
			{ID: 2, Name: "Bob", Emails: []string{"bob@y.com"}},
			{ID: 3, Name: "Cara", Emails: []string{"cara@z.com"}},
		},
		logs: []models.OutreachLog{{CreatorID: 1, ClientID: 7, Status: "sent"}},
		replies: []models.TweetReply{
			{ID: 1, TweetID: 5, ReplyID: "r1", AuthorID: "a1"},
			{ID: 2, TweetID: 5, ReplyID: "r2", AuthorID: "a2", Processed: true},
		},
		fail:      map[string]int{},
		calls:     map[string]int{},
		lastBody:  map[string][]byte{},
		profile:   models.Profile{ID: 1, Email: "admin@x.com", IsAdmin: true},
		validPass: "secret",
	}
}

func (f *fakeCRM) failWith(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[route] = status
}

func (f *fakeCRM) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *fakeCRM) body(route string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody[route]
}

// track records the call and reports a configured failure.
func (f *fakeCRM) track(route string, c *fiber.Ctx) (bool, error) {
	f.mu.Lock()
	f.calls[route]++
	f.lastBody[route] = append([]byte(nil), c.Body()...)
	status := f.fail[route]
	f.mu.Unlock()
	if status != 0 {
		return true, c.Status(status).JSON(fiber.Map{"detail": "upstream refused"})
	}
	return false, nil
}

func (f *fakeCRM) routes(app *fiber.App) {
	list := func(route string, value func() interface{}) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if failed, err := f.track(route, c); failed {
				return err
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			return c.JSON(value())
		}
	}
	ok := func(route string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if failed, err := f.track(route, c); failed {
				return err
			}
			return c.JSON(fiber.Map{"success": true})
		}
	}

	app.Get("/admin/creators", list("creators", func() interface{} { return f.creators }))
	app.Get("/admin/logs", list("logs", func() interface{} { return f.logs }))
	app.Get("/admin/tweets/:id/replies", list("replies", func() interface{} { return f.replies }))
	app.Get("/admin/clients/:id/inbox", list("inbox", func() interface{} {
		reply := "Thanks!\n\nOn Mon, Jan 1 Ada wrote:\n> hi"
		return []models.Email{
			{ID: "1", MessageID: "m1", Subject: "Hi", Date: "2024-01-01T00:00:00Z", Reply: &reply},
			{ID: "2", MessageID: "m1", Subject: "Hi (dup)", Date: "2024-01-02T00:00:00Z"},
			{ID: "3", MessageID: "m2", Subject: "Deal", Date: "2024-01-03T00:00:00Z"},
		}
	}))
	app.Put("/admin/creators/:id/status", ok("status"))
	app.Put("/admin/creators/:id/client-status/:client", ok("client-status"))
	app.Put("/admin/creators/:id/onboarding", func(c *fiber.Ctx) error {
		if failed, err := f.track("onboarding", c); failed {
			return err
		}
		return c.JSON(models.Creator{ID: 1, Name: "Jane Doe", OnboardingStage: models.StageContractSigned, PaymentSetupCompleted: true})
	})
	app.Delete("/admin/creators/:id", ok("delete"))
	app.Post("/admin/outreach", ok("outreach"))
	app.Post("/admin/mass-outreach", ok("mass-outreach"))
	app.Post("/admin/creators/mark-contacted", ok("mark-contacted"))
	app.Post("/admin/outreach/reply", ok("reply"))
	app.Post("/admin/tweets", ok("tweet"))
	app.Post("/admin/tweets/:id/replies/:reply/process", ok("process"))
	app.Post("/admin/twitter/dm", ok("dm"))
	app.Post("/admin/creators/emails", func(c *fiber.Ctx) error {
		if failed, err := f.track("emails", c); failed {
			return err
		}
		return c.JSON(fiber.Map{"emails": []models.CreatorContact{
			{Name: "Jane Doe", Email: "jane@x.com"},
			{Name: "No Mail", Email: ""},
		}})
	})
	app.Post("/token", func(c *fiber.Ctx) error {
		f.track("token", c)
		if c.FormValue("password") != f.validPass {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Incorrect username or password"})
		}
		return c.JSON(fiber.Map{"access_token": "opaque-token", "token_type": "bearer"})
	})
	app.Get("/users/me", func(c *fiber.Ctx) error {
		f.track("me", c)
		if clienttest.Bearer(c) == "" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		return c.JSON(f.profile)
	})
	app.Post("/signup", func(c *fiber.Ctx) error {
		if failed, err := f.track("signup", c); failed {
			return err
		}
		return c.JSON(fiber.Map{"access_token": "new-token"})
	})
}

type fixture struct {
	crm     *fakeCRM
	api     *client.Client
	fetcher *cache.Fetcher
	reader  *Reader
	audit   *memoryAudit
	orch    *Orchestrator
	page    *state.Page
	sess    *models.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	crm := newFakeCRM()
	api := clienttest.NewUpstream(t, crm.routes)
	fetcher := cache.NewFetcher(cache.NewMemoryStorage(), time.Minute)
	reader := NewReader(api, fetcher)
	audit := &memoryAudit{}
	return &fixture{
		crm:     crm,
		api:     api,
		fetcher: fetcher,
		reader:  reader,
		audit:   audit,
		orch:    NewOrchestrator(api, fetcher, reader, audit),
		page:    state.NewStore(time.Minute).Create(),
		sess:    &models.Session{Token: "tok", Email: "admin@x.com", IsAdmin: true, HasProfile: true},
	}
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (m *memoryAudit) Record(_ context.Context, entry models.AuditEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}
