package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"creatorpulse/cache"
	"creatorpulse/client/clienttest"
	"creatorpulse/config"
	"creatorpulse/middleware"
	"creatorpulse/models"
	"creatorpulse/routes"
	"creatorpulse/services"
	"creatorpulse/state"
	"creatorpulse/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crm is the upstream API as seen by the portal.
type crm struct {
	mu       sync.Mutex
	calls    map[string]int
	bodies   map[string][]byte
	fail     map[string]int
	profile  models.Profile
	creators []models.Creator
}

func newCRM() *crm {
	return &crm{
		calls:   map[string]int{},
		bodies:  map[string][]byte{},
		fail:    map[string]int{},
		profile: models.Profile{ID: 1, Email: "admin@x.com", IsAdmin: true},
		creators: []models.Creator{
			{ID: 1, Name: "Jane Doe", Emails: []string{"jane@x.com"}, ClientStatuses: map[string]models.ClientStatus{"7": {Status: "active"}}},
			{ID: 2, Name: "Bob", Emails: []string{"bob@y.com"}, ClientStatuses: map[string]models.ClientStatus{"7": {Status: "active"}}},
			{ID: 3, Name: "Cara", ProfileURLs: []string{"https://x.com/cara"}},
		},
	}
}

func (f *crm) hit(route string, c *fiber.Ctx) (bool, error) {
	f.mu.Lock()
	f.calls[route]++
	f.bodies[route] = append([]byte(nil), c.Body()...)
	status := f.fail[route]
	f.mu.Unlock()
	if status != 0 {
		return true, c.Status(status).JSON(fiber.Map{"detail": "upstream refused"})
	}
	return false, nil
}

func (f *crm) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *crm) body(route string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

func (f *crm) failWith(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[route] = status
}

func (f *crm) routes(app *fiber.App) {
	reply := func(route string, value func(c *fiber.Ctx) interface{}) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if failed, err := f.hit(route, c); failed {
				return err
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			return c.JSON(value(c))
		}
	}
	ok := func(c *fiber.Ctx) interface{} { return fiber.Map{"success": true} }

	app.Post("/token", func(c *fiber.Ctx) error {
		if c.FormValue("password") != "secret" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Incorrect username or password"})
		}
		return c.JSON(fiber.Map{"access_token": "opaque-token", "token_type": "bearer"})
	})
	app.Get("/users/me", reply("me", func(*fiber.Ctx) interface{} { return f.profile }))
	app.Get("/admin/clients", reply("clients", func(*fiber.Ctx) interface{} {
		return []models.Client{{ID: 7, Email: "brand@x.com"}}
	}))
	app.Get("/admin/creators", reply("creators", func(c *fiber.Ctx) interface{} {
		search := strings.ToLower(c.Query("search"))
		if search == "" {
			return f.creators
		}
		matched := []models.Creator{}
		for _, creator := range f.creators {
			if strings.Contains(strings.ToLower(creator.Name), search) {
				matched = append(matched, creator)
			}
		}
		return matched
	}))
	app.Get("/admin/clients/:id/creators", reply("client-creators", func(*fiber.Ctx) interface{} { return f.creators }))
	app.Get("/admin/logs", reply("logs", func(c *fiber.Ctx) interface{} {
		if c.Query("client_id") != "7" {
			return []models.OutreachLog{}
		}
		return []models.OutreachLog{{CreatorID: 1, ClientID: 7, Status: "sent"}}
	}))
	app.Get("/admin/templates", reply("templates", func(*fiber.Ctx) interface{} {
		return map[string]models.Template{
			"t1": {Name: "Intro", Subject: "Hi ${creator_name}", Body: "Dear ${creator_name}, let's talk."},
		}
	}))
	app.Get("/admin/clients/:id/inbox", reply("inbox", func(*fiber.Ctx) interface{} {
		quoted := "Sounds good\n\nOn Tue, Jan 2 Brand wrote:\n> proposal"
		return []models.Email{
			{ID: "1", MessageID: "m1", Subject: "Proposal", Date: "2024-01-01T00:00:00Z", Reply: &quoted},
			{ID: "2", MessageID: "m1", Subject: "Proposal (copy)", Date: "2024-01-05T00:00:00Z"},
			{ID: "3", MessageID: "m2", Subject: "Rates", Date: "2024-01-03T00:00:00Z"},
		}
	}))
	app.Delete("/admin/creators/:id", reply("delete", ok))
	app.Post("/admin/outreach", reply("outreach", ok))
	app.Post("/admin/mass-outreach", reply("mass-outreach", ok))
	app.Post("/admin/outreach/reply", reply("reply", ok))
}

type harness struct {
	t       *testing.T
	app     *fiber.App
	crm     *crm
	cookies map[string]string
}

func newHarness(t *testing.T, options ...func(*config.Config)) *harness {
	t.Helper()
	upstream := newCRM()
	api := clienttest.NewUpstream(t, upstream.routes)
	storage := cache.NewMemoryStorage()
	fetcher := cache.NewFetcher(storage, time.Minute)
	reader := services.NewReader(api, fetcher)
	audit := services.NewAuditRecorder(nil)

	cfg := config.Config{
		SessionCookie:     "token",
		ProfileCacheTTL:   time.Hour,
		SessionStateTTL:   time.Hour,
		InboxPollInterval: time.Minute,
		SearchDebounce:    10 * time.Millisecond,
		RateLimitOutreach: 100,
	}
	for _, option := range options {
		option(&cfg)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	routes.SetupRoutes(app, routes.Deps{
		Config:  cfg,
		Auth:    services.NewAuthService(api, storage, time.Hour),
		Reader:  reader,
		Orch:    services.NewOrchestrator(api, fetcher, reader, audit),
		Inbox:   services.NewInboxService(reader, fetcher),
		Twitter: services.NewTwitterService(api, fetcher, reader, audit),
		Pages:   state.NewStore(time.Hour),
		Hub:     worker.NewHub(),
	})
	return &harness{t: t, app: app, crm: upstream, cookies: map[string]string{}}
}

// do sends a request carrying every cookie set so far.
func (h *harness) do(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for name, value := range h.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := h.app.Test(req, 5000)
	require.NoError(h.t, err)
	for _, cookie := range resp.Cookies() {
		h.cookies[cookie.Name] = cookie.Value
	}

	var payload map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(h.t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func (h *harness) login() {
	h.t.Helper()
	resp, payload := h.do(http.MethodPost, "/auth/login", map[string]string{"email": "admin@x.com", "password": "secret"})
	require.Equal(h.t, fiber.StatusOK, resp.StatusCode, payload)
	require.Equal(h.t, "opaque-token", h.cookies["token"])
}

func ids(t *testing.T, value interface{}) []int64 {
	t.Helper()
	items, ok := value.([]interface{})
	require.True(t, ok, "expected a list, got %T", value)
	out := make([]int64, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case float64:
			out[i] = int64(v)
		case map[string]interface{}:
			out[i] = int64(v["id"].(float64))
		}
	}
	return out
}

func data(payload map[string]interface{}) map[string]interface{} {
	m, _ := payload["data"].(map[string]interface{})
	return m
}

func TestAnonymousRequestsAreGated(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(http.MethodGet, "/admin/creators", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))

	resp, payload := h.do(http.MethodGet, "/admin/api/creators", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("X-Redirect"))
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, "error", payload["toast"].(map[string]interface{})["type"])
	assert.Zero(t, h.crm.count("creators"))
}

func TestLogin(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		h := newHarness(t)
		resp, payload := h.do(http.MethodPost, "/auth/login", map[string]string{"email": "admin@x.com", "password": "nope"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid email or password", payload["error"])
		assert.Empty(t, h.cookies["token"])
	})

	t.Run("admin lands in admin area", func(t *testing.T) {
		h := newHarness(t)
		h.login()

		resp, payload := h.do(http.MethodGet, "/portal/api/creators", nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "/admin/creators", resp.Header.Get("X-Redirect"))
		assert.Equal(t, false, payload["success"])

		resp, _ = h.do(http.MethodGet, "/admin/api/clients", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("logout clears the profile", func(t *testing.T) {
		h := newHarness(t)
		h.login()
		token := h.cookies["token"]

		resp, _ := h.do(http.MethodPost, "/auth/logout", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		h.cookies["token"] = token
		resp, _ = h.do(http.MethodGet, "/admin/api/clients", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("logout drops the page state", func(t *testing.T) {
		h := newHarness(t)
		h.login()
		h.do(http.MethodPost, "/admin/api/selection", map[string]interface{}{"creator_ids": []int64{2, 3}})
		resp, payload := h.do(http.MethodPost, "/admin/api/editor/select", map[string]string{"template_id": "t1"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, payload)
		page := h.cookies[middleware.PageCookie]
		require.NotEmpty(t, page)

		resp, _ = h.do(http.MethodPost, "/auth/logout", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		h.login()
		assert.Equal(t, page, h.cookies[middleware.PageCookie], "same browser")

		_, payload = h.do(http.MethodGet, "/admin/api/selection", nil)
		assert.Empty(t, data(payload)["selected"])
		_, payload = h.do(http.MethodGet, "/admin/api/editor", nil)
		assert.Empty(t, data(payload)["template_id"])
		assert.Empty(t, data(payload)["original"])
	})
}

func TestClientCreatorsMarksContacted(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, payload := h.do(http.MethodGet, "/admin/api/clients/7/creators?relationship_client_id=7", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, payload)

	rows := data(payload)["creators"].([]interface{})
	require.Len(t, rows, 2)
	contacted := map[int64]bool{}
	for _, row := range rows {
		m := row.(map[string]interface{})
		contacted[int64(m["id"].(float64))] = m["contacted"].(bool)
	}
	assert.Equal(t, map[int64]bool{1: true, 2: false}, contacted)
}

func TestSendOutreachRefusesContactedCreator(t *testing.T) {
	h := newHarness(t)
	h.login()

	req := map[string]interface{}{"client_id": 7, "creator_id": 1, "template_id": "t1"}
	resp, payload := h.do(http.MethodPost, "/admin/api/outreach/send", req)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Zero(t, h.crm.count("outreach"))

	req["force"] = true
	resp, _ = h.do(http.MethodPost, "/admin/api/outreach/send", req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, h.crm.count("outreach"))
}

func TestMassOutreachSelection(t *testing.T) {
	t.Run("success clears the sent ids", func(t *testing.T) {
		h := newHarness(t)
		h.login()

		resp, payload := h.do(http.MethodPost, "/admin/api/selection", map[string]interface{}{"creator_ids": []int64{2, 3}})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, []int64{2, 3}, ids(t, data(payload)["selected"]))

		resp, payload = h.do(http.MethodPost, "/admin/api/outreach/mass", map[string]interface{}{"client_id": 7, "template_id": "t1"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, payload)
		assert.Empty(t, data(payload)["selected"])

		var sent models.MassOutreachRequest
		require.NoError(t, json.Unmarshal(h.crm.body("mass-outreach"), &sent))
		assert.Equal(t, []int64{2, 3}, sent.CreatorIDs)
		assert.Equal(t, "t1", sent.TemplateID)
		assert.Empty(t, sent.Subject)
	})

	t.Run("failure keeps the selection", func(t *testing.T) {
		h := newHarness(t)
		h.login()
		h.crm.failWith("mass-outreach", fiber.StatusInternalServerError)

		h.do(http.MethodPost, "/admin/api/selection", map[string]interface{}{"creator_ids": []int64{2, 3}})
		resp, payload := h.do(http.MethodPost, "/admin/api/outreach/mass", map[string]interface{}{"client_id": 7, "template_id": "t1"})
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, payload["error"], "upstream refused")

		_, payload = h.do(http.MethodGet, "/admin/api/selection", nil)
		assert.Equal(t, []int64{2, 3}, ids(t, data(payload)["selected"]))
	})

	t.Run("nothing selected", func(t *testing.T) {
		h := newHarness(t)
		h.login()
		resp, _ := h.do(http.MethodPost, "/admin/api/outreach/mass", map[string]interface{}{"client_id": 7, "template_id": "t1"})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Zero(t, h.crm.count("mass-outreach"))
	})
}

func TestDeleteCreatorSplicesListing(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, payload := h.do(http.MethodGet, "/admin/api/creators", nil)
	require.Equal(t, []int64{1, 2, 3}, ids(t, payload["data"]))

	h.crm.failWith("delete", fiber.StatusInternalServerError)
	resp, _ := h.do(http.MethodDelete, "/admin/api/creators/2", nil)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	_, payload = h.do(http.MethodGet, "/admin/api/creators", nil)
	assert.Equal(t, []int64{1, 2, 3}, ids(t, payload["data"]))

	h.crm.failWith("delete", 0)
	resp, _ = h.do(http.MethodDelete, "/admin/api/creators/2", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, payload = h.do(http.MethodGet, "/admin/api/creators", nil)
	assert.Equal(t, []int64{1, 3}, ids(t, payload["data"]))
	assert.Equal(t, 1, h.crm.count("creators"))
}

func TestTemplateEditor(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, _ := h.do(http.MethodPost, "/admin/api/editor/reset", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, payload := h.do(http.MethodPost, "/admin/api/editor/select", map[string]string{"template_id": "t1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, payload)

	_, payload = h.do(http.MethodPut, "/admin/api/editor/draft", map[string]string{
		"recipient": "Jane",
		"body":      "Hey ${creator_name}!",
	})
	view := data(payload)
	assert.Equal(t, "Hey Jane!", view["preview"].(map[string]interface{})["body"])
	assert.Equal(t, "Hi ${creator_name}", view["preview"].(map[string]interface{})["subject"])
	assert.Equal(t, "Dear ${creator_name}, let's talk.", view["original"].(map[string]interface{})["body"])
	assert.Equal(t, true, view["modified"])

	_, payload = h.do(http.MethodPost, "/admin/api/editor/reset", nil)
	assert.Equal(t, "Dear ${creator_name}, let's talk.", data(payload)["draft"].(map[string]interface{})["body"])

	resp, _ = h.do(http.MethodPost, "/admin/api/editor/select", map[string]string{"template_id": "missing"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInbox(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, payload := h.do(http.MethodGet, "/admin/api/inbox/7", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, payload)
	emails := data(payload)["emails"].([]interface{})
	require.Len(t, emails, 2)
	assert.Equal(t, "m2", emails[0].(map[string]interface{})["message_id"])
	assert.Equal(t, "Sounds good", emails[1].(map[string]interface{})["clean_reply"])

	_, payload = h.do(http.MethodGet, "/admin/api/inbox/7?search=rates", nil)
	assert.Len(t, data(payload)["emails"], 1)
	assert.Equal(t, 1, h.crm.count("inbox"))

	resp, _ = h.do(http.MethodPost, "/admin/api/inbox/7/refresh", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, h.crm.count("inbox"))

	resp, _ = h.do(http.MethodPost, "/admin/api/inbox/7/reply", map[string]string{"email_id": "3", "reply": "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = h.do(http.MethodPost, "/admin/api/inbox/7/reply", map[string]string{"email_id": "3", "reply": "Deal"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, h.crm.count("reply"))
}

func TestUnknownAPIRoute(t *testing.T) {
	h := newHarness(t)
	h.login()

	resp, payload := h.do(http.MethodGet, "/admin/api/nothing-here", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}
