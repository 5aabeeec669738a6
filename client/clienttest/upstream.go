// Package clienttest runs a fake CRM API in memory for tests.
package clienttest

import (
	"testing"
	"time"

	"creatorpulse/client"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttputil"
)

const BaseURL = "http://upstream.test"

// NewUpstream serves the routes registered by setup on an in-memory listener
// and returns a Client wired to it.
func NewUpstream(t testing.TB, setup func(app *fiber.App)) *client.Client {
	t.Helper()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	setup(app)

	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() {
		_ = app.ShutdownWithTimeout(time.Second)
		_ = ln.Close()
	})

	return client.New(BaseURL, 2*time.Second, client.WithDialer(ln.Dial))
}

// Bearer returns the token the request was sent with.
func Bearer(c *fiber.Ctx) string {
	const prefix = "Bearer "
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}
