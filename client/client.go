package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"creatorpulse/models"

	"github.com/valyala/fasthttp"
)

// Client talks to the CRM REST API. Every authenticated call takes the
// caller's Session explicitly; the client holds no credential of its own.
type Client struct {
	baseURL   string
	timeout   time.Duration
	http      *fasthttp.Client
	tokenHTTP *http.Client
}

type Option func(*Client)

// WithDialer routes all connections through dial. Used to reach an in-memory
// upstream in tests.
func WithDialer(dial func() (net.Conn, error)) Option {
	return func(c *Client) {
		c.http.Dial = func(string) (net.Conn, error) { return dial() }
		c.tokenHTTP.Transport = &http.Transport{
			DialContext: func(context.Context, string, string) (net.Conn, error) { return dial() },
		}
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "creatorpulse-portal",
			MaxConnsPerHost:     64,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		tokenHTTP: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the upstream root without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL builds an absolute upstream URL. It is also the cache key of reads.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	token  string
}

func (c *Client) do(ctx context.Context, r request, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	target := c.URL(r.path, r.query)
	req.SetRequestURI(target)
	req.Header.SetMethod(r.method)
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", r.method, r.path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", r.method, target, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return &FetchError{
			Method:     r.method,
			URL:        target,
			StatusCode: status,
			Body:       string(resp.Body()),
		}
	}

	if dst == nil {
		return nil
	}
	body := resp.Body()
	if len(body) == 0 {
		return &ParseError{URL: target, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ParseError{URL: target, Err: err}
	}
	if checker, ok := dst.(schemaChecker); ok {
		if err := checker.check(); err != nil {
			return &ParseError{URL: target, Err: err}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, sess *models.Session, path string, query url.Values, dst interface{}) error {
	return c.do(ctx, request{method: fasthttp.MethodGet, path: path, query: query, token: tokenOf(sess)}, dst)
}

func (c *Client) send(ctx context.Context, sess *models.Session, method, path string, body, dst interface{}) error {
	return c.do(ctx, request{method: method, path: path, body: body, token: tokenOf(sess)}, dst)
}

func tokenOf(sess *models.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Token
}

func detailFromBody(body []byte) string {
	var payload struct {
		Detail interface{} `json:"detail"`
		Msg    string      `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}
	return payload.Msg
}
