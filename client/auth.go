package client

import (
	"context"
	"errors"

	"creatorpulse/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/valyala/fasthttp"
	"golang.org/x/oauth2"
)

// Login exchanges email and password for an access token using the
// form-encoded password grant on /token.
func (c *Client) Login(ctx context.Context, email, password string) (models.TokenResponse, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.URL("/token", nil),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenHTTP)

	token, err := conf.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return models.TokenResponse{}, &FetchError{
				Method:     fasthttp.MethodPost,
				URL:        conf.Endpoint.TokenURL,
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
			}
		}
		return models.TokenResponse{}, err
	}
	return models.TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType}, nil
}

// Me fetches the profile behind a token.
func (c *Client) Me(ctx context.Context, token string) (models.Profile, error) {
	var profile profileResponse
	err := c.do(ctx, request{method: fasthttp.MethodGet, path: "/users/me", token: token}, &profile)
	return models.Profile(profile), err
}

func (c *Client) Signup(ctx context.Context, email, password string) (models.TokenResponse, error) {
	var resp tokenResponse
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, request{method: fasthttp.MethodPost, path: "/signup", body: body}, &resp)
	return models.TokenResponse(resp), err
}

// CreateCheckoutSession starts a Stripe checkout for plan. Sessions that are
// already expired or completed are reported as a ParseError.
func (c *Client) CreateCheckoutSession(ctx context.Context, sess *models.Session, plan string) (*stripe.CheckoutSession, error) {
	var resp checkoutResponse
	body := map[string]string{"plan": plan}
	if err := c.send(ctx, sess, fasthttp.MethodPost, "/create-checkout-session", body, &resp); err != nil {
		return nil, err
	}
	return &resp.CheckoutSession, nil
}
