package client

import (
	"errors"
	"fmt"
	"time"

	"creatorpulse/models"

	"github.com/stripe/stripe-go/v76"
)

// schemaChecker is implemented by response envelopes that need more than a
// successful json.Unmarshal to be trusted.
type schemaChecker interface {
	check() error
}

type creatorEmailsResponse struct {
	Emails *[]models.CreatorContact `json:"emails"`
}

func (r *creatorEmailsResponse) check() error {
	if r.Emails == nil {
		return errors.New(`missing "emails"`)
	}
	return nil
}

type tokenResponse models.TokenResponse

func (r *tokenResponse) check() error {
	if r.AccessToken == "" {
		return errors.New(`missing "access_token"`)
	}
	return nil
}

type profileResponse models.Profile

func (r *profileResponse) check() error {
	if r.Email == "" && r.ID == 0 {
		return errors.New("profile has neither id nor email")
	}
	return nil
}

type creatorList []models.Creator

func (l *creatorList) check() error {
	for i, creator := range *l {
		if creator.ID == 0 && creator.Name == "" {
			return fmt.Errorf("creator %d has neither id nor name", i)
		}
	}
	return nil
}

type emailList []models.Email

func (l *emailList) check() error {
	for i, email := range *l {
		if email.ID == "" {
			return fmt.Errorf("email %d has no id", i)
		}
	}
	return nil
}

type templateMap map[string]models.Template

func (m *templateMap) check() error {
	for id, tmpl := range *m {
		if tmpl.Body == "" && tmpl.Subject == "" {
			return fmt.Errorf("template %q has neither subject nor body", id)
		}
	}
	return nil
}

// checkoutResponse decodes through stripe's own unmarshaller, so a bare id
// string is accepted and then rejected for lacking a url.
type checkoutResponse struct {
	stripe.CheckoutSession
}

func (r *checkoutResponse) check() error {
	switch {
	case r.URL == "":
		return errors.New(`missing "url"`)
	case r.Status == stripe.CheckoutSessionStatusExpired || r.Status == stripe.CheckoutSessionStatusComplete:
		return fmt.Errorf("checkout session %s is %s", r.ID, r.Status)
	case r.ExpiresAt != 0 && time.Unix(r.ExpiresAt, 0).Before(time.Now()):
		return fmt.Errorf("checkout session %s expired at %s", r.ID, time.Unix(r.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}
	return nil
}
