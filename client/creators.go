package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"creatorpulse/models"

	"github.com/valyala/fasthttp"
)

func (c *Client) ListClients(ctx context.Context, sess *models.Session) ([]models.Client, error) {
	var clients []models.Client
	if err := c.get(ctx, sess, "/admin/clients", nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// CreatorsQuery encodes the non-nil filters in the order the API documents them.
func CreatorsQuery(f models.CreatorFilters) url.Values {
	query := url.Values{}
	if f.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*f.IsActive))
	}
	if f.OnboardingStage != nil {
		query.Set("onboarding_stage", string(*f.OnboardingStage))
	}
	if f.ContractSigned != nil {
		query.Set("contract_signed", strconv.FormatBool(*f.ContractSigned))
	}
	if f.PaymentSetupCompleted != nil {
		query.Set("payment_setup_completed", strconv.FormatBool(*f.PaymentSetupCompleted))
	}
	if f.ClientID != nil {
		query.Set("client_id", strconv.FormatInt(*f.ClientID, 10))
	}
	if f.ClientStatus != nil {
		query.Set("client_status", *f.ClientStatus)
	}
	if f.Search != "" {
		query.Set("search", f.Search)
	}
	return query
}

func (c *Client) ListCreators(ctx context.Context, sess *models.Session, filters models.CreatorFilters) ([]models.Creator, error) {
	var creators creatorList
	if err := c.get(ctx, sess, "/admin/creators", CreatorsQuery(filters), &creators); err != nil {
		return nil, err
	}
	return creators, nil
}

func (c *Client) GetCreatorStatus(ctx context.Context, sess *models.Session, creatorID int64) (models.Creator, error) {
	var creator models.Creator
	err := c.get(ctx, sess, fmt.Sprintf("/admin/creators/%d/status", creatorID), nil, &creator)
	return creator, err
}

func (c *Client) UpdateCreatorStatus(ctx context.Context, sess *models.Session, creatorID int64, update models.StatusUpdate) error {
	return c.send(ctx, sess, fasthttp.MethodPut, fmt.Sprintf("/admin/creators/%d/status", creatorID), update, nil)
}

func (c *Client) UpdateClientStatus(ctx context.Context, sess *models.Session, creatorID, clientID int64, update models.ClientStatusUpdate) error {
	path := fmt.Sprintf("/admin/creators/%d/client-status/%d", creatorID, clientID)
	return c.send(ctx, sess, fasthttp.MethodPut, path, update, nil)
}

// UpdateOnboarding returns the creator as echoed by the API.
func (c *Client) UpdateOnboarding(ctx context.Context, sess *models.Session, creatorID int64, update models.OnboardingUpdate) (models.Creator, error) {
	var creator models.Creator
	err := c.send(ctx, sess, fasthttp.MethodPut, fmt.Sprintf("/admin/creators/%d/onboarding", creatorID), update, &creator)
	return creator, err
}

func (c *Client) DeleteCreator(ctx context.Context, sess *models.Session, creatorID int64) error {
	return c.send(ctx, sess, fasthttp.MethodDelete, fmt.Sprintf("/admin/creators/%d", creatorID), nil, nil)
}

func (c *Client) CreatorEmails(ctx context.Context, sess *models.Session, creatorIDs []int64) ([]models.CreatorContact, error) {
	var resp creatorEmailsResponse
	body := map[string][]int64{"creator_ids": creatorIDs}
	if err := c.send(ctx, sess, fasthttp.MethodPost, "/admin/creators/emails", body, &resp); err != nil {
		return nil, err
	}
	return *resp.Emails, nil
}

func (c *Client) MarkContacted(ctx context.Context, sess *models.Session, req models.MarkContactedRequest) error {
	return c.send(ctx, sess, fasthttp.MethodPost, "/admin/creators/mark-contacted", req, nil)
}

// ClientCreators lists creators discovered for one client, optionally for a single platform.
func (c *Client) ClientCreators(ctx context.Context, sess *models.Session, clientID int64, platform string) ([]models.Creator, error) {
	var query url.Values
	if platform != "" {
		query = url.Values{"platform": {platform}}
	}
	var creators creatorList
	if err := c.get(ctx, sess, fmt.Sprintf("/admin/clients/%d/creators", clientID), query, &creators); err != nil {
		return nil, err
	}
	return creators, nil
}

// PortalCreators is the non-admin discovery listing. A body that is not a
// JSON array is treated as an empty listing.
func (c *Client) PortalCreators(ctx context.Context, sess *models.Session, hasEmail, hasURL bool) ([]models.Creator, error) {
	query := url.Values{}
	if hasEmail {
		query.Set("has_email", "true")
	}
	if hasURL {
		query.Set("has_url", "true")
	}
	var creators creatorList
	err := c.get(ctx, sess, "/creators/", query, &creators)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			return []models.Creator{}, nil
		}
		return nil, err
	}
	return creators, nil
}
