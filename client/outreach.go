package client

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"creatorpulse/models"

	"github.com/valyala/fasthttp"
)

func (c *Client) OutreachLogs(ctx context.Context, sess *models.Session, clientID int64) ([]models.OutreachLog, error) {
	var logs []models.OutreachLog
	query := url.Values{"client_id": {strconv.FormatInt(clientID, 10)}}
	if err := c.get(ctx, sess, "/admin/logs", query, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Templates returns the templates sorted by id, with ID filled from the map key.
func (c *Client) Templates(ctx context.Context, sess *models.Session) ([]models.Template, error) {
	var byID templateMap
	if err := c.get(ctx, sess, "/admin/templates", nil, &byID); err != nil {
		return nil, err
	}
	templates := make([]models.Template, 0, len(byID))
	for id, tmpl := range byID {
		tmpl.ID = id
		templates = append(templates, tmpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, nil
}

func (c *Client) SendOutreach(ctx context.Context, sess *models.Session, req models.OutreachRequest) error {
	return c.send(ctx, sess, fasthttp.MethodPost, "/admin/outreach", req, nil)
}

func (c *Client) SendMassOutreach(ctx context.Context, sess *models.Session, req models.MassOutreachRequest) error {
	return c.send(ctx, sess, fasthttp.MethodPost, "/admin/mass-outreach", req, nil)
}
