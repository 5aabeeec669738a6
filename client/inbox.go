package client

import (
	"context"
	"fmt"

	"creatorpulse/models"

	"github.com/valyala/fasthttp"
)

// Inbox returns the raw inbox rows; duplicates are removed by the view-model.
func (c *Client) Inbox(ctx context.Context, sess *models.Session, clientID int64) ([]models.Email, error) {
	var emails emailList
	if err := c.get(ctx, sess, fmt.Sprintf("/admin/clients/%d/inbox", clientID), nil, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (c *Client) Reply(ctx context.Context, sess *models.Session, req models.ReplyRequest) error {
	return c.send(ctx, sess, fasthttp.MethodPost, "/admin/outreach/reply", req, nil)
}
