package client

import (
	"context"
	"fmt"
	"net/url"

	"creatorpulse/models"

	"github.com/valyala/fasthttp"
)

func (c *Client) Tweets(ctx context.Context, sess *models.Session) ([]models.Tweet, error) {
	var tweets []models.Tweet
	if err := c.get(ctx, sess, "/admin/tweets", nil, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (c *Client) PostTweet(ctx context.Context, sess *models.Session, content string) error {
	return c.send(ctx, sess, fasthttp.MethodPost, "/admin/tweets", map[string]string{"content": content}, nil)
}

func (c *Client) TweetReplies(ctx context.Context, sess *models.Session, tweetID int64) ([]models.TweetReply, error) {
	var replies []models.TweetReply
	if err := c.get(ctx, sess, fmt.Sprintf("/admin/tweets/%d/replies", tweetID), nil, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// ProcessReply asks the API to convert the reply's author into a Creator.
func (c *Client) ProcessReply(ctx context.Context, sess *models.Session, tweetID int64, replyID string) error {
	path := fmt.Sprintf("/admin/tweets/%d/replies/%s/process", tweetID, url.PathEscape(replyID))
	return c.send(ctx, sess, fasthttp.MethodPost, path, nil, nil)
}

func (c *Client) SendDM(ctx context.Context, sess *models.Session, dm models.DirectMessage) error {
	return c.send(ctx, sess, fasthttp.MethodPost, "/admin/twitter/dm", dm, nil)
}
