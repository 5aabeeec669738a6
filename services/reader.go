package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"creatorpulse/cache"
	"creatorpulse/client"
	"creatorpulse/models"
)

// Reader serves every read through the fetch cache. Reads that depend on a
// selection take a pointer; nil means nothing is selected yet and no request
// is made.
type Reader struct {
	api     *client.Client
	fetcher *cache.Fetcher
}

func NewReader(api *client.Client, fetcher *cache.Fetcher) *Reader {
	return &Reader{api: api, fetcher: fetcher}
}

func scope(sess *models.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Email
}

func (r *Reader) key(sess *models.Session, tag, path string, query url.Values) *cache.Key {
	return cache.NewKey(tag, scope(sess), r.api.URL(path, query))
}

// CreatorsKey is the cache key of a filtered creators listing.
func (r *Reader) CreatorsKey(sess *models.Session, filters models.CreatorFilters) *cache.Key {
	return r.key(sess, cache.TagCreators, "/admin/creators", client.CreatorsQuery(filters))
}

func (r *Reader) Clients(ctx context.Context, sess *models.Session) ([]models.Client, error) {
	clients := []models.Client{}
	err := r.fetcher.Fetch(ctx, r.key(sess, cache.TagClients, "/admin/clients", nil), &clients,
		func(ctx context.Context) (interface{}, error) { return r.api.ListClients(ctx, sess) })
	return clients, err
}

func (r *Reader) Creators(ctx context.Context, sess *models.Session, filters models.CreatorFilters) ([]models.Creator, error) {
	creators := []models.Creator{}
	err := r.fetcher.Fetch(ctx, r.CreatorsKey(sess, filters), &creators,
		func(ctx context.Context) (interface{}, error) { return r.api.ListCreators(ctx, sess, filters) })
	return creators, err
}

func (r *Reader) Creator(ctx context.Context, sess *models.Session, creatorID int64) (models.Creator, error) {
	var creator models.Creator
	key := r.key(sess, cache.TagCreators, fmt.Sprintf("/admin/creators/%d/status", creatorID), nil)
	err := r.fetcher.Fetch(ctx, key, &creator,
		func(ctx context.Context) (interface{}, error) { return r.api.GetCreatorStatus(ctx, sess, creatorID) })
	return creator, err
}

func (r *Reader) ClientCreators(ctx context.Context, sess *models.Session, clientID *int64, platform string) ([]models.Creator, error) {
	creators := []models.Creator{}
	var key *cache.Key
	if clientID != nil {
		var query url.Values
		if platform != "" {
			query = url.Values{"platform": {platform}}
		}
		key = r.key(sess, cache.TagCreators, fmt.Sprintf("/admin/clients/%d/creators", *clientID), query)
	}
	err := r.fetcher.Fetch(ctx, key, &creators, func(ctx context.Context) (interface{}, error) {
		return r.api.ClientCreators(ctx, sess, *clientID, platform)
	})
	return creators, err
}

func (r *Reader) OutreachLogs(ctx context.Context, sess *models.Session, clientID *int64) ([]models.OutreachLog, error) {
	logs := []models.OutreachLog{}
	var key *cache.Key
	if clientID != nil {
		key = r.key(sess, cache.TagLogs, "/admin/logs", url.Values{"client_id": {strconv.FormatInt(*clientID, 10)}})
	}
	err := r.fetcher.Fetch(ctx, key, &logs, func(ctx context.Context) (interface{}, error) {
		return r.api.OutreachLogs(ctx, sess, *clientID)
	})
	return logs, err
}

func (r *Reader) Templates(ctx context.Context, sess *models.Session) ([]models.Template, error) {
	templates := []models.Template{}
	err := r.fetcher.Fetch(ctx, r.key(sess, cache.TagTemplates, "/admin/templates", nil), &templates,
		func(ctx context.Context) (interface{}, error) { return r.api.Templates(ctx, sess) })
	return templates, err
}

// Template looks up one template by id.
func (r *Reader) Template(ctx context.Context, sess *models.Session, id string) (models.Template, bool, error) {
	templates, err := r.Templates(ctx, sess)
	if err != nil {
		return models.Template{}, false, err
	}
	for _, t := range templates {
		if t.ID == id {
			return t, true, nil
		}
	}
	return models.Template{}, false, nil
}

func (r *Reader) InboxKey(sess *models.Session, clientID *int64) *cache.Key {
	if clientID == nil {
		return nil
	}
	return r.key(sess, cache.TagInbox, fmt.Sprintf("/admin/clients/%d/inbox", *clientID), nil)
}

func (r *Reader) Inbox(ctx context.Context, sess *models.Session, clientID *int64) ([]models.Email, error) {
	emails := []models.Email{}
	err := r.fetcher.Fetch(ctx, r.InboxKey(sess, clientID), &emails, func(ctx context.Context) (interface{}, error) {
		return r.api.Inbox(ctx, sess, *clientID)
	})
	return emails, err
}

func (r *Reader) Tweets(ctx context.Context, sess *models.Session) ([]models.Tweet, error) {
	tweets := []models.Tweet{}
	err := r.fetcher.Fetch(ctx, r.key(sess, cache.TagTweets, "/admin/tweets", nil), &tweets,
		func(ctx context.Context) (interface{}, error) { return r.api.Tweets(ctx, sess) })
	return tweets, err
}

func (r *Reader) Replies(ctx context.Context, sess *models.Session, tweetID *int64) ([]models.TweetReply, error) {
	replies := []models.TweetReply{}
	var key *cache.Key
	if tweetID != nil {
		key = r.key(sess, cache.TagReplies, fmt.Sprintf("/admin/tweets/%d/replies", *tweetID), nil)
	}
	err := r.fetcher.Fetch(ctx, key, &replies, func(ctx context.Context) (interface{}, error) {
		return r.api.TweetReplies(ctx, sess, *tweetID)
	})
	return replies, err
}

func (r *Reader) PortalCreators(ctx context.Context, sess *models.Session, hasEmail, hasURL bool) ([]models.Creator, error) {
	query := url.Values{}
	if hasEmail {
		query.Set("has_email", "true")
	}
	if hasURL {
		query.Set("has_url", "true")
	}
	creators := []models.Creator{}
	err := r.fetcher.Fetch(ctx, r.key(sess, cache.TagCreators, "/creators/", query), &creators,
		func(ctx context.Context) (interface{}, error) { return r.api.PortalCreators(ctx, sess, hasEmail, hasURL) })
	return creators, err
}
