package services

import (
	"context"
	"fmt"
	"strings"

	"creatorpulse/cache"
	"creatorpulse/client"
	"creatorpulse/models"
	"creatorpulse/state"
	"creatorpulse/utils"
)

// TwitterService backs the Twitter panel.
type TwitterService struct {
	api     *client.Client
	fetcher *cache.Fetcher
	reader  *Reader
	audit   AuditRecorder
}

func NewTwitterService(api *client.Client, fetcher *cache.Fetcher, reader *Reader, audit AuditRecorder) *TwitterService {
	if audit == nil {
		audit = NewAuditRecorder(nil)
	}
	return &TwitterService{api: api, fetcher: fetcher, reader: reader, audit: audit}
}

func (s *TwitterService) Tweets(ctx context.Context, sess *models.Session) ([]models.Tweet, error) {
	return s.reader.Tweets(ctx, sess)
}

// Replies lists the replies of the selected tweet; nil selects nothing.
func (s *TwitterService) Replies(ctx context.Context, sess *models.Session, tweetID *int64) ([]models.TweetReply, error) {
	return s.reader.Replies(ctx, sess, tweetID)
}

func (s *TwitterService) PostTweet(ctx context.Context, sess *models.Session, page *state.Page, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	done, err := page.Flags.TryBegin("tweet")
	if err != nil {
		return err
	}
	defer done()

	if err := s.api.PostTweet(ctx, sess, content); err != nil {
		return fmt.Errorf("post tweet: %w", err)
	}
	s.fetcher.Invalidate(cache.TagTweets)
	s.audit.Record(ctx, models.AuditEntry{Actor: scope(sess), Action: "post_tweet"})
	return nil
}

// ProcessReply converts a reply's author into a creator. It is one-way: a
// reply that is already processed is refused before any request is made.
func (s *TwitterService) ProcessReply(ctx context.Context, sess *models.Session, page *state.Page, tweetID int64, replyID string) error {
	replies, err := s.reader.Replies(ctx, sess, &tweetID)
	if err != nil {
		return fmt.Errorf("load replies of tweet %d: %w", tweetID, err)
	}
	var reply *models.TweetReply
	for i := range replies {
		if replies[i].ReplyID == replyID {
			reply = &replies[i]
			break
		}
	}
	if reply == nil {
		return ErrReplyNotFound
	}
	if reply.Processed {
		return ErrAlreadyProcessed
	}

	done, err := page.Flags.TryBegin("process:" + replyID)
	if err != nil {
		return err
	}
	defer done()

	if err := s.api.ProcessReply(ctx, sess, tweetID, replyID); err != nil {
		return fmt.Errorf("process reply %s: %w", replyID, err)
	}
	s.fetcher.Invalidate(cache.TagReplies, cache.TagCreators)
	s.audit.Record(ctx, models.AuditEntry{Actor: scope(sess), Action: "process_reply", Detail: replyID})
	return nil
}

// SendDM is fire-and-forget: success means the API accepted the message.
func (s *TwitterService) SendDM(ctx context.Context, sess *models.Session, page *state.Page, dm models.DirectMessage) error {
	dm.Message = strings.TrimSpace(dm.Message)
	if dm.Message == "" {
		return ErrEmptyMessage
	}
	if err := utils.ValidateStruct(dm); err != nil {
		return err
	}
	done, err := page.Flags.TryBegin("dm:" + dm.UserID)
	if err != nil {
		return err
	}
	defer done()

	if err := s.api.SendDM(ctx, sess, dm); err != nil {
		return fmt.Errorf("send dm to %s: %w", dm.UserID, err)
	}
	s.audit.Record(ctx, models.AuditEntry{Actor: scope(sess), Action: "send_dm", Detail: dm.UserID})
	return nil
}
