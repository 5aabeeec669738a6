package services

import (
	"context"

	"creatorpulse/cache"
	"creatorpulse/models"
	"creatorpulse/utils"
	"creatorpulse/viewmodel"
)

// EmailRow is an inbox row ready to render.
type EmailRow struct {
	models.Email
	CleanReply string `json:"clean_reply,omitempty"`
}

// InboxService derives the inbox page from the cached inbox read.
type InboxService struct {
	reader  *Reader
	fetcher *cache.Fetcher
}

func NewInboxService(reader *Reader, fetcher *cache.Fetcher) *InboxService {
	return &InboxService{reader: reader, fetcher: fetcher}
}

// Emails returns the derived inbox for clientID, or nothing when no client is selected.
func (s *InboxService) Emails(ctx context.Context, sess *models.Session, clientID *int64, view viewmodel.InboxView) ([]EmailRow, error) {
	emails, err := s.reader.Inbox(ctx, sess, clientID)
	if err != nil {
		return nil, err
	}
	return rows(viewmodel.DeriveInbox(emails, view)), nil
}

// Refresh drops the cached inbox of one client so the next read goes upstream.
func (s *InboxService) Refresh(sess *models.Session, clientID *int64) error {
	return s.fetcher.Forget(s.reader.InboxKey(sess, clientID))
}

func rows(emails []models.Email) []EmailRow {
	out := make([]EmailRow, len(emails))
	for i, email := range emails {
		out[i] = EmailRow{Email: email}
		if email.Reply != nil {
			out[i].CleanReply = utils.CleanReplyContent(*email.Reply)
		}
	}
	return out
}
