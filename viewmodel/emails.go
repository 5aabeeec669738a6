package viewmodel

import (
	"strings"

	"creatorpulse/models"
	"creatorpulse/utils"
)

type EmailStatusFilter string

const (
	EmailsAll       EmailStatusFilter = "all"
	EmailsReplied   EmailStatusFilter = "replied"
	EmailsUnreplied EmailStatusFilter = "unreplied"
)

type EmailSortField string

const (
	EmailSortDate    EmailSortField = "date"
	EmailSortSubject EmailSortField = "subject"
	EmailSortStatus  EmailSortField = "status"
)

// InboxView holds the inbox page's predicates.
type InboxView struct {
	Search string            `query:"search" json:"search"`
	Status EmailStatusFilter `query:"status" json:"status"`
	SortBy EmailSortField    `query:"sort_by" json:"sort_by"`
	Order  SortOrder         `query:"order" json:"order"`
}

// DedupeEmails keeps the first email seen for each message_id.
func DedupeEmails(emails []models.Email) []models.Email {
	seen := make(map[string]struct{}, len(emails))
	out := make([]models.Email, 0, len(emails))
	for _, email := range emails {
		if _, dup := seen[email.MessageID]; dup {
			continue
		}
		seen[email.MessageID] = struct{}{}
		out = append(out, email)
	}
	return out
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func containsFold(field, q string) bool {
	return strings.Contains(strings.ToLower(field), q)
}

// SearchEmails matches subject, recipient (bare address or the raw header
// with its display name) and body-or-snippet.
// A blank query keeps everything.
func SearchEmails(emails []models.Email, query string) []models.Email {
	q := normalizeQuery(query)
	if q == "" {
		return append([]models.Email(nil), emails...)
	}
	out := make([]models.Email, 0, len(emails))
	for _, email := range emails {
		if containsFold(email.Subject, q) ||
			strings.Contains(utils.AddressText(email.To), q) ||
			containsFold(email.To, q) ||
			containsFold(email.Text(), q) {
			out = append(out, email)
		}
	}
	return out
}

func FilterEmailStatus(emails []models.Email, status EmailStatusFilter) []models.Email {
	if status == "" || status == EmailsAll {
		return append([]models.Email(nil), emails...)
	}
	want := status == EmailsReplied
	out := make([]models.Email, 0, len(emails))
	for _, email := range emails {
		if email.Replied() == want {
			out = append(out, email)
		}
	}
	return out
}

func emailStatus(e models.Email) string {
	if e.Status == nil {
		return ""
	}
	return *e.Status
}

func SortEmails(emails []models.Email, field EmailSortField, order SortOrder) []models.Email {
	var cmp func(a, b models.Email) int
	switch field {
	case EmailSortSubject:
		text := textComparer()
		cmp = func(a, b models.Email) int { return text(a.Subject, b.Subject) }
	case EmailSortStatus:
		text := textComparer()
		cmp = func(a, b models.Email) int { return text(emailStatus(a), emailStatus(b)) }
	default:
		cmp = func(a, b models.Email) int { return compareDates(a.Date, b.Date) }
	}
	return SortStable(emails, cmp, order)
}

// Normalize fills in the defaults the inbox opens with: all emails, newest first.
func (v InboxView) Normalize() InboxView {
	switch v.Status {
	case EmailsReplied, EmailsUnreplied:
	default:
		v.Status = EmailsAll
	}
	switch v.SortBy {
	case EmailSortSubject, EmailSortStatus:
	default:
		v.SortBy = EmailSortDate
	}
	v.Order = ParseSortOrder(string(v.Order))
	return v
}

// DeriveInbox runs dedupe, search, status filter and sort, in that order.
func DeriveInbox(emails []models.Email, view InboxView) []models.Email {
	rows := DedupeEmails(emails)
	rows = SearchEmails(rows, view.Search)
	rows = FilterEmailStatus(rows, view.Status)
	return SortEmails(rows, view.SortBy, view.Order)
}
