package viewmodel

import (
	"testing"

	"creatorpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func email(id, messageID, subject string) models.Email {
	return models.Email{ID: id, MessageID: messageID, Subject: subject}
}

func messageIDs(emails []models.Email) []string {
	ids := make([]string, len(emails))
	for i, e := range emails {
		ids[i] = e.MessageID
	}
	return ids
}

func TestDedupeEmails(t *testing.T) {
	in := []models.Email{
		email("1", "a", "Hi"),
		email("2", "a", "Hi (dup)"),
		email("3", "b", "Other"),
		email("4", "b", "Other (dup)"),
		email("5", "c", "Third"),
	}

	t.Run("first occurrence wins", func(t *testing.T) {
		out := DedupeEmails(in)
		require.Len(t, out, 3)
		assert.Equal(t, "Hi", out[0].Subject)
		assert.Equal(t, []string{"a", "b", "c"}, messageIDs(out))
	})

	t.Run("idempotent and never longer", func(t *testing.T) {
		once := DedupeEmails(in)
		assert.Equal(t, once, DedupeEmails(once))
		assert.LessOrEqual(t, len(once), len(in))
		seen := map[string]bool{}
		for _, e := range once {
			assert.False(t, seen[e.MessageID])
			seen[e.MessageID] = true
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		before := append([]models.Email(nil), in...)
		DedupeEmails(in)
		assert.Equal(t, before, in)
	})
}

func TestSearchEmails(t *testing.T) {
	body := "Let's talk about the Partnership"
	emails := []models.Email{
		{ID: "1", MessageID: "1", Subject: "Collab offer", To: "Jane Doe <JANE@x.com>", Snippet: "hello"},
		{ID: "2", MessageID: "2", Subject: "Re: rates", To: "bob@y.com", Snippet: "short", Body: &body},
		{ID: "3", MessageID: "3", Subject: "Invoice", To: "ops@z.com", Snippet: "partnership snippet"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"blank keeps all", "   ", []string{"1", "2", "3"}},
		{"subject case-insensitive", "COLLAB", []string{"1"}},
		{"recipient address", "jane@x", []string{"1"}},
		{"raw recipient header", "<jane@", []string{"1"}},
		{"recipient display name", "jane doe", []string{"1"}},
		{"body preferred over snippet", "partnership", []string{"2", "3"}},
		{"snippet ignored when body present", "short", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := messageIDs(SearchEmails(emails, tt.query))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterEmailStatus(t *testing.T) {
	emails := []models.Email{
		{MessageID: "1", Status: strPtr("replied")},
		{MessageID: "2"},
		{MessageID: "3", Status: strPtr("sent")},
	}
	assert.Equal(t, []string{"1", "2", "3"}, messageIDs(FilterEmailStatus(emails, EmailsAll)))
	assert.Equal(t, []string{"1"}, messageIDs(FilterEmailStatus(emails, EmailsReplied)))
	assert.Equal(t, []string{"2", "3"}, messageIDs(FilterEmailStatus(emails, EmailsUnreplied)))
}

func TestSearchAndStatusCommute(t *testing.T) {
	emails := []models.Email{
		{MessageID: "1", Subject: "deal", Status: strPtr("replied")},
		{MessageID: "2", Subject: "deal"},
		{MessageID: "3", Subject: "other", Status: strPtr("replied")},
		{MessageID: "4", Subject: "Deal again", Status: strPtr("replied")},
	}
	for _, status := range []EmailStatusFilter{EmailsAll, EmailsReplied, EmailsUnreplied} {
		a := FilterEmailStatus(SearchEmails(emails, "deal"), status)
		b := SearchEmails(FilterEmailStatus(emails, status), "deal")
		assert.ElementsMatch(t, messageIDs(a), messageIDs(b), string(status))
	}
}

func TestSortEmails(t *testing.T) {
	emails := []models.Email{
		{MessageID: "b", Subject: "beta", Date: "2024-03-02T10:00:00Z"},
		{MessageID: "a", Subject: "Alpha", Date: "2024-03-01T10:00:00Z"},
		{MessageID: "c", Subject: "gamma", Date: "Mon, 04 Mar 2024 09:00:00 +0000"},
	}

	assert.Equal(t, []string{"c", "b", "a"}, messageIDs(SortEmails(emails, EmailSortDate, Desc)))
	assert.Equal(t, []string{"a", "b", "c"}, messageIDs(SortEmails(emails, EmailSortDate, Asc)))
	assert.Equal(t, []string{"a", "b", "c"}, messageIDs(SortEmails(emails, EmailSortSubject, Asc)))
	assert.Equal(t, []string{"c", "b", "a"}, messageIDs(SortEmails(emails, EmailSortSubject, Desc)))
}

func TestSortEmails_Stable(t *testing.T) {
	emails := []models.Email{
		{MessageID: "first", Subject: "same", Date: "2024-01-01T00:00:00Z"},
		{MessageID: "x", Subject: "zzz", Date: "2024-06-01T00:00:00Z"},
		{MessageID: "second", Subject: "same", Date: "2024-01-01T00:00:00Z"},
	}
	for _, order := range []SortOrder{Asc, Desc} {
		out := messageIDs(SortEmails(emails, EmailSortSubject, order))
		assert.Less(t, indexOf(out, "first"), indexOf(out, "second"), "subject %s", order)

		out = messageIDs(SortEmails(emails, EmailSortDate, order))
		assert.Less(t, indexOf(out, "first"), indexOf(out, "second"), "date %s", order)
	}
}

func TestSortEmails_InvalidDatesKeepPosition(t *testing.T) {
	emails := []models.Email{
		{MessageID: "bad1", Date: "not a date"},
		{MessageID: "bad2", Date: ""},
	}
	assert.Equal(t, []string{"bad1", "bad2"}, messageIDs(SortEmails(emails, EmailSortDate, Desc)))
}

func TestDeriveInbox(t *testing.T) {
	emails := []models.Email{
		{ID: "1", MessageID: "a", Subject: "Hi", Date: "2024-01-01T00:00:00Z", Status: strPtr("replied")},
		{ID: "2", MessageID: "a", Subject: "Hi (dup)", Date: "2024-05-01T00:00:00Z"},
		{ID: "3", MessageID: "b", Subject: "Hi there", Date: "2024-02-01T00:00:00Z", Status: strPtr("replied")},
		{ID: "4", MessageID: "c", Subject: "Nope", Date: "2024-03-01T00:00:00Z", Status: strPtr("replied")},
	}

	out := DeriveInbox(emails, InboxView{Search: "hi", Status: EmailsReplied, SortBy: EmailSortDate, Order: Desc})
	require.Len(t, out, 2)
	assert.Equal(t, "3", out[0].ID)
	assert.Equal(t, "1", out[1].ID, "duplicate removed before filtering")
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}

func TestInboxViewNormalize(t *testing.T) {
	assert.Equal(t, InboxView{Status: EmailsAll, SortBy: EmailSortDate, Order: Desc}, InboxView{}.Normalize())

	view := InboxView{Search: "deal", Status: EmailsUnreplied, SortBy: EmailSortSubject, Order: "ASC"}.Normalize()
	assert.Equal(t, InboxView{Search: "deal", Status: EmailsUnreplied, SortBy: EmailSortSubject, Order: Asc}, view)

	assert.Equal(t, EmailsAll, InboxView{Status: "bogus"}.Normalize().Status)
}
