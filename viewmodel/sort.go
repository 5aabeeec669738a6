// Package viewmodel turns fetched collections into the rows a page renders.
//
// Every derivation is a pure function of the base collection and the page's
// predicates. Inputs are never modified; a fresh slice is returned.
package viewmodel

import (
	"net/mail"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder defaults anything unrecognised to Desc, the order lists open with.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(s, string(Asc)) {
		return Asc
	}
	return Desc
}

// SortStable sorts a copy of items by cmp, negated for Desc. Items comparing
// equal keep their relative order.
func SortStable[T any](items []T, cmp func(a, b T) int, order SortOrder) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		if order == Desc {
			return -cmp(a, b)
		}
		return cmp(a, b)
	})
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate accepts ISO timestamps as returned by the API and RFC 5322 mail dates.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := mail.ParseDate(s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// compareDates orders chronologically. An unparseable date is unordered
// against everything and compares equal, so stability keeps it in place.
func compareDates(a, b string) int {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if !okA || !okB {
		return 0
	}
	return ta.Compare(tb)
}

// textComparer returns a locale-aware comparison. Collators keep internal
// buffers, so each sort gets its own.
func textComparer() func(a, b string) int {
	c := collate.New(language.English)
	return c.CompareString
}
