package viewmodel

import (
	"strings"

	"creatorpulse/models"
)

type PresenceFilter string

const (
	PresenceAll PresenceFilter = "all"
	WithEmail   PresenceFilter = "withEmail"
	WithProfile PresenceFilter = "withProfile"
)

type ActiveFilter string

const (
	ActiveAll ActiveFilter = "all"
	Active    ActiveFilter = "active"
	Inactive  ActiveFilter = "inactive"
)

// CreatorView holds the creators page's predicates. ClientID, when set,
// restricts the list to creators with a recorded relationship to that client.
type CreatorView struct {
	Search   string         `query:"search"`
	Presence PresenceFilter `query:"presence"`
	ClientID *int64         `query:"client_id"`
	SortBy   string         `query:"sort_by"`
	Order    SortOrder      `query:"order"`
}

// PaymentsView holds the payments page's predicates. An empty Stage means all stages.
type PaymentsView struct {
	Search   string                 `query:"search"`
	Active   ActiveFilter           `query:"status"`
	Stage    models.OnboardingStage `query:"stage"`
	ClientID *int64                 `query:"client_id"`
}

// SearchCreators matches the name or any of the creator's addresses.
func SearchCreators(creators []models.Creator, query string) []models.Creator {
	q := normalizeQuery(query)
	if q == "" {
		return append([]models.Creator(nil), creators...)
	}
	out := make([]models.Creator, 0, len(creators))
	for _, creator := range creators {
		if matchesCreator(creator, q) {
			out = append(out, creator)
		}
	}
	return out
}

func matchesCreator(c models.Creator, q string) bool {
	if containsFold(c.Name, q) || containsFold(c.Email, q) {
		return true
	}
	for _, email := range c.Emails {
		if containsFold(email, q) {
			return true
		}
	}
	return false
}

func FilterCreatorPresence(creators []models.Creator, presence PresenceFilter) []models.Creator {
	return filterCreators(creators, func(c models.Creator) bool {
		switch presence {
		case WithEmail:
			return len(c.Emails) > 0
		case WithProfile:
			return len(c.ProfileURLs) > 0
		default:
			return true
		}
	})
}

func FilterActive(creators []models.Creator, active ActiveFilter) []models.Creator {
	return filterCreators(creators, func(c models.Creator) bool {
		switch active {
		case Active:
			return c.IsActive
		case Inactive:
			return !c.IsActive
		default:
			return true
		}
	})
}

func FilterStage(creators []models.Creator, stage models.OnboardingStage) []models.Creator {
	return filterCreators(creators, func(c models.Creator) bool {
		return stage == "" || c.OnboardingStage == stage
	})
}

// FilterClientRelationship keeps creators whose client_statuses has a key for
// clientID. A nil clientID keeps everything.
func FilterClientRelationship(creators []models.Creator, clientID *int64) []models.Creator {
	return filterCreators(creators, func(c models.Creator) bool {
		if clientID == nil {
			return true
		}
		_, ok := c.ClientStatusFor(*clientID)
		return ok
	})
}

func filterCreators(creators []models.Creator, keep func(models.Creator) bool) []models.Creator {
	out := make([]models.Creator, 0, len(creators))
	for _, creator := range creators {
		if keep(creator) {
			out = append(out, creator)
		}
	}
	return out
}

// SortCreators orders by name, or by onboarding stage in pipeline order.
func SortCreators(creators []models.Creator, field string, order SortOrder) []models.Creator {
	switch field {
	case "name":
		text := textComparer()
		return SortStable(creators, func(a, b models.Creator) int { return text(a.Name, b.Name) }, order)
	case "stage":
		return SortStable(creators, func(a, b models.Creator) int {
			return stageIndex(a.OnboardingStage) - stageIndex(b.OnboardingStage)
		}, order)
	default:
		return append([]models.Creator(nil), creators...)
	}
}

func stageIndex(stage models.OnboardingStage) int {
	for i, s := range models.OnboardingStages {
		if s == stage {
			return i
		}
	}
	return -1
}

// DeriveCreators runs search, presence filter, client relationship and sort.
func DeriveCreators(creators []models.Creator, view CreatorView) []models.Creator {
	rows := SearchCreators(creators, view.Search)
	rows = FilterCreatorPresence(rows, view.Presence)
	rows = FilterClientRelationship(rows, view.ClientID)
	return SortCreators(rows, view.SortBy, view.Order)
}

// DerivePayments filters the payments listing. Search there covers the name
// and the primary address only.
func DerivePayments(creators []models.Creator, view PaymentsView) []models.Creator {
	q := normalizeQuery(view.Search)
	rows := filterCreators(creators, func(c models.Creator) bool {
		return q == "" || containsFold(c.Name, q) || containsFold(c.PrimaryEmail(), q)
	})
	rows = FilterActive(rows, view.Active)
	rows = FilterStage(rows, view.Stage)
	return FilterClientRelationship(rows, view.ClientID)
}

// ContactedSet derives which creators already have an outreach log row.
func ContactedSet(logs []models.OutreachLog) map[int64]bool {
	contacted := make(map[int64]bool, len(logs))
	for _, log := range logs {
		contacted[log.CreatorID] = true
	}
	return contacted
}

// CreatorRow is a creator annotated for rendering.
type CreatorRow struct {
	models.Creator
	Contacted bool `json:"contacted"`
}

// Annotate marks each creator with whether it appears in contacted.
func Annotate(creators []models.Creator, contacted map[int64]bool) []CreatorRow {
	rows := make([]CreatorRow, len(creators))
	for i, c := range creators {
		rows[i] = CreatorRow{Creator: c, Contacted: contacted[c.ID]}
	}
	return rows
}

// ParsePresence maps the query value to a filter, defaulting to all.
func ParsePresence(s string) PresenceFilter {
	switch PresenceFilter(strings.TrimSpace(s)) {
	case WithEmail:
		return WithEmail
	case WithProfile:
		return WithProfile
	default:
		return PresenceAll
	}
}
