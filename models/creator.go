package models

import "strconv"

// OnboardingStage is the creator's position in the onboarding pipeline
type OnboardingStage string

const (
	StageInitial        OnboardingStage = "initial"
	StageContacted      OnboardingStage = "contacted"
	StageNegotiating    OnboardingStage = "negotiating"
	StageContractSent   OnboardingStage = "contract_sent"
	StageContractSigned OnboardingStage = "contract_signed"
	StagePaymentSetup   OnboardingStage = "payment_setup"
	StageCompleted      OnboardingStage = "completed"
)

// OnboardingStages lists the stages in pipeline order.
var OnboardingStages = []OnboardingStage{
	StageInitial,
	StageContacted,
	StageNegotiating,
	StageContractSent,
	StageContractSigned,
	StagePaymentSetup,
	StageCompleted,
}

func (s OnboardingStage) Valid() bool {
	for _, stage := range OnboardingStages {
		if s == stage {
			return true
		}
	}
	return false
}

// ClientStatus is the per-tenant relationship a creator has with one client.
// Since is kept as sent: the API emits naive timestamps without a zone.
type ClientStatus struct {
	Status string  `json:"status"`
	Since  string  `json:"since,omitempty"`
	Notes  *string `json:"notes"`
}

// Creator represents a social-media profile tracked by the CRM
type Creator struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email,omitempty"` // single-address shape used by the payments listing
	Emails          []string `json:"emails"`
	ProfileURLs     []string `json:"profile_urls"`
	Platforms       []string `json:"platforms"`
	Niche           string   `json:"niche,omitempty"`
	TwitterID       *string  `json:"twitter_id,omitempty"`
	TwitterUsername *string  `json:"twitter_username,omitempty"`

	// Status
	IsActive              bool            `json:"is_active"`
	StatusNotes           *string         `json:"status_notes"`
	StatusUpdatedAt       string          `json:"status_updated_at,omitempty"`
	OnboardingStage       OnboardingStage `json:"onboarding_stage,omitempty"`
	OnboardingCompletedAt string          `json:"onboarding_completed_at,omitempty"`
	ContractSigned        bool            `json:"contract_signed"`
	PaymentSetupCompleted bool            `json:"payment_setup_completed"`

	// Keyed by client id. A missing key means no relationship was recorded,
	// which is not the same as an explicit "inactive" status.
	ClientStatuses map[string]ClientStatus `json:"client_statuses"`
}

// PrimaryEmail returns the address shown in listings.
func (c Creator) PrimaryEmail() string {
	if c.Email != "" {
		return c.Email
	}
	if len(c.Emails) > 0 {
		return c.Emails[0]
	}
	return ""
}

// ClientStatusFor looks up the relationship with a client.
func (c Creator) ClientStatusFor(clientID int64) (ClientStatus, bool) {
	if c.ClientStatuses == nil {
		return ClientStatus{}, false
	}
	status, ok := c.ClientStatuses[ClientKey(clientID)]
	return status, ok
}

// ClientKey string-coerces a client id into a client_statuses key.
func ClientKey(clientID int64) string {
	return strconv.FormatInt(clientID, 10)
}

// CreatorContact is one entry of the batch email lookup.
type CreatorContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreatorFilters are the server-side predicates of the creators listing.
// Nil fields are not sent.
type CreatorFilters struct {
	IsActive              *bool            `query:"is_active"`
	OnboardingStage       *OnboardingStage `query:"onboarding_stage"`
	ContractSigned        *bool            `query:"contract_signed"`
	PaymentSetupCompleted *bool            `query:"payment_setup_completed"`
	ClientID              *int64           `query:"client_id"`
	ClientStatus          *string          `query:"client_status"`
	Search                string           `query:"search"`
}
