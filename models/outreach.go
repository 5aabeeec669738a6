package models

// OutreachLog is one recorded outreach attempt.
type OutreachLog struct {
	ID          int64   `json:"id,omitempty"`
	CreatorID   int64   `json:"creator_id"`
	ClientID    int64   `json:"client_id,omitempty"`
	ContactedAt string  `json:"contacted_at"` // naive, as stored upstream
	Status      string  `json:"status"`
	Reply       *string `json:"reply,omitempty"`
}

// OutreachRequest asks the API to email a single creator. Either TemplateID or
// Subject/Body is set; with a template the API resolves the text itself.
type OutreachRequest struct {
	ClientID   int64  `json:"client_id" validate:"required"`
	CreatorID  int64  `json:"creator_id" validate:"required"`
	TemplateID string `json:"template_id,omitempty"`
	Subject    string `json:"subject,omitempty" validate:"required_without=TemplateID"`
	Body       string `json:"body,omitempty" validate:"required_without=TemplateID"`
	Force      bool   `json:"-"`
}

// MassOutreachRequest is the batched form of OutreachRequest.
type MassOutreachRequest struct {
	ClientID   int64   `json:"client_id" validate:"required"`
	CreatorIDs []int64 `json:"creator_ids" validate:"required,min=1"`
	TemplateID string  `json:"template_id,omitempty"`
	Subject    string  `json:"subject,omitempty" validate:"required_without=TemplateID"`
	Body       string  `json:"body,omitempty" validate:"required_without=TemplateID"`
}

// MarkContactedRequest records outreach without sending mail.
type MarkContactedRequest struct {
	ClientID   int64   `json:"client_id" validate:"required"`
	CreatorIDs []int64 `json:"creator_ids" validate:"required,min=1"`
}

// StatusUpdate flips a creator's global active flag.
type StatusUpdate struct {
	IsActive    bool    `json:"is_active"`
	StatusNotes *string `json:"status_notes,omitempty"`
}

// ClientStatusUpdate sets one entry of a creator's client_statuses map.
type ClientStatusUpdate struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty"`
}

// OnboardingUpdate is a partial update. Omitted booleans leave the stored
// value untouched, so they must stay nil rather than false.
type OnboardingUpdate struct {
	Stage                 OnboardingStage `json:"stage" validate:"required"`
	ContractSigned        *bool           `json:"contract_signed,omitempty"`
	PaymentSetupCompleted *bool           `json:"payment_setup_completed,omitempty"`
}
