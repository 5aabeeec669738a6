package state

import (
	"errors"
	"sync"

	"creatorpulse/models"
	"creatorpulse/utils"
)

var ErrNotSelected = errors.New("no template selected")

// Draft is the editable subject and body.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EditorView is what the compose page renders.
type EditorView struct {
	TemplateID         string           `json:"template_id,omitempty"`
	Recipient          string           `json:"recipient"`
	Draft              Draft            `json:"draft"`
	Preview            Draft            `json:"preview"`
	Original           *models.Template `json:"original,omitempty"`
	Modified           bool             `json:"modified"`
	InterpolateSubject bool             `json:"interpolate_subject"`
}

// Editor keeps three things apart: the selected template exactly as the API
// returned it, the draft the user edits, and the preview derived from the
// draft. Only the preview ever has ${creator_name} substituted.
type Editor struct {
	mu                 sync.Mutex
	selected           *models.Template
	draft              Draft
	recipient          string
	interpolateSubject bool
}

func NewEditor() *Editor {
	return &Editor{}
}

// Select loads a template into the draft, discarding any edits.
func (e *Editor) Select(t models.Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pristine := t
	e.selected = &pristine
	e.draft = Draft{Subject: t.Subject, Body: t.Body}
}

func (e *Editor) EditSubject(subject string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Subject = subject
}

func (e *Editor) EditBody(body string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft.Body = body
}

// SetRecipient sets the name substituted into the preview.
func (e *Editor) SetRecipient(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recipient = name
}

// SetInterpolateSubject opts the subject line into placeholder substitution.
// Off by default: subjects are sent as written.
func (e *Editor) SetInterpolateSubject(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interpolateSubject = on
}

func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *Editor) Preview() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.previewLocked()
}

func (e *Editor) previewLocked() Draft {
	preview := Draft{
		Subject: e.draft.Subject,
		Body:    utils.Interpolate(e.draft.Body, e.recipient),
	}
	if e.interpolateSubject {
		preview.Subject = utils.Interpolate(e.draft.Subject, e.recipient)
	}
	return preview
}

// Reset restores the draft to the selected template's literal text.
func (e *Editor) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return ErrNotSelected
	}
	e.draft = Draft{Subject: e.selected.Subject, Body: e.selected.Body}
	return nil
}

// Original returns the selected template, uninterpolated.
func (e *Editor) Original() (models.Template, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return models.Template{}, false
	}
	return *e.selected, true
}

// Clear drops the selection and the draft.
func (e *Editor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = nil
	e.draft = Draft{}
}

func (e *Editor) View() EditorView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := EditorView{
		Recipient:          e.recipient,
		Draft:              e.draft,
		Preview:            e.previewLocked(),
		InterpolateSubject: e.interpolateSubject,
	}
	if e.selected != nil {
		original := *e.selected
		view.TemplateID = original.ID
		view.Original = &original
		view.Modified = e.draft.Subject != original.Subject || e.draft.Body != original.Body
	}
	return view
}
