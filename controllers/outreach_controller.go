package controller

import (
	"creatorpulse/models"
	"creatorpulse/services"
	"creatorpulse/state"
	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
)

type SelectTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// DraftRequest edits the draft. Nil fields are left as they are.
type DraftRequest struct {
	Subject            *string `json:"subject"`
	Body               *string `json:"body"`
	Recipient          *string `json:"recipient"`
	InterpolateSubject *bool   `json:"interpolate_subject"`
}

type SendOutreachRequest struct {
	ClientID   int64  `json:"client_id"`
	CreatorID  int64  `json:"creator_id"`
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	// UseDraft sends the editor preview instead of Subject and Body.
	UseDraft bool `json:"use_draft"`
	Force    bool `json:"force"`
}

type MassOutreachRequest struct {
	ClientID   int64   `json:"client_id"`
	CreatorIDs []int64 `json:"creator_ids"`
	TemplateID string  `json:"template_id"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	UseDraft   bool    `json:"use_draft"`
}

type OutreachController struct {
	reader *services.Reader
	orch   *services.Orchestrator
}

func NewOutreachController(reader *services.Reader, orch *services.Orchestrator) *OutreachController {
	return &OutreachController{reader: reader, orch: orch}
}

func (oc *OutreachController) ListTemplates(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	templates, err := oc.reader.Templates(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err, "Error loading templates")
	}
	return c.JSON(utils.SuccessResponse(templates))
}

func (oc *OutreachController) Editor(c *fiber.Ctx) error {
	_, page := sessionAndPage(c)
	return c.JSON(utils.SuccessResponse(page.Editor.View()))
}

// SelectTemplate loads a template into the editor, dropping unsaved edits.
func (oc *OutreachController) SelectTemplate(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	var req SelectTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return respondError(c, err, "")
	}

	template, ok, err := oc.reader.Template(c.UserContext(), sess, req.TemplateID)
	if err != nil {
		return respondError(c, err, "Error loading templates")
	}
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
	}
	page.Editor.Select(template)
	return c.JSON(utils.SuccessResponse(page.Editor.View()))
}

func (oc *OutreachController) EditDraft(c *fiber.Ctx) error {
	_, page := sessionAndPage(c)
	var req DraftRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if req.Subject != nil {
		page.Editor.EditSubject(*req.Subject)
	}
	if req.Body != nil {
		page.Editor.EditBody(*req.Body)
	}
	if req.Recipient != nil {
		page.Editor.SetRecipient(*req.Recipient)
	}
	if req.InterpolateSubject != nil {
		page.Editor.SetInterpolateSubject(*req.InterpolateSubject)
	}
	return c.JSON(utils.SuccessResponse(page.Editor.View()))
}

// ResetDraft restores the draft to the selected template's original text.
func (oc *OutreachController) ResetDraft(c *fiber.Ctx) error {
	_, page := sessionAndPage(c)
	if err := page.Editor.Reset(); err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(utils.SuccessToast(page.Editor.View(), "Template restored"))
}

func (oc *OutreachController) ClearEditor(c *fiber.Ctx) error {
	_, page := sessionAndPage(c)
	page.Editor.Clear()
	return c.JSON(utils.SuccessResponse(page.Editor.View()))
}

func (oc *OutreachController) Send(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	var req SendOutreachRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	out := models.OutreachRequest{
		ClientID:   req.ClientID,
		CreatorID:  req.CreatorID,
		TemplateID: req.TemplateID,
		Subject:    req.Subject,
		Body:       req.Body,
		Force:      req.Force,
	}
	if out.ClientID == 0 {
		if selected := page.SelectedClient(); selected != nil {
			out.ClientID = *selected
		}
	}
	if req.UseDraft {
		if _, ok := page.Editor.Original(); !ok {
			return respondError(c, state.ErrNotSelected, "")
		}
		preview := page.Editor.Preview()
		out.TemplateID, out.Subject, out.Body = "", preview.Subject, preview.Body
	}

	if err := oc.orch.SendOutreach(c.UserContext(), sess, page, out); err != nil {
		return respondError(c, err, "Failed to send email")
	}
	return c.JSON(utils.SuccessToast(nil, "Email sent"))
}

// SendMass emails the given creators, or the page selection when none are given.
func (oc *OutreachController) SendMass(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	var req MassOutreachRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	out := models.MassOutreachRequest{
		ClientID:   req.ClientID,
		CreatorIDs: req.CreatorIDs,
		TemplateID: req.TemplateID,
		Subject:    req.Subject,
		Body:       req.Body,
	}
	if out.ClientID == 0 {
		if selected := page.SelectedClient(); selected != nil {
			out.ClientID = *selected
		}
	}
	if req.UseDraft {
		if _, ok := page.Editor.Original(); !ok {
			return respondError(c, state.ErrNotSelected, "")
		}
		// Recipients differ, so the placeholder is left for the API to fill.
		draft := page.Editor.Draft()
		out.TemplateID, out.Subject, out.Body = "", draft.Subject, draft.Body
	}

	if err := oc.orch.SendMassOutreach(c.UserContext(), sess, page, out); err != nil {
		return respondError(c, err, "Failed to send emails")
	}
	return c.JSON(utils.SuccessToast(fiber.Map{
		"selected": page.Selection.IDs(),
	}, "Emails sent"))
}

func (oc *OutreachController) Logs(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	clientID, err := optionalID(c, "client_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if clientID == nil {
		clientID = page.SelectedClient()
	}

	logs, err := oc.reader.OutreachLogs(c.UserContext(), sess, clientID)
	if err != nil {
		return respondError(c, err, "Error loading outreach history")
	}
	return c.JSON(utils.SuccessResponse(logs))
}
