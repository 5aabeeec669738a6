package controller

import (
	"strings"

	"creatorpulse/models"
	"creatorpulse/services"
	"creatorpulse/utils"
	"creatorpulse/viewmodel"

	"github.com/gofiber/fiber/v2"
)

type SelectionRequest struct {
	CreatorIDs []int64 `json:"creator_ids"`
	Toggle     *int64  `json:"toggle,omitempty"`
	Clear      bool    `json:"clear"`
}

type CreatorController struct {
	reader *services.Reader
	orch   *services.Orchestrator
}

func NewCreatorController(reader *services.Reader, orch *services.Orchestrator) *CreatorController {
	return &CreatorController{reader: reader, orch: orch}
}

func (cc *CreatorController) ListClients(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	clients, err := cc.reader.Clients(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err, "Error loading clients")
	}
	return c.JSON(utils.SuccessResponse(clients))
}

// creatorFilters reads the server-side predicates of the creators listing.
func creatorFilters(c *fiber.Ctx) (models.CreatorFilters, error) {
	var filters models.CreatorFilters
	var err error
	if filters.IsActive, err = optionalBool(c, "is_active"); err != nil {
		return filters, err
	}
	if filters.ContractSigned, err = optionalBool(c, "contract_signed"); err != nil {
		return filters, err
	}
	if filters.PaymentSetupCompleted, err = optionalBool(c, "payment_setup_completed"); err != nil {
		return filters, err
	}
	if filters.ClientID, err = optionalID(c, "client_id"); err != nil {
		return filters, err
	}
	if stage := strings.TrimSpace(c.Query("onboarding_stage")); stage != "" && stage != "all" {
		s := models.OnboardingStage(stage)
		if !s.Valid() {
			return filters, services.ErrInvalidStage
		}
		filters.OnboardingStage = &s
	}
	if status := strings.TrimSpace(c.Query("client_status")); status != "" && status != "all" {
		filters.ClientStatus = &status
	}
	filters.Search = strings.TrimSpace(c.Query("search"))
	return filters, nil
}

func creatorView(c *fiber.Ctx) (viewmodel.CreatorView, error) {
	relationship, err := optionalID(c, "relationship_client_id")
	if err != nil {
		return viewmodel.CreatorView{}, err
	}
	return viewmodel.CreatorView{
		Search:   c.Query("q"),
		Presence: viewmodel.ParsePresence(c.Query("presence")),
		ClientID: relationship,
		SortBy:   c.Query("sort_by"),
		Order:    viewmodel.ParseSortOrder(c.Query("order", string(viewmodel.Asc))),
	}, nil
}

// ListCreators applies the server-side filters upstream and the view
// predicates locally. With a client selected, rows carry the contacted mark.
func (cc *CreatorController) ListCreators(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	filters, err := creatorFilters(c)
	if err != nil {
		return respondError(c, err, err.Error())
	}
	view, err := creatorView(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	creators, err := cc.reader.Creators(c.UserContext(), sess, filters)
	if err != nil {
		return respondError(c, err, "Error loading creators")
	}
	rows, err := cc.annotate(c, sess, page.SelectedClient(), viewmodel.DeriveCreators(creators, view))
	if err != nil {
		return respondError(c, err, "Error loading outreach history")
	}
	return c.JSON(utils.SuccessResponse(rows))
}

func (cc *CreatorController) annotate(c *fiber.Ctx, sess *models.Session, clientID *int64, creators []models.Creator) ([]viewmodel.CreatorRow, error) {
	logs, err := cc.reader.OutreachLogs(c.UserContext(), sess, clientID)
	if err != nil {
		return nil, err
	}
	return viewmodel.Annotate(creators, viewmodel.ContactedSet(logs)), nil
}

// ClientCreators lists the creators discovered for one client and selects
// that client for the page.
func (cc *CreatorController) ClientCreators(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	clientID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	view, err := creatorView(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	page.SelectClient(&clientID)
	creators, err := cc.reader.ClientCreators(c.UserContext(), sess, &clientID, c.Query("platform"))
	if err != nil {
		return respondError(c, err, "Error loading creators")
	}
	rows, err := cc.annotate(c, sess, &clientID, viewmodel.DeriveCreators(creators, view))
	if err != nil {
		return respondError(c, err, "Error loading outreach history")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"creators": rows,
		"selected": page.Selection.IDs(),
	}))
}

// Payments is the onboarding and payments overview with local filters.
func (cc *CreatorController) Payments(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	clientID, err := optionalID(c, "client_id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	stage := models.OnboardingStage(c.Query("stage"))
	if stage == "all" {
		stage = ""
	}
	if stage != "" && !stage.Valid() {
		return respondError(c, services.ErrInvalidStage, "")
	}

	creators, err := cc.reader.Creators(c.UserContext(), sess, models.CreatorFilters{})
	if err != nil {
		return respondError(c, err, "Error loading creators")
	}
	return c.JSON(utils.SuccessResponse(viewmodel.DerivePayments(creators, viewmodel.PaymentsView{
		Search:   c.Query("search"),
		Active:   viewmodel.ActiveFilter(c.Query("status", string(viewmodel.ActiveAll))),
		Stage:    stage,
		ClientID: clientID,
	})))
}

func (cc *CreatorController) GetCreator(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	creator, err := cc.reader.Creator(c.UserContext(), sess, id)
	if err != nil {
		return respondError(c, err, "Error loading creator")
	}
	return c.JSON(utils.SuccessResponse(creator))
}

func (cc *CreatorController) UpdateStatus(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.StatusUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := cc.orch.UpdateStatus(c.UserContext(), sess, page, id, req); err != nil {
		return respondError(c, err, "Failed to update status")
	}
	return c.JSON(utils.SuccessToast(nil, "Status updated"))
}

func (cc *CreatorController) UpdateClientStatus(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	clientID, err := paramID(c, "clientId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.ClientStatusUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := cc.orch.UpdateClientStatus(c.UserContext(), sess, page, id, clientID, req); err != nil {
		return respondError(c, err, "Failed to update client status")
	}
	return c.JSON(utils.SuccessToast(nil, "Client status updated"))
}

func (cc *CreatorController) UpdateOnboarding(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.OnboardingUpdate
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	creator, err := cc.orch.UpdateOnboarding(c.UserContext(), sess, page, id, req)
	if err != nil {
		return respondError(c, err, "Failed to update onboarding")
	}
	return c.JSON(utils.SuccessToast(creator, "Onboarding updated"))
}

// DeleteCreator deletes upstream and splices the listing the page was
// showing, identified by the same filters the listing was loaded with.
func (cc *CreatorController) DeleteCreator(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	filters, err := creatorFilters(c)
	if err != nil {
		return respondError(c, err, err.Error())
	}

	if err := cc.orch.DeleteCreator(c.UserContext(), sess, page, id, cc.reader.CreatorsKey(sess, filters)); err != nil {
		return respondError(c, err, "Failed to delete creator")
	}
	return c.JSON(utils.SuccessToast(nil, "Creator deleted"))
}

// CopyEmails returns the "Name <email>" lines for the clipboard.
func (cc *CreatorController) CopyEmails(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	var req SelectionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	lines, err := cc.orch.CreatorEmails(c.UserContext(), sess, page, req.CreatorIDs)
	if err != nil {
		return respondError(c, err, "Failed to get creator emails")
	}
	return c.JSON(utils.SuccessToast(fiber.Map{
		"lines": lines,
		"text":  strings.Join(lines, "\n"),
	}, "Emails copied"))
}

func (cc *CreatorController) MarkContacted(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	var req models.MarkContactedRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ClientID == 0 {
		if selected := page.SelectedClient(); selected != nil {
			req.ClientID = *selected
		}
	}

	if err := cc.orch.MarkContacted(c.UserContext(), sess, page, req); err != nil {
		return respondError(c, err, "Failed to mark creators as contacted")
	}
	return c.JSON(utils.SuccessToast(nil, "Marked as contacted"))
}

// Selection reads or changes the ticked creators of the page.
func (cc *CreatorController) Selection(c *fiber.Ctx) error {
	_, page := sessionAndPage(c)
	if c.Method() != fiber.MethodGet {
		var req SelectionRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		switch {
		case req.Clear:
			page.Selection.Clear()
		case req.Toggle != nil:
			page.Selection.Toggle(*req.Toggle)
		default:
			page.Selection.Add(req.CreatorIDs...)
		}
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"selected": page.Selection.IDs(),
		"loading":  page.Flags.Keys(),
	}))
}
