package controller

import (
	"strconv"
	"time"

	"creatorpulse/models"
	"creatorpulse/services"
	"creatorpulse/utils"
	"creatorpulse/viewmodel"
	"creatorpulse/worker"

	"github.com/gofiber/fiber/v2"
)

// EventInboxChanged tells inbox subscribers to re-read their view.
const EventInboxChanged = "inbox_changed"

func inboxTopic(clientID int64) string {
	return "inbox:" + strconv.FormatInt(clientID, 10)
}

type InboxController struct {
	inbox        *services.InboxService
	reader       *services.Reader
	orch         *services.Orchestrator
	hub          *worker.Hub
	pollInterval time.Duration
	debounce     time.Duration
}

func NewInboxController(inbox *services.InboxService, reader *services.Reader, orch *services.Orchestrator, hub *worker.Hub, pollInterval, debounce time.Duration) *InboxController {
	return &InboxController{
		inbox:        inbox,
		reader:       reader,
		orch:         orch,
		hub:          hub,
		pollInterval: pollInterval,
		debounce:     debounce,
	}
}

func inboxView(c *fiber.Ctx) (viewmodel.InboxView, error) {
	var view viewmodel.InboxView
	if err := c.QueryParser(&view); err != nil {
		return view, err
	}
	return view.Normalize(), nil
}

// GetInbox selects the client for the page and returns its derived inbox.
func (ic *InboxController) GetInbox(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	clientID, err := paramID(c, "clientId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	view, err := inboxView(c)
	if err != nil {
		return badRequest(c, "Invalid inbox filters")
	}

	page.SelectClient(&clientID)
	rows, err := ic.inbox.Emails(c.UserContext(), sess, &clientID, view)
	if err != nil {
		return respondError(c, err, "Error loading inbox")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"emails": rows,
		"view":   view,
	}))
}

// Refresh drops the cached inbox and reads it again.
func (ic *InboxController) Refresh(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	clientID, err := paramID(c, "clientId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	view, err := inboxView(c)
	if err != nil {
		return badRequest(c, "Invalid inbox filters")
	}

	if err := ic.inbox.Refresh(sess, &clientID); err != nil {
		return respondError(c, err, "Error refreshing inbox")
	}
	rows, err := ic.inbox.Emails(c.UserContext(), sess, &clientID, view)
	if err != nil {
		return respondError(c, err, "Error loading inbox")
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"emails": rows,
		"view":   view,
	}))
}

func (ic *InboxController) Reply(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	clientID, err := paramID(c, "clientId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req models.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := ic.orch.Reply(c.UserContext(), sess, page, req); err != nil {
		return respondError(c, err, "Failed to send reply")
	}
	ic.hub.Publish(inboxTopic(clientID), worker.Event{Type: EventInboxChanged})
	return c.JSON(utils.SuccessToast(nil, "Reply sent"))
}
