package controller

import (
	"creatorpulse/services"
	"creatorpulse/utils"
	"creatorpulse/viewmodel"

	"github.com/gofiber/fiber/v2"
)

// PortalController serves the non-admin client portal.
type PortalController struct {
	reader *services.Reader
}

func NewPortalController(reader *services.Reader) *PortalController {
	return &PortalController{reader: reader}
}

// ListCreators lists creators that have both an email and a profile URL,
// searched by name or any email.
func (pc *PortalController) ListCreators(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	creators, err := pc.reader.PortalCreators(c.UserContext(), sess, true, true)
	if err != nil {
		return respondError(c, err, "Error loading creators")
	}
	return c.JSON(utils.SuccessResponse(viewmodel.SearchCreators(creators, c.Query("search"))))
}
