package controller

import (
	"creatorpulse/models"
	"creatorpulse/services"
	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
)

type PostTweetRequest struct {
	Content string `json:"content"`
}

type TwitterController struct {
	twitter *services.TwitterService
}

func NewTwitterController(twitter *services.TwitterService) *TwitterController {
	return &TwitterController{twitter: twitter}
}

func (tc *TwitterController) ListTweets(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	tweets, err := tc.twitter.Tweets(c.UserContext(), sess)
	if err != nil {
		return respondError(c, err, "Error loading tweets")
	}
	return c.JSON(utils.SuccessResponse(tweets))
}

func (tc *TwitterController) PostTweet(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	var req PostTweetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := tc.twitter.PostTweet(c.UserContext(), sess, page, req.Content); err != nil {
		return respondError(c, err, "Failed to post tweet")
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessToast(nil, "Tweet posted"))
}

func (tc *TwitterController) ListReplies(c *fiber.Ctx) error {
	sess, _ := sessionAndPage(c)
	tweetID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	replies, err := tc.twitter.Replies(c.UserContext(), sess, &tweetID)
	if err != nil {
		return respondError(c, err, "Error loading replies")
	}
	return c.JSON(utils.SuccessResponse(replies))
}

// ProcessReply converts the reply's author into a creator. It can only
// happen once per reply.
func (tc *TwitterController) ProcessReply(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	tweetID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	replyID := c.Params("replyId")
	if replyID == "" {
		return badRequest(c, "invalid replyId")
	}

	if err := tc.twitter.ProcessReply(c.UserContext(), sess, page, tweetID, replyID); err != nil {
		return respondError(c, err, "Failed to process reply")
	}
	return c.JSON(utils.SuccessToast(nil, "Reply processed"))
}

func (tc *TwitterController) SendDM(c *fiber.Ctx) error {
	sess, page := sessionAndPage(c)
	var req models.DirectMessage
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := tc.twitter.SendDM(c.UserContext(), sess, page, req); err != nil {
		return respondError(c, err, "Failed to send DM")
	}
	return c.JSON(utils.SuccessToast(nil, "DM sent"))
}
