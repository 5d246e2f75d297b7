package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/service"
)

type ApprovalHandler struct {
	s           service.PostService
	AsynqClient *asynq.Client
}

func NewApprovalHandler(s service.PostService, asynqClient *asynq.Client) *ApprovalHandler {
	return &ApprovalHandler{s: s, AsynqClient: asynqClient}
}

// HandleAction serves the emailed approval links. It always answers with a
// readable outcome page; API-style errors would be useless in a mail
// client.
func (h *ApprovalHandler) HandleAction(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("postID")
	if err != nil {
		return renderOutcome(c, fiber.StatusBadRequest, "Invalid link", "The post reference in this link is malformed.")
	}
	emailToken := c.Params("emailID")
	action := c.Params("action")

	switch action {
	case "accept":
		return h.accept(c, int64(postID), emailToken)
	case "decline":
		return h.decline(c, int64(postID), emailToken)
	case "retry":
		return h.retry(c, int64(postID), emailToken)
	default:
		return renderOutcome(c, fiber.StatusBadRequest, "Invalid link", "Unknown action: "+action)
	}
}

func (h *ApprovalHandler) accept(c *fiber.Ctx, postID int64, emailToken string) error {
	post, err := h.s.Approve(c.Context(), postID, emailToken)
	if err != nil {
		return outcomeError(c, err)
	}

	if err := queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: post.ID}, 0); err != nil {
		slog.Error("error enqueueing publish after approval", "post_id", post.ID, "error", err)
		return renderOutcome(c, fiber.StatusInternalServerError, "Approved, but not queued",
			"The post was approved but could not be queued for publishing. It can be re-queued from the dashboard.")
	}

	return renderOutcome(c, fiber.StatusOK, "Post approved",
		fmt.Sprintf("Post %d is approved and queued for publishing.", post.ID))
}

func (h *ApprovalHandler) decline(c *fiber.Ctx, postID int64, emailToken string) error {
	if err := h.s.Decline(c.Context(), postID, emailToken); err != nil {
		return outcomeError(c, err)
	}
	return renderOutcome(c, fiber.StatusOK, "Post declined",
		fmt.Sprintf("Post %d was declined and will not be published.", postID))
}

func (h *ApprovalHandler) retry(c *fiber.Ctx, postID int64, emailToken string) error {
	post, err := h.s.Retry(c.Context(), postID, emailToken)
	if err != nil {
		return outcomeError(c, err)
	}
	return renderOutcome(c, fiber.StatusOK, "New draft on the way",
		fmt.Sprintf("Post %d was regenerated (attempt %d of %d). A fresh approval email is in your inbox.",
			post.ID, post.RetryCount, post.MaxRetries))
}

// outcomeError maps service errors onto the outcome page, quoting the
// message verbatim.
func outcomeError(c *fiber.Ctx, err error) error {
	if service.IsValidationError(err) {
		return renderOutcome(c, fiber.StatusUnprocessableEntity, "Nothing changed", err.Error())
	}
	slog.Error("approval action failed", "error", err)
	return renderOutcome(c, fiber.StatusInternalServerError, "Something went wrong", err.Error())
}
