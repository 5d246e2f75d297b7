package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

type PostHandler struct {
	s           service.PostService
	ar          repository.ApprovalRepository
	hr          repository.PostingHistoryRepository
	AsynqClient *asynq.Client
}

func NewPostHandler(s service.PostService, ar repository.ApprovalRepository, hr repository.PostingHistoryRepository, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: s, ar: ar, hr: hr, AsynqClient: asynqClient}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID))
		if err != nil {
			return errorJSON(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) ApprovalHistory(c *fiber.Ctx) error {
	postID := c.QueryInt("id", 0)
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id query parameter is required",
		})
	}

	approvals, err := h.ar.ListByPostID(c.Context(), int64(postID))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(approvals)
}

func (h *PostHandler) PostingHistory(c *fiber.Ctx) error {
	postID := c.QueryInt("id", 0)
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id query parameter is required",
		})
	}

	history, err := h.hr.ListByPostID(c.Context(), int64(postID))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(history)
}

// RunDaily triggers the daily generation outside its cron slot.
func (h *PostHandler) RunDaily(c *fiber.Ctx) error {
	post, err := h.s.RunDaily(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// RequeuePublish puts an approved post back on the publish queue, e.g.
// after its failed status was cleared through re-approval.
func (h *PostHandler) RequeuePublish(c *fiber.Ctx) error {
	postID := c.QueryInt("id", 0)
	if postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id query parameter is required",
		})
	}

	err := queue.EnqueuePublish(h.AsynqClient, queue.PublishPostPayload{PostID: int64(postID)}, 0)
	if err != nil {
		slog.Error("error enqueueing publish", "post_id", postID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling publish",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Publish queued",
	})
}

// errorJSON returns the error message verbatim in a structured failure
// response.
func errorJSON(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if service.IsValidationError(err) {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
