package task

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes task HTTP endpoints. All routes assume the auth middleware
// already resolved the caller and stored its id under "user_id".
type Handler struct {
	service *Service
}

// NewHandler builds a task HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func callerID(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "invalid or missing credentials")
	}
	return uid, nil
}

func mapTaskError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrTitleTooLong), errors.Is(err, ErrDescriptionTooLong):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "task operation failed")
	}
}

// Create adds a task owned by the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	task, err := h.service.Create(c.UserContext(), uid, CreateInput{Title: req.Title, Description: req.Description})
	if err != nil {
		return mapTaskError(err)
	}
	return c.Status(http.StatusCreated).JSON(task)
}

// List returns the caller's tasks.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 0)
	tasks, err := h.service.List(c.UserContext(), uid, offset, limit)
	if err != nil {
		return mapTaskError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"tasks": tasks, "count": len(tasks)})
}

// Get returns a single task owned by the caller.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	task, err := h.service.Get(c.UserContext(), uid, c.Params("taskId"))
	if err != nil {
		return mapTaskError(err)
	}
	return c.Status(http.StatusOK).JSON(task)
}

// Update applies partial changes to a task owned by the caller.
func (h *Handler) Update(c *fiber.Ctx) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	task, err := h.service.Update(c.UserContext(), uid, c.Params("taskId"), UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return mapTaskError(err)
	}
	return c.Status(http.StatusOK).JSON(task)
}

// Delete removes a task owned by the caller.
func (h *Handler) Delete(c *fiber.Ctx) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), uid, c.Params("taskId")); err != nil {
		return mapTaskError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Toggle flips the completion flag on a task owned by the caller.
func (h *Handler) Toggle(c *fiber.Ctx) error {
	uid, err := callerID(c)
	if err != nil {
		return err
	}
	task, err := h.service.Toggle(c.UserContext(), uid, c.Params("taskId"))
	if err != nil {
		return mapTaskError(err)
	}
	return c.Status(http.StatusOK).JSON(task)
}
