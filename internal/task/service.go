package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskloop/taskloop/internal/authz"
	"github.com/taskloop/taskloop/internal/events"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Service exposes owner-scoped task operations. Every read and mutation of a
// specific task passes through the ownership guard first; a task belonging
// to another user is indistinguishable from a missing one.
type Service struct {
	repo     Repository
	recorder events.Recorder
}

// NewService builds a task service instance.
func NewService(repo Repository, recorder events.Recorder) *Service {
	if recorder == nil {
		recorder = events.Nop()
	}
	return &Service{repo: repo, recorder: recorder}
}

// CreateInput captures data required to create a task.
type CreateInput struct {
	Title       string
	Description string
}

// UpdateInput carries optional field updates; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLen {
		return ErrTitleTooLong
	}
	return nil
}

// Create stores a new task owned by the given user.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (Task, error) {
	if err := validateTitle(input.Title); err != nil {
		return Task{}, err
	}
	if len(input.Description) > maxDescriptionLen {
		return Task{}, ErrDescriptionTooLong
	}

	now := time.Now().UTC()
	task := Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return Task{}, err
	}
	s.record(ctx, "create", ownerID, task.ID, true, "")
	return task, nil
}

// Get returns the task if it exists and belongs to the owner.
func (s *Service) Get(ctx context.Context, ownerID, taskID string) (Task, error) {
	return authz.Enforce(ctx, ownerID, taskID, s.repo.FindByID)
}

// List returns the owner's tasks with pagination. Limits outside the allowed
// range are clamped.
func (s *Service) List(ctx context.Context, ownerID string, offset, limit int) ([]Task, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListByOwner(ctx, ownerID, offset, limit)
}

// Update applies the provided field changes after the ownership check.
func (s *Service) Update(ctx context.Context, ownerID, taskID string, input UpdateInput) (Task, error) {
	task, err := authz.Enforce(ctx, ownerID, taskID, s.repo.FindByID)
	if err != nil {
		s.record(ctx, "update", ownerID, taskID, false, err.Error())
		return Task{}, err
	}

	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return Task{}, err
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		if len(*input.Description) > maxDescriptionLen {
			return Task{}, ErrDescriptionTooLong
		}
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		return Task{}, err
	}
	s.record(ctx, "update", ownerID, taskID, true, "")
	return task, nil
}

// Delete removes the task after the ownership check.
func (s *Service) Delete(ctx context.Context, ownerID, taskID string) error {
	if _, err := authz.Enforce(ctx, ownerID, taskID, s.repo.FindByID); err != nil {
		s.record(ctx, "delete", ownerID, taskID, false, err.Error())
		return err
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.record(ctx, "delete", ownerID, taskID, true, "")
	return nil
}

// Toggle flips the completion flag after the ownership check.
func (s *Service) Toggle(ctx context.Context, ownerID, taskID string) (Task, error) {
	task, err := authz.Enforce(ctx, ownerID, taskID, s.repo.FindByID)
	if err != nil {
		s.record(ctx, "toggle", ownerID, taskID, false, err.Error())
		return Task{}, err
	}
	task.Completed = !task.Completed
	task.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, task); err != nil {
		return Task{}, err
	}
	s.record(ctx, "toggle", ownerID, taskID, true, "")
	return task, nil
}

func (s *Service) record(ctx context.Context, action, ownerID, taskID string, success bool, reason string) {
	s.recorder.Record(ctx, events.Event{
		Kind:       events.KindTask,
		Action:     action,
		UserID:     ownerID,
		ResourceID: taskID,
		Success:    success,
		Reason:     reason,
	})
}
