package user

import (
	"encoding/json"
	"errors"

	"tabiconst-backend/internal/application/dashboard"
	policies "tabiconst-backend/internal/application/policies/users"
	usersvc "tabiconst-backend/internal/application/user"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/middleware"
	"tabiconst-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers exposes profile and user management endpoints. Writes drop the
// cached dashboard stats.
type Handlers struct {
	Service   *usersvc.Service
	Dashboard *dashboard.Service
}

// UpdateProfile PUT /api/v1/auth/profile
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	var in usersvc.ProfileInput
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateProfile(c.UserContext(), middleware.GetActor(c), in)
	if err != nil {
		return mapError(c, err)
	}
	h.Dashboard.Invalidate(c.UserContext())
	return response.Success(c, "Profile updated successfully", fiber.Map{"user": u}, nil)
}

// ListUsers GET /api/v1/auth/users
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.Service.ListUsers(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return mapError(c, err)
	}
	return response.List(c, "Users fetched successfully", users)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateUserStatus PATCH /api/v1/auth/users/:id/status
func (h *Handlers) UpdateUserStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "User not found", fiber.StatusNotFound, nil)
	}
	var req statusRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateUserStatus(c.UserContext(), middleware.GetActor(c), id, req.Status)
	if err != nil {
		return mapError(c, err)
	}
	h.Dashboard.Invalidate(c.UserContext())
	return response.Success(c, "User status updated", fiber.Map{"user": u}, nil)
}

// DeleteUser DELETE /api/v1/auth/users/:id
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "User not found", fiber.StatusNotFound, nil)
	}
	if err := h.Service.DeleteUser(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return mapError(c, err)
	}
	h.Dashboard.Invalidate(c.UserContext())
	return response.Success(c, "User removed", nil, nil)
}

func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, policies.ErrAdminAccountProtected):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, domain.ErrNotFound):
		return response.Error(c, "User not found", fiber.StatusNotFound, nil)
	case errors.Is(err, domain.ErrConflict):
		return response.Error(c, "Email is already in use", fiber.StatusConflict, nil)
	}
	return response.FromError(c, err)
}
