package favorites

import (
	"encoding/json"
	"errors"

	favsvc "tabiconst-backend/internal/application/favorites"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/middleware"
	"tabiconst-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *favsvc.Service
}

type addRequest struct {
	ListingID string `json:"listingId"`
}

// GET /api/v1/favorites
func (h *Handlers) List(c *fiber.Ctx) error {
	favs, err := h.Service.List(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, "Favorites fetched successfully", favs)
}

// POST /api/v1/favorites
func (h *Handlers) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	id, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "listingId is required", fiber.StatusBadRequest, fiber.Map{"field": "listingId"})
	}
	fav, err := h.Service.Add(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return response.Error(c, "Already favorited", fiber.StatusConflict, nil)
		case errors.Is(err, domain.ErrNotFound):
			return response.Error(c, "Listing not found", fiber.StatusNotFound, nil)
		}
		return response.FromError(c, err)
	}
	return response.Created(c, "Added to favorites", fav)
}

// DELETE /api/v1/favorites/:id
func (h *Handlers) Remove(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Favorite not found", fiber.StatusNotFound, nil)
	}
	if err := h.Service.Remove(c.UserContext(), middleware.GetActor(c), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.Error(c, "Favorite not found", fiber.StatusNotFound, nil)
		}
		return response.FromError(c, err)
	}
	return response.Success(c, "Removed from favorites", nil, nil)
}
