package listings

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"strconv"
	"strings"

	"tabiconst-backend/internal/application/catalog"
	"tabiconst-backend/internal/application/dashboard"
	listsvc "tabiconst-backend/internal/application/listings"
	"tabiconst-backend/internal/application/uploads"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/middleware"
	"tabiconst-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service   *listsvc.Service
	Uploads   *uploads.Service
	Dashboard *dashboard.Service
}

// GET /api/v1/listings
func (h *Handlers) List(c *fiber.Ctx) error {
	return h.list(c, domain.ScopePublic, "Listings fetched successfully")
}

// GET /api/v1/listings/my
func (h *Handlers) Mine(c *fiber.Ctx) error {
	return h.list(c, domain.ScopeMine, "Your listings fetched successfully")
}

// GET /api/v1/listings/admin
func (h *Handlers) Admin(c *fiber.Ctx) error {
	return h.list(c, domain.ScopeAdmin, "Listings fetched successfully")
}

func (h *Handlers) list(c *fiber.Ctx, scope domain.Scope, msg string) error {
	filter, err := catalog.ParseFilter(func(key string) string { return c.Query(key) })
	if err != nil {
		return response.FromError(c, err)
	}
	out, err := h.Service.List(c.UserContext(), middleware.GetActor(c), filter, scope)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.List(c, msg, out)
}

// GET /api/v1/listings/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	l, err := h.Service.Get(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing fetched successfully", l, nil)
}

// POST /api/v1/listings (JSON or multipart with "images")
func (h *Handlers) Create(c *fiber.Ctx) error {
	in, files, err := decodeInput(c)
	if err != nil {
		return response.FromError(c, err)
	}
	actor := middleware.GetActor(c)
	if err := h.precheck(actor, files); err != nil {
		return response.FromError(c, err)
	}
	batch := h.imageBatch(files)
	l, err := h.Service.CreateWithImages(c.UserContext(), actor, in, batch.save)
	if err != nil {
		batch.discard(c)
		return response.FromError(c, err)
	}
	h.invalidate(c)
	return response.Created(c, "Listing created successfully", l)
}

// PUT /api/v1/listings/:id (JSON or multipart; images are appended)
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	in, files, err := decodeInput(c)
	if err != nil {
		return response.FromError(c, err)
	}
	actor := middleware.GetActor(c)
	if err := h.precheck(actor, files); err != nil {
		return response.FromError(c, err)
	}
	batch := h.imageBatch(files)
	l, err := h.Service.UpdateWithImages(c.UserContext(), actor, id, in, batch.save)
	if err != nil {
		batch.discard(c)
		return response.FromError(c, err)
	}
	h.invalidate(c)
	return response.Success(c, "Listing updated successfully", l, nil)
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/v1/listings/:id/status
func (h *Handlers) ChangeStatus(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	var req statusRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	l, err := h.Service.ChangeStatus(c.UserContext(), middleware.GetActor(c), id, req.Status)
	if err != nil {
		return response.FromError(c, err)
	}
	h.invalidate(c)
	return response.Success(c, "Listing status updated", l, nil)
}

// DELETE /api/v1/listings/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), middleware.GetActor(c), id); err != nil {
		return response.FromError(c, err)
	}
	h.invalidate(c)
	return response.Success(c, "Listing removed", nil, nil)
}

// GET /api/v1/listings/:id/events
func (h *Handlers) Events(c *fiber.Ctx) error {
	id, err := listingID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	events, err := h.Service.Events(c.UserContext(), middleware.GetActor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Listing events fetched successfully", events, nil)
}

// GET /api/v1/listings/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Dashboard.GetDashboardStats(c.UserContext(), middleware.GetActor(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard stats fetched successfully", stats, nil)
}

func (h *Handlers) precheck(actor *domain.Actor, files []*multipart.FileHeader) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if err := h.precheckUploads(files); err != nil {
		return err
	}
	return uploads.Validate(files)
}

func (h *Handlers) precheckUploads(files []*multipart.FileHeader) error {
	if len(files) > 0 && h.Uploads == nil {
		return domain.Invalid("images", "Image uploads are not enabled")
	}
	return nil
}

// imageBatch holds a request's files until the service asks for them, and
// remembers what was stored so a failed operation can drop it.
type imageBatch struct {
	uploads *uploads.Service
	files   []*multipart.FileHeader
	stored  []string
}

func (h *Handlers) imageBatch(files []*multipart.FileHeader) *imageBatch {
	return &imageBatch{uploads: h.Uploads, files: files}
}

func (b *imageBatch) save(ctx context.Context) ([]string, error) {
	if len(b.files) == 0 {
		return nil, nil
	}
	urls, err := b.uploads.SaveImages(ctx, b.files)
	if err != nil {
		return nil, err
	}
	b.stored = urls
	return urls, nil
}

func (b *imageBatch) discard(c *fiber.Ctx) {
	if len(b.stored) > 0 {
		b.uploads.Discard(c.UserContext(), b.stored)
		b.stored = nil
	}
}

func (h *Handlers) invalidate(c *fiber.Ctx) {
	if h.Dashboard != nil {
		h.Dashboard.Invalidate(c.UserContext())
	}
}

func listingID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		// A malformed id can name no listing.
		return uuid.Nil, domain.ErrNotFound
	}
	return id, nil
}

// decodeInput reads a listing payload from a JSON body or a multipart form.
// Multipart values arrive as strings; features may be a JSON array string or
// repeated fields.
func decodeInput(c *fiber.Ctx) (listsvc.Input, []*multipart.FileHeader, error) {
	var in listsvc.Input
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		if len(strings.TrimSpace(string(c.Body()))) == 0 {
			return in, nil, nil
		}
		if err := json.Unmarshal(c.Body(), &in); err != nil {
			return in, nil, domain.Invalid("", "Invalid request body")
		}
		return in, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, nil, domain.Invalid("", "Invalid multipart form")
	}
	get := func(k string) (string, bool) {
		v, ok := form.Value[k]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}
	str := func(k string) *string {
		if v, ok := get(k); ok {
			return &v
		}
		return nil
	}
	in.Title = str("title")
	in.Description = str("description")
	in.Location = str("location")
	in.PropertyType = str("propertyType")
	in.Size = str("size")
	in.MapLink = str("mapLink")
	if v, ok := get("dealType"); ok {
		d := domain.DealType(v)
		in.DealType = &d
	}
	if v, ok := get("type"); ok {
		d := domain.DealType(v)
		in.Type = &d
	}
	if v, ok := get("category"); ok {
		cat := domain.Category(v)
		in.Category = &cat
	}
	if v, ok := get("price"); ok && strings.TrimSpace(v) != "" {
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return in, nil, domain.Invalid("price", "must be a number")
		}
		in.Price = &p
	}
	for _, f := range []struct {
		key string
		dst **int
	}{{"bedrooms", &in.Bedrooms}, {"bathrooms", &in.Bathrooms}} {
		if v, ok := get(f.key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return in, nil, domain.Invalid(f.key, "must be a whole number")
			}
			*f.dst = &n
		}
	}
	if vals, ok := form.Value["features"]; ok {
		features, err := parseFeatures(vals)
		if err != nil {
			return in, nil, err
		}
		in.Features = features
	}
	return in, form.File["images"], nil
}

func parseFeatures(vals []string) ([]string, error) {
	if len(vals) == 1 && strings.HasPrefix(strings.TrimSpace(vals[0]), "[") {
		var out []string
		if err := json.Unmarshal([]byte(vals[0]), &out); err != nil {
			return nil, domain.Invalid("features", "must be a JSON array of strings")
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
