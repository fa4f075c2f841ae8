package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ItemHandler maneja las peticiones HTTP de ítems de stock.
type ItemHandler struct {
	visibility *inventory.VisibilityUseCase
	intake     *inventory.IntakeUseCase
	items      *inventory.ItemUseCase
	summary    *inventory.SummaryUseCase
	log        *logger.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(
	visibility *inventory.VisibilityUseCase,
	intake *inventory.IntakeUseCase,
	items *inventory.ItemUseCase,
	summary *inventory.SummaryUseCase,
	log *logger.Logger,
) *ItemHandler {
	return &ItemHandler{visibility: visibility, intake: intake, items: items, summary: summary, log: log}
}

// List GET /api/items?page=&limit=&createdFrom=&createdTo=&expiryFrom=&expiryTo=
func (h *ItemHandler) List(c *fiber.Ctx) error {
	in := dto.ListItemsRequest{
		PageRequest: pageFromQuery(c),
		CreatedFrom: c.Query("createdFrom"),
		CreatedTo:   c.Query("createdTo"),
		ExpiryFrom:  c.Query("expiryFrom"),
		ExpiryTo:    c.Query("expiryTo"),
	}
	out, err := h.visibility.ListVisible(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create POST /api/items. Crea el ítem o lo fusiona con uno propio equivalente.
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.IntakeItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.intake.Intake(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/items/:id
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.visibility.GetVisible(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update PATCH /api/items/:id. Solo metadatos; el stock se rechaza.
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.items.UpdateItem(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/items/:id
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	out, err := h.items.DeleteItem(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Reconcile GET /api/items/:id/reconciliation
func (h *ItemHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.summary.Reconcile(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", dto.DefaultLimit),
	}
}
