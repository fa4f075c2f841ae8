package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// MovementHandler maneja las peticiones HTTP del ledger de movimientos.
type MovementHandler struct {
	register *inventory.RegisterMovementUseCase
	query    *inventory.MovementQueryUseCase
	summary  *inventory.SummaryUseCase
	log      *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(
	register *inventory.RegisterMovementUseCase,
	query *inventory.MovementQueryUseCase,
	summary *inventory.SummaryUseCase,
	log *logger.Logger,
) *MovementHandler {
	return &MovementHandler{register: register, query: query, summary: summary, log: log}
}

// Register POST /api/movements. Devuelve el movimiento y el ítem actualizado.
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.register.RegisterMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/movements?itemId=&type=&from=&to=&page=&limit=
func (h *MovementHandler) List(c *fiber.Ctx) error {
	in := dto.ListMovementsRequest{
		PageRequest: pageFromQuery(c),
		ItemID:      c.Query("itemId"),
		Type:        c.Query("type"),
		From:        c.Query("from"),
		To:          c.Query("to"),
	}
	out, err := h.query.ListMovements(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary GET /api/movements/summary?itemId=&from=&to=
func (h *MovementHandler) Summary(c *fiber.Ctx) error {
	in := dto.SummaryRequest{
		ItemID: c.Query("itemId"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	}
	out, err := h.summary.Summarize(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/movements/:id
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.query.GetMovement(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/movements/:id. Anula el movimiento revirtiendo su efecto en el stock.
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	out, err := h.register.DeleteMovement(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
