package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-api/internal/application/billing"
	"github.com/jhoicas/pos-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create confirma una venta y descuenta el stock.
// @Summary  Crear factura
// @Tags     invoices
// @Accept   json
// @Produce  json
// @Param    body body dto.CreateInvoiceRequest true "Carrito y pago"
// @Success  201 {object} dto.InvoiceResponse
// @Failure  400 {object} dto.ErrorResponse
// @Failure  402 {object} dto.ErrorResponse "monto recibido menor al total"
// @Failure  409 {object} dto.ErrorResponse "stock insuficiente"
// @Failure  503 {object} dto.ErrorResponse
// @Router   /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	invoice, err := h.uc.CreateInvoice(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetByID obtiene el detalle completo de una factura.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.uc.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// List lista facturas con filtros from, to, payment_method, limit y offset.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	in := dto.InvoiceListRequest{
		From:          c.Query("from"),
		To:            c.Query("to"),
		PaymentMethod: c.Query("payment_method"),
		PageRequest: dto.PageRequest{
			Limit:  c.QueryInt("limit", 20),
			Offset: c.QueryInt("offset", 0),
		},
	}
	list, err := h.uc.ListInvoices(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// SalesReport resumen de ventas del período.
// GET /api/reports/sales?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *InvoiceHandler) SalesReport(c *fiber.Ctx) error {
	report, err := h.uc.SalesReport(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
