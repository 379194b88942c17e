package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"cafebook/internal/dto"
	"cafebook/internal/infra"
	"cafebook/internal/middleware"
	"cafebook/internal/service"

	"github.com/gin-gonic/gin"
)

type InvoicesHandler struct{ svc service.OrderService }

func NewInvoicesHandler(svc service.OrderService) *InvoicesHandler {
	return &InvoicesHandler{svc: svc}
}

// CreateInvoice godoc
// @Summary Tạo hóa đơn rỗng
// @Tags invoices
// @Accept json
// @Produce json
// @Param body body dto.CreateInvoiceRequest false "employee_id mặc định là người gọi"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/invoices [post]
func (h *InvoicesHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	employeeID := req.EmployeeID
	if employeeID == 0 {
		employeeID = middleware.GetClaims(c).EmployeeID
	}
	resp, err := h.svc.CreateInvoice(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AppendLines godoc
// @Summary Thêm dòng vào hóa đơn
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path int true "Mã hóa đơn"
// @Param body body dto.AppendLinesRequest true "Các món"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/invoices/{id}/lines [post]
func (h *InvoicesHandler) AppendLines(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AppendLinesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AppendLines(c.Request.Context(), id, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CreateOrder opens an invoice with its lines in one call.
func (h *InvoicesHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	employeeID := req.EmployeeID
	if employeeID == 0 {
		employeeID = middleware.GetClaims(c).EmployeeID
	}
	resp, err := h.svc.CreateOrder(c.Request.Context(), employeeID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InvoicesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.svc.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ToInvoiceResponse(inv))
}

func (h *InvoicesHandler) List(c *gin.Context) {
	var filter dto.InvoiceFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Receipt streams the invoice as a PDF receipt.
func (h *InvoicesHandler) Receipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	inv, err := h.svc.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.WriteInvoicePDF(inv, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="invoice_%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// EmailReceipt queues the PDF receipt for delivery to the given address.
func (h *InvoicesHandler) EmailReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ReceiptEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EmailReceipt(c.Request.Context(), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Hóa đơn sẽ được gửi qua email"})
}
