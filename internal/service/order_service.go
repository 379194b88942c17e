package service

import (
	"context"
	"fmt"
	"time"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"
	"cafebook/internal/worker"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OrderService owns invoices and their numbered lines.
//
// An invoice moves from empty (header only) to building (lines appended).
// There is no explicit finalize step; a client simply stops appending.
type OrderService interface {
	CreateInvoice(ctx context.Context, employeeID uint) (*dto.InvoiceResponse, error)
	AppendLines(ctx context.Context, invoiceID uint, items []dto.LineItemRequest) (*dto.InvoiceResponse, error)
	CreateOrder(ctx context.Context, employeeID uint, items []dto.LineItemRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id uint) (*model.Invoice, error)
	ListInvoices(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	EmailReceipt(ctx context.Context, invoiceID uint, email string) error
}

// ReceiptQueue is satisfied by *worker.Dispatcher.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, payload worker.ReceiptJobPayload) error
}

type orderService struct {
	invoices  repository.InvoiceRepository
	employees repository.EmployeeRepository
	products  repository.ProductRepository
	vouchers  repository.VoucherRepository
	events    EventPublisher
	receipts  ReceiptQueue
	loc       *time.Location
	now       func() time.Time
}

func NewOrderService(
	invoices repository.InvoiceRepository,
	employees repository.EmployeeRepository,
	products repository.ProductRepository,
	vouchers repository.VoucherRepository,
	events EventPublisher,
	receipts ReceiptQueue,
	loc *time.Location,
) OrderService {
	if events == nil {
		events = NopPublisher
	}
	if loc == nil {
		loc = time.UTC
	}
	return &orderService{
		invoices:  invoices,
		employees: employees,
		products:  products,
		vouchers:  vouchers,
		events:    events,
		receipts:  receipts,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *orderService) CreateInvoice(ctx context.Context, employeeID uint) (*dto.InvoiceResponse, error) {
	var inv *model.Invoice
	err := runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
		var err error
		inv, err = s.createHeader(ctx, tx, employeeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("invoice_id", inv.ID).Uint("employee_id", employeeID).Msg("invoice created")
	s.publish(ctx, EventInvoiceCreated, InvoiceEvent{InvoiceID: inv.ID, EmployeeID: employeeID, OccurredAt: inv.CreatedAt})
	return s.load(ctx, inv.ID)
}

// AppendLines adds items to an existing invoice. Line numbers continue from
// the invoice's counter in request order. Any unresolved reference aborts the
// whole batch.
func (s *orderService) AppendLines(ctx context.Context, invoiceID uint, items []dto.LineItemRequest) (*dto.InvoiceResponse, error) {
	var numbers []int
	err := runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
		var err error
		numbers, err = s.appendLines(ctx, tx, invoiceID, items)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("invoice_id", invoiceID).Int("lines", len(numbers)).Msg("invoice lines appended")
	resp, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventInvoiceLinesAppended, InvoiceEvent{
		InvoiceID:   invoiceID,
		EmployeeID:  resp.EmployeeID,
		LineNumbers: numbers,
		OccurredAt:  s.now().UTC(),
	})
	return resp, nil
}

// CreateOrder opens an invoice and appends its lines in one transaction.
func (s *orderService) CreateOrder(ctx context.Context, employeeID uint, items []dto.LineItemRequest) (*dto.InvoiceResponse, error) {
	var (
		inv     *model.Invoice
		numbers []int
	)
	err := runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
		var err error
		if inv, err = s.createHeader(ctx, tx, employeeID); err != nil {
			return err
		}
		numbers, err = s.appendLines(ctx, tx, inv.ID, items)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("invoice_id", inv.ID).Int("lines", len(numbers)).Msg("order created")
	s.publish(ctx, EventInvoiceCreated, InvoiceEvent{
		InvoiceID:   inv.ID,
		EmployeeID:  employeeID,
		LineNumbers: numbers,
		OccurredAt:  inv.CreatedAt,
	})
	return s.load(ctx, inv.ID)
}

func (s *orderService) GetInvoice(ctx context.Context, id uint) (*model.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityInvoice, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find invoice %d: %w", id, err)
	}
	return inv, nil
}

func (s *orderService) ListInvoices(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	f := repository.InvoiceListFilter{EmployeeID: filter.EmployeeID, Page: filter.Page, Limit: filter.Limit}
	if filter.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", filter.Date, s.loc)
		if err != nil {
			return nil, apierror.Invalid(apierror.BadInput, "date", "Ngày không hợp lệ, định dạng YYYY-MM-DD")
		}
		next := day.AddDate(0, 0, 1)
		f.From, f.To = &day, &next
	}

	invoices, total, err := s.invoices.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		data[i] = ToInvoiceResponse(&invoices[i])
	}
	return &dto.InvoiceListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// EmailReceipt queues a PDF receipt for delivery.
func (s *orderService) EmailReceipt(ctx context.Context, invoiceID uint, email string) error {
	if _, err := s.GetInvoice(ctx, invoiceID); err != nil {
		return err
	}
	return s.receipts.EnqueueReceipt(ctx, worker.ReceiptJobPayload{InvoiceID: invoiceID, ToEmail: email})
}

func (s *orderService) createHeader(ctx context.Context, tx *gorm.DB, employeeID uint) (*model.Invoice, error) {
	ok, err := s.employees.Exists(ctx, tx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("check employee %d: %w", employeeID, err)
	}
	if !ok {
		return nil, apierror.NotFound(apierror.EntityEmployee, employeeID)
	}

	inv := &model.Invoice{EmployeeID: employeeID, CreatedAt: s.now().UTC()}
	if err := s.invoices.Create(ctx, tx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return inv, nil
}

// appendLines reserves a contiguous block of line numbers, then resolves
// every reference. The reservation UPDATE holds the invoice row lock until tx
// ends, so concurrent batches on one invoice are serialized; a failed lookup
// rolls the reservation back with the rest of the batch.
func (s *orderService) appendLines(ctx context.Context, tx *gorm.DB, invoiceID uint, items []dto.LineItemRequest) ([]int, error) {
	if len(items) == 0 {
		return nil, apierror.Invalid(apierror.BadInput, "items", "Danh sách món không được rỗng")
	}

	productIDs := make([]uint, 0, len(items))
	var voucherIDs []uint
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, apierror.Invalid(apierror.NegativeQuantity, "quantity", "Số lượng phải lớn hơn 0")
		}
		productIDs = append(productIDs, it.ProductID)
		if it.VoucherID != nil {
			voucherIDs = append(voucherIDs, *it.VoucherID)
		}
	}

	first, err := s.invoices.ReserveLineNumbers(ctx, tx, invoiceID, len(items))
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityInvoice, invoiceID)
	}
	if err != nil {
		return nil, fmt.Errorf("reserve line numbers: %w", err)
	}

	products, err := s.products.FindByIDs(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	vouchers, err := s.vouchers.FindByIDs(ctx, tx, voucherIDs)
	if err != nil {
		return nil, fmt.Errorf("load vouchers: %w", err)
	}

	for _, it := range items {
		if _, ok := products[it.ProductID]; !ok {
			return nil, apierror.NotFound(apierror.EntityProduct, it.ProductID)
		}
		if it.VoucherID != nil {
			if _, ok := vouchers[*it.VoucherID]; !ok {
				return nil, apierror.NotFound(apierror.EntityVoucher, *it.VoucherID)
			}
		}
	}

	lines := make([]model.InvoiceLine, len(items))
	numbers := make([]int, len(items))
	for i, it := range items {
		numbers[i] = first + i
		lines[i] = model.InvoiceLine{
			InvoiceID: invoiceID,
			LineNo:    first + i,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Note:      it.Note,
			VoucherID: it.VoucherID,
		}
	}
	if err := s.invoices.CreateLines(ctx, tx, lines); err != nil {
		if repository.IsDuplicate(err) {
			return nil, &apierror.ConflictError{Reason: apierror.DuplicateSequenceNumber, Err: err}
		}
		return nil, fmt.Errorf("insert lines: %w", err)
	}
	return numbers, nil
}

func (s *orderService) load(ctx context.Context, id uint) (*dto.InvoiceResponse, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// publish is best effort; the invoice is already committed.
func (s *orderService) publish(ctx context.Context, key string, ev InvoiceEvent) {
	if err := s.events.Publish(ctx, key, ev); err != nil {
		log.Warn().Err(err).Str("event", key).Uint("invoice_id", ev.InvoiceID).Msg("event publish failed")
	}
}

// ToInvoiceResponse flattens an invoice with its lines loaded.
func ToInvoiceResponse(inv *model.Invoice) dto.InvoiceResponse {
	lines := make([]dto.InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		percent := 0
		if l.Voucher != nil {
			percent = l.Voucher.Percent
		}
		lines[i] = dto.InvoiceLineResponse{
			LineNo:          l.LineNo,
			ProductID:       l.ProductID,
			ProductName:     l.Product.Name,
			Quantity:        l.Quantity,
			UnitPrice:       l.Product.Price,
			VoucherID:       l.VoucherID,
			DiscountPercent: percent,
			Note:            l.Note,
			LineTotal:       l.Total(),
		}
	}
	return dto.InvoiceResponse{
		ID:           inv.ID,
		EmployeeID:   inv.EmployeeID,
		EmployeeName: inv.Employee.Name,
		CreatedAt:    inv.CreatedAt,
		Lines:        lines,
		Total:        inv.Total(),
	}
}
