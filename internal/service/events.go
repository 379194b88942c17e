package service

import (
	"context"
	"time"
)

// EventPublisher is satisfied by *infra.AMQPPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, v interface{}) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// NopPublisher drops every event; used when AMQP_URL is unset.
var NopPublisher EventPublisher = nopPublisher{}

const (
	EventInvoiceCreated       = "invoice.created"
	EventInvoiceLinesAppended = "invoice.lines_appended"
)

// InvoiceEvent is the body of invoice.* messages.
type InvoiceEvent struct {
	InvoiceID   uint      `json:"invoice_id"`
	EmployeeID  uint      `json:"employee_id"`
	LineNumbers []int     `json:"line_numbers,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
