package recon

import (
	"strings"
	"time"
)

// Payment statuses of an order snapshot. Only paid orders are posted.
const (
	PaymentStatusPaid      = "paid"
	PaymentStatusUnpaid    = "unpaid"
	PaymentStatusCancelled = "cancelled"
)

// Order is the immutable snapshot of one order as fetched from the order
// source. It is always re-fetched by identifier when dequeued, never
// trusted from the webhook payload body.
type Order struct {
	ID            string
	Number        string
	PaymentStatus string
	Currency      string
	TotalGross    string // major-unit decimal string, as reported
	TotalTax      string
	ProcessedAt   time.Time
	LineItems     []OrderLine
	ShippingLines []ShippingLine
	Contact       Contact
}

// OrderLine is one product line.
type OrderLine struct {
	Title     string
	UnitPrice string // major-unit decimal string
	Quantity  int
	Discount  string // major-unit decimal string, total for the line
}

// ShippingLine is one shipping charge.
type ShippingLine struct {
	Title string
	Price string
}

// Contact is the order's customer information.
type Contact struct {
	Email   string
	Name    string
	Address string
	City    string
	ZipCode string
	Country string
}

// BusinessKey returns the deterministic reference used to detect
// duplicate postings for this order.
func (o Order) BusinessKey() string {
	return "#" + o.Number
}

// CounterpartyKey returns the business key for counterparty dedup: the
// lowercased email, or a synthetic key when the order has none.
func (o Order) CounterpartyKey() string {
	email := strings.ToLower(strings.TrimSpace(o.Contact.Email))
	if email != "" {
		return email
	}
	return "order:" + o.ID
}

// PostingDate returns the calendar date of the order in its source
// timezone, formatted for the ledger API.
func (o Order) PostingDate() string {
	return o.ProcessedAt.Format("2006-01-02")
}
