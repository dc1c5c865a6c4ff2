package shopify

import (
	"strings"
	"time"

	"olp/backend/internal/recon"
)

// Wire types for the admin API order payload. Only the fields the
// reconciliation engine reads are mapped.

type orderEnvelope struct {
	Order wireOrder `json:"order"`
}

type ordersEnvelope struct {
	Orders []wireOrder `json:"orders"`
}

type wireOrder struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"` // "#3403"
	OrderNumber     int64              `json:"order_number"`
	FinancialStatus string             `json:"financial_status"`
	Currency        string             `json:"currency"`
	TotalPrice      string             `json:"total_price"`
	TotalTax        string             `json:"total_tax"`
	ProcessedAt     string             `json:"processed_at"`
	CancelledAt     *string            `json:"cancelled_at"`
	LineItems       []wireLineItem     `json:"line_items"`
	ShippingLines   []wireShippingLine `json:"shipping_lines"`
	Email           string             `json:"email"`
	Customer        *wireCustomer      `json:"customer"`
	BillingAddress  *wireAddress       `json:"billing_address"`
}

type wireLineItem struct {
	Title         string `json:"title"`
	Price         string `json:"price"`
	Quantity      int    `json:"quantity"`
	TotalDiscount string `json:"total_discount"`
}

type wireShippingLine struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

type wireCustomer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type wireAddress struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// toDomain converts the wire order into the engine's snapshot.
func (w wireOrder) toDomain() recon.Order {
	o := recon.Order{
		ID:            formatID(w.ID),
		Number:        strings.TrimPrefix(w.Name, "#"),
		PaymentStatus: mapFinancialStatus(w),
		Currency:      w.Currency,
		TotalGross:    w.TotalPrice,
		TotalTax:      w.TotalTax,
	}

	if t, err := time.Parse(time.RFC3339, w.ProcessedAt); err == nil {
		o.ProcessedAt = t
	}

	for _, li := range w.LineItems {
		o.LineItems = append(o.LineItems, recon.OrderLine{
			Title:     li.Title,
			UnitPrice: li.Price,
			Quantity:  li.Quantity,
			Discount:  li.TotalDiscount,
		})
	}
	for _, sl := range w.ShippingLines {
		o.ShippingLines = append(o.ShippingLines, recon.ShippingLine{
			Title: sl.Title,
			Price: sl.Price,
		})
	}

	o.Contact.Email = w.Email
	if o.Contact.Email == "" && w.Customer != nil {
		o.Contact.Email = w.Customer.Email
	}
	if w.Customer != nil {
		o.Contact.Name = strings.TrimSpace(w.Customer.FirstName + " " + w.Customer.LastName)
	}
	if w.BillingAddress != nil {
		if o.Contact.Name == "" {
			o.Contact.Name = w.BillingAddress.Name
		}
		o.Contact.Address = w.BillingAddress.Address1
		o.Contact.City = w.BillingAddress.City
		o.Contact.ZipCode = w.BillingAddress.Zip
		o.Contact.Country = w.BillingAddress.Country
	}

	return o
}

func mapFinancialStatus(w wireOrder) string {
	if w.CancelledAt != nil && *w.CancelledAt != "" {
		return recon.PaymentStatusCancelled
	}
	switch w.FinancialStatus {
	case "paid", "partially_refunded":
		return recon.PaymentStatusPaid
	default:
		return recon.PaymentStatusUnpaid
	}
}
