package shopify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olp/backend/internal/recon"
)

func TestWireOrderToDomain(t *testing.T) {
	raw := `{
		"order": {
			"id": 5678901234,
			"name": "#3403",
			"order_number": 3403,
			"financial_status": "paid",
			"currency": "NOK",
			"total_price": "642.00",
			"total_tax": "128.40",
			"processed_at": "2024-03-15T12:34:56+01:00",
			"line_items": [
				{"title": "Custom holder", "price": "578.00", "quantity": 1, "total_discount": "0.00"}
			],
			"shipping_lines": [
				{"title": "Standard shipping", "price": "64.00"}
			],
			"email": "kari@example.com",
			"customer": {"email": "kari@example.com", "first_name": "Kari", "last_name": "Nordmann"},
			"billing_address": {"name": "Kari Nordmann", "address1": "Storgata 1", "city": "Oslo", "zip": "0155", "country": "Norway"}
		}
	}`

	var envelope orderEnvelope
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope))

	o := envelope.Order.toDomain()
	assert.Equal(t, "5678901234", o.ID)
	assert.Equal(t, "3403", o.Number)
	assert.Equal(t, "#3403", o.BusinessKey())
	assert.Equal(t, recon.PaymentStatusPaid, o.PaymentStatus)
	assert.Equal(t, "642.00", o.TotalGross)
	assert.Equal(t, "2024-03-15", o.PostingDate())
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, "578.00", o.LineItems[0].UnitPrice)
	require.Len(t, o.ShippingLines, 1)
	assert.Equal(t, "kari@example.com", o.Contact.Email)
	assert.Equal(t, "Kari Nordmann", o.Contact.Name)
	assert.Equal(t, "Oslo", o.Contact.City)
}

func TestWireOrderCancelledWinsOverPaid(t *testing.T) {
	cancelledAt := "2024-03-16T08:00:00+01:00"
	w := wireOrder{FinancialStatus: "paid", CancelledAt: &cancelledAt}
	assert.Equal(t, recon.PaymentStatusCancelled, mapFinancialStatus(w))
}

func TestWireOrderFinancialStatuses(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"paid", recon.PaymentStatusPaid},
		{"partially_refunded", recon.PaymentStatusPaid},
		{"pending", recon.PaymentStatusUnpaid},
		{"refunded", recon.PaymentStatusUnpaid},
		{"", recon.PaymentStatusUnpaid},
	}

	for _, tt := range tests {
		w := wireOrder{FinancialStatus: tt.status}
		assert.Equal(t, tt.want, mapFinancialStatus(w), "status %q", tt.status)
	}
}

func TestCounterpartyKeyFallsBackToOrderID(t *testing.T) {
	o := recon.Order{ID: "42"}
	assert.Equal(t, "order:42", o.CounterpartyKey())

	o.Contact.Email = " Kari@Example.COM "
	assert.Equal(t, "kari@example.com", o.CounterpartyKey())
}
