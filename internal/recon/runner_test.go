package recon

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olp/backend/internal/ledger"
	"olp/backend/pkg/logger"
)

type fakeGateway struct {
	salesByRef map[string]*ledger.Sale
	contacts   map[string]*ledger.Contact

	createSaleCalls int
	paymentCalls    int
	attachCalls     int
	contactCalls    int

	attachErr error
	createErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		salesByRef: make(map[string]*ledger.Sale),
		contacts:   make(map[string]*ledger.Contact),
	}
}

func (g *fakeGateway) CreateContact(ctx context.Context, req ledger.ContactRequest) (*ledger.Contact, error) {
	g.contactCalls++
	c := &ledger.Contact{ID: fmt.Sprintf("c-%d", g.contactCalls), Name: req.Name, Email: req.Email}
	g.contacts[req.Email] = c
	return c, nil
}

func (g *fakeGateway) SearchContactByEmail(ctx context.Context, email string) (*ledger.Contact, error) {
	return g.contacts[email], nil
}

func (g *fakeGateway) CreateSale(ctx context.Context, req ledger.SaleRequest) (*ledger.Sale, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.createSaleCalls++
	sale := &ledger.Sale{
		ID:         fmt.Sprintf("s-%d", g.createSaleCalls),
		Reference:  req.Reference,
		Date:       req.Date,
		Currency:   req.Currency,
		GrossMinor: req.GrossMinor,
		Lines:      req.Lines,
	}
	g.salesByRef[req.Reference] = sale
	return sale, nil
}

func (g *fakeGateway) SearchSaleByRef(ctx context.Context, reference string) (*ledger.Sale, error) {
	return g.salesByRef[reference], nil
}

func (g *fakeGateway) AddPayment(ctx context.Context, saleID string, req ledger.PaymentRequest) (string, error) {
	g.paymentCalls++
	for _, s := range g.salesByRef {
		if s.ID == saleID {
			s.Settled = true
		}
	}
	return "p-1", nil
}

func (g *fakeGateway) AttachDocument(ctx context.Context, saleID, filename string, data []byte) (string, error) {
	if g.attachErr != nil {
		return "", g.attachErr
	}
	g.attachCalls++
	for _, s := range g.salesByRef {
		if s.ID == saleID {
			s.AttachmentCount++
		}
	}
	return "a-1", nil
}

func (g *fakeGateway) ListContacts(ctx context.Context, cursor string) ([]ledger.Contact, string, error) {
	return nil, "", nil
}

func (g *fakeGateway) ListSales(ctx context.Context, cursor string) ([]ledger.Sale, string, error) {
	return nil, "", nil
}

func (g *fakeGateway) ListAccounts(ctx context.Context, cursor string) ([]ledger.Account, string, error) {
	return nil, "", nil
}

type fakeLoader struct {
	orders map[string]*Order
	calls  int
}

func (l *fakeLoader) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	l.calls++
	o, ok := l.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order not found: %s", orderID)
	}
	return o, nil
}

func paidOrder() *Order {
	return &Order{
		ID:            "5678901234",
		Number:        "3403",
		PaymentStatus: PaymentStatusPaid,
		Currency:      "NOK",
		TotalGross:    "642.00",
		ProcessedAt:   time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		LineItems: []OrderLine{
			{Title: "Custom holder", UnitPrice: "578.00", Quantity: 1},
		},
		ShippingLines: []ShippingLine{
			{Title: "Standard shipping", Price: "64.00"},
		},
		Contact: Contact{Email: "kari@example.com", Name: "Kari Nordmann"},
	}
}

func newTestRunner(gw *fakeGateway, loader *fakeLoader) *Runner {
	guard := NewIdempotencyGuard(nil, gw, logger.NopLogger{})
	return NewRunner(loader, gw, guard, NewTextReceiptSource(), testParams(), logger.NopLogger{})
}

func TestRunCreatesSettlesAndAttaches(t *testing.T) {
	gw := newFakeGateway()
	loader := &fakeLoader{orders: map[string]*Order{"5678901234": paidOrder()}}
	r := newTestRunner(gw, loader)

	out, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), false)
	require.NoError(t, err)

	assert.Equal(t, StepDone, out.Step)
	assert.Equal(t, "#3403", out.OrderKey)
	assert.Equal(t, "s-1", out.PostingID)
	assert.False(t, out.Existing)

	assert.Equal(t, 1, gw.createSaleCalls)
	assert.Equal(t, 1, gw.paymentCalls)
	assert.Equal(t, 1, gw.attachCalls)

	sale := gw.salesByRef["#3403"]
	require.NotNil(t, sale)
	assert.True(t, sale.Settled)
	assert.Equal(t, 1, sale.AttachmentCount)
}

func TestRunIsIdempotentAcrossRedelivery(t *testing.T) {
	gw := newFakeGateway()
	loader := &fakeLoader{orders: map[string]*Order{"5678901234": paidOrder()}}
	r := newTestRunner(gw, loader)

	_, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), false)
	require.NoError(t, err)

	// Redelivery of the same order: exactly one posting after both runs.
	out, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), false)
	require.NoError(t, err)

	assert.True(t, out.Existing)
	assert.Equal(t, StepDone, out.Step)
	assert.Equal(t, 1, gw.createSaleCalls)
	assert.Equal(t, 1, gw.paymentCalls)
	assert.Equal(t, 1, gw.attachCalls)
}

func TestRunExistingWithoutReceiptAttachesOnly(t *testing.T) {
	gw := newFakeGateway()
	gw.salesByRef["#3403"] = &ledger.Sale{ID: "s-existing", Reference: "#3403", Settled: true}
	loader := &fakeLoader{orders: map[string]*Order{"5678901234": paidOrder()}}
	r := newTestRunner(gw, loader)

	out, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), false)
	require.NoError(t, err)

	assert.True(t, out.Existing)
	assert.Equal(t, "s-existing", out.PostingID)
	assert.Equal(t, 0, gw.createSaleCalls)
	assert.Equal(t, 0, gw.paymentCalls)
	assert.Equal(t, 1, gw.attachCalls)
}

func TestRunAttachFailureIsNonFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.attachErr = fmt.Errorf("attachment service down")
	loader := &fakeLoader{orders: map[string]*Order{"5678901234": paidOrder()}}
	r := newTestRunner(gw, loader)

	out, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), false)
	require.NoError(t, err)
	assert.Equal(t, StepDone, out.Step)
	assert.Equal(t, 1, gw.createSaleCalls)
	assert.Equal(t, 1, gw.paymentCalls)
}

func TestRunSkipsUnpaidOrder(t *testing.T) {
	o := paidOrder()
	o.PaymentStatus = PaymentStatusUnpaid
	gw := newFakeGateway()
	loader := &fakeLoader{orders: map[string]*Order{"5678901234": o}}
	r := newTestRunner(gw, loader)

	out, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), false)
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Equal(t, 0, gw.createSaleCalls)
}

func TestRunDryRunPerformsNoWrites(t *testing.T) {
	gw := newFakeGateway()
	loader := &fakeLoader{orders: map[string]*Order{"5678901234": paidOrder()}}
	r := newTestRunner(gw, loader)

	out, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), true)
	require.NoError(t, err)
	assert.True(t, out.DryRun)
	assert.Equal(t, 0, gw.createSaleCalls)
	assert.Equal(t, 0, gw.paymentCalls)
	assert.Equal(t, 0, gw.attachCalls)
	assert.Equal(t, 0, gw.contactCalls)
}

func TestRunUnbalancedFailsBeforeRemoteCall(t *testing.T) {
	o := paidOrder()
	o.TotalGross = "900.00" // disagrees with the lines
	gw := newFakeGateway()
	loader := &fakeLoader{orders: map[string]*Order{"5678901234": o}}
	r := newTestRunner(gw, loader)

	out, err := r.Run(context.Background(), "5678901234", NewCounterpartyCache(), false)
	require.Error(t, err)
	assert.Equal(t, StepBuildingPosting, out.Step)
	assert.Equal(t, 0, gw.createSaleCalls)
	assert.Equal(t, 0, gw.contactCalls)
}
