package recon

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() PostingParams {
	return PostingParams{
		VATRate:         decimal.NewFromFloat(0.25),
		VATCode:         "HIGH",
		SalesAccount:    "3000",
		ShippingAccount: "3100",
		BankAccount:     "1920",
		FeeAccount:      "7770",
		Currency:        "NOK",
	}
}

func TestComputeBreakdownScenario(t *testing.T) {
	// Order of 642.00: one product line at 578.00 and shipping at 64.00.
	o := Order{
		ID:          "5678901234",
		Number:      "3403",
		Currency:    "NOK",
		TotalGross:  "642.00",
		ProcessedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		LineItems: []OrderLine{
			{Title: "Custom holder", UnitPrice: "578.00", Quantity: 1},
		},
		ShippingLines: []ShippingLine{
			{Title: "Standard shipping", Price: "64.00"},
		},
	}

	bd, err := ComputeBreakdown(o, testParams())
	require.NoError(t, err)
	require.Len(t, bd.Lines, 2)

	product := bd.Lines[0]
	assert.Equal(t, int64(46240), product.NetMinor)
	assert.Equal(t, int64(11560), product.VATMinor)
	assert.Equal(t, int64(57800), product.GrossMinor)
	assert.Equal(t, "3000", product.AccountCode)

	shipping := bd.Lines[1]
	assert.Equal(t, int64(5120), shipping.NetMinor)
	assert.Equal(t, int64(1280), shipping.VATMinor)
	assert.Equal(t, int64(6400), shipping.GrossMinor)
	assert.Equal(t, "3100", shipping.AccountCode)

	assert.Equal(t, int64(64200), bd.GrossMinor)
	assert.True(t, bd.Balanced())
}

func TestComputeBreakdownProperty(t *testing.T) {
	// net + vat == gross for every line and for the aggregate, across
	// randomized prices, quantities and VAT rates.
	rng := rand.New(rand.NewSource(42))
	rates := []float64{0.0, 0.12, 0.15, 0.25}

	for i := 0; i < 500; i++ {
		params := testParams()
		params.VATRate = decimal.NewFromFloat(rates[rng.Intn(len(rates))])

		nLines := 1 + rng.Intn(5)
		o := Order{Number: "1", Currency: "NOK"}
		for j := 0; j < nLines; j++ {
			priceMinor := 1 + rng.Int63n(1000000)
			o.LineItems = append(o.LineItems, OrderLine{
				Title:     fmt.Sprintf("line-%d", j),
				UnitPrice: decimal.NewFromInt(priceMinor).Div(decimal.NewFromInt(100)).StringFixed(2),
				Quantity:  1 + rng.Intn(9),
			})
		}

		bd, err := ComputeBreakdown(o, params)
		require.NoError(t, err)

		var net, vat, gross int64
		for _, l := range bd.Lines {
			require.Equal(t, l.GrossMinor, l.NetMinor+l.VATMinor, "line %s", l.Description)
			net += l.NetMinor
			vat += l.VATMinor
			gross += l.GrossMinor
		}
		require.Equal(t, net, bd.NetMinor)
		require.Equal(t, vat, bd.VATMinor)
		require.Equal(t, gross, bd.GrossMinor)
		require.True(t, bd.Balanced())
	}
}

func TestComputeBreakdownDropsFreeShipping(t *testing.T) {
	o := Order{
		Number: "9",
		LineItems: []OrderLine{
			{Title: "Widget", UnitPrice: "100.00", Quantity: 1},
		},
		ShippingLines: []ShippingLine{
			{Title: "Free shipping", Price: "0.00"},
		},
	}

	bd, err := ComputeBreakdown(o, testParams())
	require.NoError(t, err)
	assert.Len(t, bd.Lines, 1)
	assert.Equal(t, "Widget", bd.Lines[0].Description)
}

func TestComputeBreakdownDiscount(t *testing.T) {
	o := Order{
		Number: "10",
		LineItems: []OrderLine{
			{Title: "Widget", UnitPrice: "100.00", Quantity: 2, Discount: "50.00"},
		},
	}

	bd, err := ComputeBreakdown(o, testParams())
	require.NoError(t, err)
	assert.Equal(t, int64(15000), bd.GrossMinor)
	assert.True(t, bd.Balanced())
}

func TestComputeBreakdownNoBillableLines(t *testing.T) {
	o := Order{
		Number: "11",
		ShippingLines: []ShippingLine{
			{Title: "Free shipping", Price: "0.00"},
		},
	}

	_, err := ComputeBreakdown(o, testParams())
	assert.True(t, errors.Is(err, ErrNoBillableLines))
}

func TestComputeBreakdownTotalsMismatch(t *testing.T) {
	o := Order{
		Number:     "12",
		TotalGross: "200.00",
		LineItems: []OrderLine{
			{Title: "Widget", UnitPrice: "100.00", Quantity: 1},
		},
	}

	_, err := ComputeBreakdown(o, testParams())
	assert.True(t, errors.Is(err, ErrTotalsMismatch))
}

func TestComputeBreakdownWithinTolerance(t *testing.T) {
	// A reported total drifting two minor units from the computed sum is
	// accepted as rounding noise.
	o := Order{
		Number:     "13",
		TotalGross: "100.02",
		LineItems: []OrderLine{
			{Title: "Widget", UnitPrice: "100.00", Quantity: 1},
		},
	}

	bd, err := ComputeBreakdown(o, testParams())
	require.NoError(t, err)
	assert.Equal(t, int64(10000), bd.GrossMinor)
}

func TestComputeBreakdownMalformedAmount(t *testing.T) {
	o := Order{
		Number: "14",
		LineItems: []OrderLine{
			{Title: "Widget", UnitPrice: "not-a-number", Quantity: 1},
		},
	}

	_, err := ComputeBreakdown(o, testParams())
	assert.True(t, errors.Is(err, ErrMalformedAmount))
}

func TestSplitGrossRounding(t *testing.T) {
	// 101 / 1.25 = 80.8 -> net 81, vat 20; the identity holds regardless
	// of which way the net rounded.
	line := splitGross("x", "3000", "HIGH", 101, decimal.NewFromFloat(0.25))
	assert.Equal(t, int64(81), line.NetMinor)
	assert.Equal(t, int64(20), line.VATMinor)
	assert.Equal(t, line.GrossMinor, line.NetMinor+line.VATMinor)

	// A true tie rounds to the even neighbor: 9 / 1.2 = 7.5 -> 8.
	tie := splitGross("y", "3000", "MID", 9, decimal.NewFromFloat(0.2))
	assert.Equal(t, int64(8), tie.NetMinor)
	assert.Equal(t, int64(1), tie.VATMinor)
}
