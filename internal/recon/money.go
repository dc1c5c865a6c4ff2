package recon

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// roundingToleranceMinor is how far the aggregate gross may drift from
// the order's reported total before the order is rejected. Per-line
// half-to-even rounding can accumulate at most a couple of minor units.
const roundingToleranceMinor = 2

// PostingParams are the accounting knobs for breakdown and posting
// construction. Rates are fractions, amounts minor units.
type PostingParams struct {
	VATRate         decimal.Decimal
	VATCode         string
	SalesAccount    string
	ShippingAccount string
	BankAccount     string
	FeeAccount      string
	FeePercent      decimal.Decimal
	FeeFixedMinor   int64
	Currency        string
}

// BreakdownLine is one computed posting line. Invariant: Net+VAT==Gross.
type BreakdownLine struct {
	Description string
	AccountCode string
	VATCode     string
	NetMinor    int64
	VATMinor    int64
	GrossMinor  int64
}

// Breakdown is the full monetary decomposition of one order. Aggregates
// are sums over the lines, never recomputed from the order total, so
// every minor unit is traceable to a line.
type Breakdown struct {
	Lines      []BreakdownLine
	NetMinor   int64
	VATMinor   int64
	GrossMinor int64
	Currency   string
}

// ComputeBreakdown derives the balanced monetary decomposition of an
// order. Pure: no I/O, no clock.
//
// Per line: gross = round(unitPriceMajor*100)*qty - discountMinor, then
// net = roundHalfToEven(gross/(1+vatRate)) and vat = gross-net. Zero
// shipping lines are dropped. The summed gross must reproduce the
// order's reported total within the rounding tolerance.
func ComputeBreakdown(o Order, p PostingParams) (Breakdown, error) {
	bd := Breakdown{Currency: o.Currency}
	if bd.Currency == "" {
		bd.Currency = p.Currency
	}

	for _, li := range o.LineItems {
		unitMinor, err := parseMinor(li.UnitPrice)
		if err != nil {
			return Breakdown{}, fmt.Errorf("%w: line %q price %q", ErrMalformedAmount, li.Title, li.UnitPrice)
		}
		discountMinor := int64(0)
		if li.Discount != "" {
			discountMinor, err = parseMinor(li.Discount)
			if err != nil {
				return Breakdown{}, fmt.Errorf("%w: line %q discount %q", ErrMalformedAmount, li.Title, li.Discount)
			}
		}

		gross := unitMinor*int64(li.Quantity) - discountMinor
		line := splitGross(li.Title, p.SalesAccount, p.VATCode, gross, p.VATRate)
		bd.Lines = append(bd.Lines, line)
		bd.NetMinor += line.NetMinor
		bd.VATMinor += line.VATMinor
		bd.GrossMinor += line.GrossMinor
	}

	for _, sl := range o.ShippingLines {
		priceMinor, err := parseMinor(sl.Price)
		if err != nil {
			return Breakdown{}, fmt.Errorf("%w: shipping %q price %q", ErrMalformedAmount, sl.Title, sl.Price)
		}
		if priceMinor == 0 {
			// Free shipping never becomes a zero-amount posting line.
			continue
		}

		line := splitGross(sl.Title, p.ShippingAccount, p.VATCode, priceMinor, p.VATRate)
		bd.Lines = append(bd.Lines, line)
		bd.NetMinor += line.NetMinor
		bd.VATMinor += line.VATMinor
		bd.GrossMinor += line.GrossMinor
	}

	if len(bd.Lines) == 0 {
		return Breakdown{}, ErrNoBillableLines
	}

	if o.TotalGross != "" {
		reported, err := parseMinor(o.TotalGross)
		if err != nil {
			return Breakdown{}, fmt.Errorf("%w: order total %q", ErrMalformedAmount, o.TotalGross)
		}
		if diff := bd.GrossMinor - reported; diff > roundingToleranceMinor || diff < -roundingToleranceMinor {
			return Breakdown{}, fmt.Errorf("%w: computed %d, reported %d", ErrTotalsMismatch, bd.GrossMinor, reported)
		}
	}

	return bd, nil
}

// splitGross derives net and vat from a gross amount. Half-to-even on
// the net keeps repeated rounding from drifting in one direction.
func splitGross(description, account, vatCode string, grossMinor int64, vatRate decimal.Decimal) BreakdownLine {
	gross := decimal.NewFromInt(grossMinor)
	net := gross.Div(decimal.NewFromInt(1).Add(vatRate)).RoundBank(0).IntPart()

	return BreakdownLine{
		Description: description,
		AccountCode: account,
		VATCode:     vatCode,
		NetMinor:    net,
		VATMinor:    grossMinor - net,
		GrossMinor:  grossMinor,
	}
}

// Balanced reports whether every line and the aggregate satisfy
// net+vat==gross and the aggregate equals the line sums.
func (bd Breakdown) Balanced() bool {
	var net, vat, gross int64
	for _, l := range bd.Lines {
		if l.NetMinor+l.VATMinor != l.GrossMinor {
			return false
		}
		net += l.NetMinor
		vat += l.VATMinor
		gross += l.GrossMinor
	}
	return net == bd.NetMinor && vat == bd.VATMinor && gross == bd.GrossMinor &&
		bd.NetMinor+bd.VATMinor == bd.GrossMinor
}

// parseMinor converts a major-unit decimal string to integer minor
// units, rounding the major amount to whole minor units first.
func parseMinor(major string) (int64, error) {
	d, err := decimal.NewFromString(major)
	if err != nil {
		return 0, err
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
