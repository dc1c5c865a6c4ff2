package recon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"olp/backend/internal/ledger"
)

// BuildPosting assembles the complete remote-write payload from a
// breakdown and a resolved counterparty. It re-validates the monetary
// identities before anything goes on the wire.
func BuildPosting(o Order, bd Breakdown, contactID string) (ledger.SaleRequest, error) {
	if !bd.Balanced() {
		return ledger.SaleRequest{}, fmt.Errorf("%w: order %s", ErrUnbalancedPosting, o.BusinessKey())
	}

	req := ledger.SaleRequest{
		Reference:  o.BusinessKey(),
		Date:       o.PostingDate(),
		Currency:   bd.Currency,
		ContactID:  contactID,
		GrossMinor: bd.GrossMinor,
	}

	for _, l := range bd.Lines {
		req.Lines = append(req.Lines, ledger.SaleLine{
			Description: l.Description,
			AccountCode: l.AccountCode,
			VATCode:     l.VATCode,
			NetMinor:    l.NetMinor,
			VATMinor:    l.VATMinor,
			GrossMinor:  l.GrossMinor,
		})
	}

	// Defensive re-check: the built request must reproduce the breakdown
	// exactly, or the posting never leaves this process.
	var gross int64
	for _, l := range req.Lines {
		if l.NetMinor+l.VATMinor != l.GrossMinor {
			return ledger.SaleRequest{}, fmt.Errorf("%w: line %q", ErrUnbalancedPosting, l.Description)
		}
		gross += l.GrossMinor
	}
	if gross != req.GrossMinor {
		return ledger.SaleRequest{}, fmt.Errorf("%w: lines sum %d, total %d", ErrUnbalancedPosting, gross, req.GrossMinor)
	}

	return req, nil
}

// BreakdownFromLines re-derives a breakdown from posting lines. Inverse
// of BuildPosting for audit and reconciliation checks.
func BreakdownFromLines(lines []ledger.SaleLine, currency string) Breakdown {
	bd := Breakdown{Currency: currency}
	for _, l := range lines {
		bd.Lines = append(bd.Lines, BreakdownLine{
			Description: l.Description,
			AccountCode: l.AccountCode,
			VATCode:     l.VATCode,
			NetMinor:    l.NetMinor,
			VATMinor:    l.VATMinor,
			GrossMinor:  l.GrossMinor,
		})
		bd.NetMinor += l.NetMinor
		bd.VATMinor += l.VATMinor
		bd.GrossMinor += l.GrossMinor
	}
	return bd
}

// SettlementLines splits the gross between the bank account and the
// configured processor fee account. When the computed fee would consume
// the whole gross, the fee is dropped and the full amount settles to the
// bank line; the caller logs the anomaly.
func SettlementLines(grossMinor int64, p PostingParams) (lines []ledger.PaymentLine, feeDropped bool) {
	fee := int64(0)
	if !p.FeePercent.IsZero() || p.FeeFixedMinor > 0 {
		fee = p.FeePercent.Mul(decimal.NewFromInt(grossMinor)).RoundBank(0).IntPart() + p.FeeFixedMinor
	}

	if fee >= grossMinor {
		return []ledger.PaymentLine{
			{AccountCode: p.BankAccount, AmountMinor: grossMinor},
		}, fee > 0
	}

	lines = []ledger.PaymentLine{
		{AccountCode: p.BankAccount, AmountMinor: grossMinor - fee},
	}
	if fee > 0 {
		lines = append(lines, ledger.PaymentLine{AccountCode: p.FeeAccount, AmountMinor: fee})
	}
	return lines, false
}
