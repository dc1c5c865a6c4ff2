package recon

import (
	"fmt"
	"strings"
)

// Receipt is a rendered document ready to attach to a posting.
type Receipt struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReceiptSource renders the attachable receipt for a reconciled order.
type ReceiptSource interface {
	Render(o Order, bd Breakdown) (Receipt, error)
}

// TextReceiptSource renders a plain-text order summary. It exists so a
// posting always carries a human-readable trace of what was computed.
type TextReceiptSource struct{}

func NewTextReceiptSource() *TextReceiptSource {
	return &TextReceiptSource{}
}

func (s *TextReceiptSource) Render(o Order, bd Breakdown) (Receipt, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", o.BusinessKey())
	fmt.Fprintf(&b, "Date: %s\n", o.PostingDate())
	fmt.Fprintf(&b, "Currency: %s\n\n", bd.Currency)

	for _, l := range bd.Lines {
		fmt.Fprintf(&b, "%-40s net %s  vat %s  gross %s\n",
			l.Description, formatMinor(l.NetMinor), formatMinor(l.VATMinor), formatMinor(l.GrossMinor))
	}

	fmt.Fprintf(&b, "\nTotal net:   %s\n", formatMinor(bd.NetMinor))
	fmt.Fprintf(&b, "Total vat:   %s\n", formatMinor(bd.VATMinor))
	fmt.Fprintf(&b, "Total gross: %s\n", formatMinor(bd.GrossMinor))

	return Receipt{
		Filename:    fmt.Sprintf("order-%s.txt", o.Number),
		ContentType: "text/plain",
		Data:        []byte(b.String()),
	}, nil
}

func formatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
