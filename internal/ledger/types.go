package ledger

import "fmt"

// Contact is a remote counterparty record.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ContactRequest creates a counterparty.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// SaleLine is one posting line. All amounts are minor units.
type SaleLine struct {
	Description string `json:"description"`
	AccountCode string `json:"account"`
	VATCode     string `json:"vatType"`
	NetMinor    int64  `json:"netAmount"`
	VATMinor    int64  `json:"vatAmount"`
	GrossMinor  int64  `json:"grossAmount"`
}

// SaleRequest creates a posting. Reference carries the business key that
// makes the create idempotent under search-before-create.
type SaleRequest struct {
	Reference  string     `json:"reference"`
	Date       string     `json:"date"` // 2006-01-02
	Currency   string     `json:"currency"`
	ContactID  string     `json:"contactId"`
	Lines      []SaleLine `json:"lines"`
	GrossMinor int64      `json:"grossAmount"`
}

// Sale is a remote posting as returned by the ledger.
type Sale struct {
	ID              string     `json:"id"`
	Reference       string     `json:"reference"`
	Date            string     `json:"date"`
	Currency        string     `json:"currency"`
	GrossMinor      int64      `json:"grossAmount"`
	Settled         bool       `json:"settled"`
	AttachmentCount int        `json:"attachmentCount"`
	Lines           []SaleLine `json:"lines"`
}

// PaymentLine settles part of a sale against one account.
type PaymentLine struct {
	AccountCode string `json:"account"`
	AmountMinor int64  `json:"amount"`
}

// PaymentRequest settles a sale, optionally split across bank and fee.
type PaymentRequest struct {
	Date  string        `json:"date"`
	Lines []PaymentLine `json:"lines"`
}

// Account is one row of the remote chart of accounts.
type Account struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// APIError preserves the remote error body verbatim for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger api error %d: %s", e.Status, e.Body)
}

// Retryable reports whether the call may be retried: server faults yes,
// validation failures no.
func (e *APIError) Retryable() bool {
	return e.Status >= 500
}
