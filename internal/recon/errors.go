package recon

import "errors"

var (
	// ErrNoBillableLines means the order yielded zero lines after
	// filtering; there is nothing to post.
	ErrNoBillableLines = errors.New("order has no billable lines")

	// ErrTotalsMismatch means the computed aggregate gross drifted more
	// than the rounding tolerance from the order's reported total.
	ErrTotalsMismatch = errors.New("computed totals do not reconcile with order total")

	// ErrUnbalancedPosting means net+vat != gross somewhere in a built
	// posting. The posting is never sent.
	ErrUnbalancedPosting = errors.New("posting lines do not balance")

	// ErrMalformedAmount means a monetary string on the order could not
	// be parsed.
	ErrMalformedAmount = errors.New("malformed monetary amount")
)
