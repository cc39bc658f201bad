package core

// Treasury is the atomic value-transfer capability the hosting environment
// supplies. The registry never holds value itself; it only directs movements
// between principals and its own custody pool. Each call either fully
// completes or fails with no movement at all.
//
// Custody invariant: every amount the registry pays out was previously
// captured, so a Payout of a refund or settlement can only fail if the
// treasury implementation itself is broken.
type Treasury interface {
	// Capture moves amount from the principal's balance into registry
	// custody. Fails if the principal cannot cover the amount.
	Capture(from Principal, amount uint64) error

	// Payout moves amount from registry custody to the principal's balance.
	// Fails if custody cannot cover the amount.
	Payout(to Principal, amount uint64) error
}
