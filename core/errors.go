package core

import "errors"

// Every failure below rejects the attempted operation as a whole: no partial
// state change is observable and no value moves. Callers decide whether to
// retry with corrected inputs.
var (
	// ErrInvalidDuration means the requested duration does not produce an
	// end time strictly after the current time (zero or overflowing).
	ErrInvalidDuration = errors.New("duration does not produce a future end time")

	// ErrSelfBidForbidden means the bidder is the auction's owner.
	ErrSelfBidForbidden = errors.New("owner cannot bid on own auction")

	// ErrAuctionClosed means a bid arrived at or after the end time.
	ErrAuctionClosed = errors.New("auction is closed for bidding")

	// ErrBidTooLow means the bid does not strictly exceed the current
	// highest bid plus the minimum increment.
	ErrBidTooLow = errors.New("bid does not exceed current highest bid plus minimum increment")

	// ErrInsufficientEscrow means the value attached to the call does not
	// cover the stated bid amount or starting price.
	ErrInsufficientEscrow = errors.New("escrowed value does not cover stated amount")

	// ErrNotOwner means a principal other than the owner attempted to end
	// the auction.
	ErrNotOwner = errors.New("caller is not the auction owner")

	// ErrAuctionNotYetClosed means settlement was attempted before the end
	// time was reached.
	ErrAuctionNotYetClosed = errors.New("auction end time not yet reached")

	// ErrAlreadyEnded means settlement was attempted a second time.
	ErrAlreadyEnded = errors.New("auction already settled")

	// ErrInvalidAuctionID means no auction was ever created under the
	// given identifier.
	ErrInvalidAuctionID = errors.New("unknown auction id")
)
