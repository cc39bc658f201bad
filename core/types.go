package core

// Principal identifies an addressable party (an auction owner or a bidder).
// Principals are opaque, comparable identities authenticated by the hosting
// environment; the registry never inspects them beyond equality checks.
type Principal string

// NoPrincipal is the zero principal. A record's HighestBidder equals
// NoPrincipal until the first bid is accepted, and a stored record with
// Owner == NoPrincipal marks an identifier that was never created.
const NoPrincipal Principal = ""

// AuctionRecord is the full state of one auction. A record is created exactly
// once, mutated zero or more times by accepted bids, and frozen by settlement.
// Records are never deleted; a settled auction remains readable indefinitely.
type AuctionRecord struct {
	// ID is the registry-wide identifier assigned at creation.
	ID uint64 `json:"id"`

	// Owner is the creating principal. Never changes.
	Owner Principal `json:"owner"`

	// HighestBidder is NoPrincipal until a bid is accepted, then always the
	// principal of the most recent accepted bid.
	HighestBidder Principal `json:"highest_bidder,omitempty"`

	// StartingPrice is the minimum acceptable value fixed at creation.
	StartingPrice uint64 `json:"starting_price"`

	// MinimumBidIncrement is the delta a new bid must strictly exceed the
	// current highest bid by. Fixed at creation.
	MinimumBidIncrement uint64 `json:"minimum_bid_increment"`

	// CurrentHighestBid starts equal to StartingPrice and only ever grows.
	CurrentHighestBid uint64 `json:"current_highest_bid"`

	// StartTime and EndTime are seconds since the Unix epoch. EndTime is
	// fixed at creation and always strictly after StartTime.
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`

	// Ended becomes true at settlement and never reverts.
	Ended bool `json:"ended"`
}

// Open reports whether the auction still accepts bids at the given time.
func (r AuctionRecord) Open(now int64) bool {
	return !r.Ended && now < r.EndTime
}
