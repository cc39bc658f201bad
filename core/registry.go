package core

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

const secondsPerMinute = 60

// Registry owns all auction records and enforces the bid and settlement
// rules over them. A single mutex serializes every operation, so each call
// runs to completion (or fails with no state change) before the next is
// observed, matching the all-or-nothing execution model of the original
// ledger environment.
//
// The registry holds no value and no persistent state of its own: storage,
// value transfer, and time are injected collaborators.
type Registry struct {
	mu       sync.Mutex
	store    Store
	treasury Treasury
	clock    Clock
	events   EventSink
}

// NewRegistry creates a registry over the given collaborators. Store and
// treasury are required; a nil clock defaults to the wall clock and a nil
// events sink discards events.
func NewRegistry(store Store, treasury Treasury, clock Clock, events EventSink) (*Registry, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if treasury == nil {
		return nil, errors.New("treasury cannot be nil")
	}
	if clock == nil {
		clock = systemClock{}
	}
	if events == nil {
		events = noopSink{}
	}
	return &Registry{
		store:    store,
		treasury: treasury,
		clock:    clock,
		events:   events,
	}, nil
}

// Create opens a new auction owned by creator. The creator must escrow at
// least the starting price up front; the escrowed value is captured into
// registry custody and, if the auction settles with no bids, comes back to
// the owner as the settlement payout. The new auction's identifier is
// returned.
func (r *Registry) Create(creator Principal, startingPrice, minimumBidIncrement, durationMinutes, escrowedValue uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if escrowedValue < startingPrice {
		return 0, ErrInsufficientEscrow
	}

	now := r.clock.Now()
	// Reject durations that are zero or would overflow the end time; both
	// fail the "end strictly after start" rule.
	if durationMinutes == 0 || durationMinutes > (uint64(math.MaxInt64)-uint64(now))/secondsPerMinute {
		return 0, ErrInvalidDuration
	}
	endTime := now + int64(durationMinutes)*secondsPerMinute

	if err := r.treasury.Capture(creator, escrowedValue); err != nil {
		return 0, fmt.Errorf("capture creation escrow: %w", err)
	}

	id := r.store.NextAuctionID()
	rec := AuctionRecord{
		ID:                  id,
		Owner:               creator,
		HighestBidder:       NoPrincipal,
		StartingPrice:       startingPrice,
		MinimumBidIncrement: minimumBidIncrement,
		CurrentHighestBid:   startingPrice,
		StartTime:           now,
		EndTime:             endTime,
		Ended:               false,
	}
	r.store.PutAuction(rec)
	r.store.AppendOwnerAuction(creator, id)

	r.events.Publish(Event{
		Type:      EventAuctionCreated,
		AuctionID: id,
		Owner:     creator,
		Amount:    startingPrice,
		At:        now,
	})
	return id, nil
}

// Bid places a bid on an open auction. The bid must strictly exceed the
// current highest bid plus the minimum increment, and the bidder must escrow
// at least the bid amount. On acceptance the displaced bidder, if any, is
// refunded exactly their previous bid out of custody.
//
// Escrow above the stated bid amount is captured along with it and has no
// refund path; the original contract retains it silently and this port
// preserves that behavior (the residue stays visible in the treasury's
// custody balance).
func (r *Registry) Bid(bidder Principal, auctionID uint64, bidAmount, escrowedValue uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.store.GetAuction(auctionID)
	if !ok || rec.Owner == NoPrincipal {
		return ErrInvalidAuctionID
	}
	if bidder == rec.Owner {
		return ErrSelfBidForbidden
	}
	now := r.clock.Now()
	if now >= rec.EndTime || rec.Ended {
		return ErrAuctionClosed
	}
	// The increment rule is strict: a bid of exactly current+increment is
	// rejected. An increment that would overflow the threshold makes every
	// bid too low.
	if rec.MinimumBidIncrement > math.MaxUint64-rec.CurrentHighestBid {
		return ErrBidTooLow
	}
	if bidAmount <= rec.CurrentHighestBid+rec.MinimumBidIncrement {
		return ErrBidTooLow
	}
	if escrowedValue < bidAmount {
		return ErrInsufficientEscrow
	}

	if err := r.treasury.Capture(bidder, escrowedValue); err != nil {
		return fmt.Errorf("capture bid escrow: %w", err)
	}
	if rec.HighestBidder != NoPrincipal {
		// Custody always covers the previous bid, so this fails only on a
		// broken treasury.
		if err := r.treasury.Payout(rec.HighestBidder, rec.CurrentHighestBid); err != nil {
			return fmt.Errorf("refund displaced bidder: %w", err)
		}
	}

	rec.HighestBidder = bidder
	rec.CurrentHighestBid = bidAmount
	r.store.PutAuction(rec)

	r.events.Publish(Event{
		Type:      EventBidAccepted,
		AuctionID: auctionID,
		Owner:     rec.Owner,
		Bidder:    bidder,
		Amount:    bidAmount,
		At:        now,
	})
	return nil
}

// End settles an auction. Only the owner may settle, only at or after the
// end time, and only once. The current highest bid is paid out of custody to
// the owner and the record is frozen. For an auction that never received a
// bid this pays out the starting price, which is the owner's own
// creation-time escrow coming back.
func (r *Registry) End(caller Principal, auctionID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.store.GetAuction(auctionID)
	if !ok || rec.Owner == NoPrincipal {
		return ErrInvalidAuctionID
	}
	if caller != rec.Owner {
		return ErrNotOwner
	}
	now := r.clock.Now()
	if now < rec.EndTime {
		return ErrAuctionNotYetClosed
	}
	if rec.Ended {
		return ErrAlreadyEnded
	}

	if err := r.treasury.Payout(rec.Owner, rec.CurrentHighestBid); err != nil {
		return fmt.Errorf("pay out settlement: %w", err)
	}

	rec.Ended = true
	r.store.PutAuction(rec)

	r.events.Publish(Event{
		Type:      EventAuctionSettled,
		AuctionID: auctionID,
		Owner:     rec.Owner,
		Bidder:    rec.HighestBidder,
		Amount:    rec.CurrentHighestBid,
		At:        now,
	})
	return nil
}

// AuctionDetails returns the stored record for an auction id.
func (r *Registry) AuctionDetails(auctionID uint64) (AuctionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.store.GetAuction(auctionID)
	if !ok || rec.Owner == NoPrincipal {
		return AuctionRecord{}, ErrInvalidAuctionID
	}
	return rec, nil
}

// OwnerAuctions returns the ids of every auction the owner has created, in
// creation order. Unknown owners get an empty list.
func (r *Registry) OwnerAuctions(owner Principal) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.store.OwnerAuctions(owner)
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}
