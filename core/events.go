package core

// EventType names a registry lifecycle notification.
type EventType string

const (
	EventAuctionCreated EventType = "auction_created"
	EventBidAccepted    EventType = "bid_accepted"
	EventAuctionSettled EventType = "auction_settled"
)

// Event describes one accepted state transition. Events are emitted after
// the transition has committed; rejected operations emit nothing.
type Event struct {
	Type      EventType `json:"type"`
	AuctionID uint64    `json:"auction_id"`
	Owner     Principal `json:"owner,omitempty"`
	Bidder    Principal `json:"bidder,omitempty"`
	Amount    uint64    `json:"amount,omitempty"`
	At        int64     `json:"at"`
}

// EventSink receives registry events. Publish must not block for long; it is
// called while the registry's operation lock is held.
type EventSink interface {
	Publish(ev Event)
}

// noopSink discards events when no sink is configured
type noopSink struct{}

func (noopSink) Publish(Event) {}
