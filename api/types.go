// Package api defines the wire types shared by the connection server and the
// HTTP surface. Each request carries a type discriminator so the connection
// server can dispatch before fully decoding.
package api

import "github.com/cloudx-io/auctionledger/core"

// Request type discriminators.
const (
	TypeCreateAuction  = "create_auction"
	TypePlaceBid       = "place_bid"
	TypeEndAuction     = "end_auction"
	TypeAuctionDetails = "auction_details"
	TypeOwnerAuctions  = "owner_auctions"
	TypePing           = "ping"
)

// CreateAuctionRequest opens a new auction. EscrowedValue is the creator's
// up-front stake and must cover the starting price.
type CreateAuctionRequest struct {
	Type                string         `json:"type"`
	Creator             core.Principal `json:"creator"`
	StartingPrice       uint64         `json:"starting_price"`
	MinimumBidIncrement uint64         `json:"minimum_bid_increment"`
	DurationMinutes     uint64         `json:"duration_minutes"`
	EscrowedValue       uint64         `json:"escrowed_value"`
}

// CreateAuctionResponse returns the identifier of the new auction.
type CreateAuctionResponse struct {
	Type      string `json:"type"`
	AuctionID uint64 `json:"auction_id"`
}

// PlaceBidRequest bids on an open auction. EscrowedValue must cover
// BidAmount.
type PlaceBidRequest struct {
	Type          string         `json:"type"`
	Bidder        core.Principal `json:"bidder"`
	AuctionID     uint64         `json:"auction_id"`
	BidAmount     uint64         `json:"bid_amount"`
	EscrowedValue uint64         `json:"escrowed_value"`
}

// EndAuctionRequest settles an auction; only its owner may call it.
type EndAuctionRequest struct {
	Type      string         `json:"type"`
	Caller    core.Principal `json:"caller"`
	AuctionID uint64         `json:"auction_id"`
}

// AckResponse acknowledges a state-changing request that returns no data.
type AckResponse struct {
	Type      string `json:"type"`
	AuctionID uint64 `json:"auction_id"`
}

// EndAuctionResponse acknowledges settlement. When the server holds a
// receipt signing key, ReceiptCOSEBase64 carries the base64-encoded
// COSE_Sign1 settlement receipt.
type EndAuctionResponse struct {
	Type              string `json:"type"`
	AuctionID         uint64 `json:"auction_id"`
	Amount            uint64 `json:"amount"`
	ReceiptCOSEBase64 string `json:"receipt_cose_base64,omitempty"`
}

// AuctionDetailsRequest reads one auction record.
type AuctionDetailsRequest struct {
	Type      string `json:"type"`
	AuctionID uint64 `json:"auction_id"`
}

// AuctionDetailsResponse carries the stored record verbatim.
type AuctionDetailsResponse struct {
	Type    string             `json:"type"`
	Auction core.AuctionRecord `json:"auction"`
}

// OwnerAuctionsRequest lists an owner's auction ids.
type OwnerAuctionsRequest struct {
	Type  string         `json:"type"`
	Owner core.Principal `json:"owner"`
}

// OwnerAuctionsResponse returns the owner's ids in creation order.
type OwnerAuctionsResponse struct {
	Type       string         `json:"type"`
	Owner      core.Principal `json:"owner"`
	AuctionIDs []uint64       `json:"auction_ids"`
}

// ErrorResponse reports a rejected operation. Code is one of the stable
// failure codes; Message is human-readable detail.
type ErrorResponse struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse builds the error envelope for err.
func NewErrorResponse(err error) ErrorResponse {
	return ErrorResponse{
		Type:    "error",
		Code:    Code(err),
		Message: err.Error(),
	}
}
