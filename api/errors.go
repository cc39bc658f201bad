package api

import (
	"errors"
	"net/http"

	"github.com/cloudx-io/auctionledger/core"
)

// Stable failure codes carried on the wire. Each maps one-to-one to a core
// rejection.
const (
	CodeInvalidDuration     = "invalid_duration"
	CodeSelfBidForbidden    = "self_bid_forbidden"
	CodeAuctionClosed       = "auction_closed"
	CodeBidTooLow           = "bid_too_low"
	CodeInsufficientEscrow  = "insufficient_escrow"
	CodeNotOwner            = "not_owner"
	CodeAuctionNotYetClosed = "auction_not_yet_closed"
	CodeAlreadyEnded        = "already_ended"
	CodeInvalidAuctionID    = "invalid_auction_id"
	CodeBadRequest          = "bad_request"
	CodeInternal            = "internal"
)

// Code maps a registry error to its wire code. Unknown errors become
// CodeInternal.
func Code(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDuration):
		return CodeInvalidDuration
	case errors.Is(err, core.ErrSelfBidForbidden):
		return CodeSelfBidForbidden
	case errors.Is(err, core.ErrAuctionClosed):
		return CodeAuctionClosed
	case errors.Is(err, core.ErrBidTooLow):
		return CodeBidTooLow
	case errors.Is(err, core.ErrInsufficientEscrow):
		return CodeInsufficientEscrow
	case errors.Is(err, core.ErrNotOwner):
		return CodeNotOwner
	case errors.Is(err, core.ErrAuctionNotYetClosed):
		return CodeAuctionNotYetClosed
	case errors.Is(err, core.ErrAlreadyEnded):
		return CodeAlreadyEnded
	case errors.Is(err, core.ErrInvalidAuctionID):
		return CodeInvalidAuctionID
	default:
		return CodeInternal
	}
}

// HTTPStatus maps a wire code to the HTTP status the REST surface responds
// with.
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidDuration, CodeInsufficientEscrow, CodeBadRequest:
		return http.StatusBadRequest
	case CodeSelfBidForbidden, CodeNotOwner:
		return http.StatusForbidden
	case CodeInvalidAuctionID:
		return http.StatusNotFound
	case CodeAuctionClosed, CodeBidTooLow, CodeAuctionNotYetClosed, CodeAlreadyEnded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
