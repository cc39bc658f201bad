// Package server exposes the auction registry over two surfaces: a
// one-request-per-connection JSON protocol on a vsock or TCP listener, and a
// REST API with a websocket event feed.
package server

import (
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/cloudx-io/auctionledger/api"
	"github.com/cloudx-io/auctionledger/core"
	"github.com/cloudx-io/auctionledger/ledger"
	"github.com/cloudx-io/auctionledger/receipt"
)

// Server binds the registry to the serving surfaces. The receipt signer is
// optional; without it settlement responses simply omit the receipt. The
// ledger is optional too and only backs the balance read endpoint.
type Server struct {
	registry *core.Registry
	signer   *receipt.Signer
	ledger   *ledger.Ledger
}

// New creates a server for the given registry.
func New(registry *core.Registry, signer *receipt.Signer, led *ledger.Ledger) (*Server, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	return &Server{registry: registry, signer: signer, ledger: led}, nil
}

// settle runs the end operation and, when a signer is configured, issues the
// settlement receipt for the frozen record.
func (s *Server) settle(caller core.Principal, auctionID uint64) (api.EndAuctionResponse, error) {
	if err := s.registry.End(caller, auctionID); err != nil {
		return api.EndAuctionResponse{}, err
	}
	rec, err := s.registry.AuctionDetails(auctionID)
	if err != nil {
		return api.EndAuctionResponse{}, err
	}

	resp := api.EndAuctionResponse{
		Type:      "auction_settled",
		AuctionID: auctionID,
		Amount:    rec.CurrentHighestBid,
	}
	if s.signer != nil {
		signed, err := s.signer.Sign(rec, time.Now().Unix())
		if err != nil {
			// Settlement already committed; a receipt failure must not
			// surface as an operation failure.
			log.Printf("ERROR: Failed to sign settlement receipt for auction %d: %v", auctionID, err)
		} else {
			resp.ReceiptCOSEBase64 = base64.StdEncoding.EncodeToString(signed)
		}
	}
	return resp, nil
}
