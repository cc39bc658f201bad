package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/mdlayher/vsock"

	"github.com/cloudx-io/auctionledger/api"
)

const connReadDeadline = 30 * time.Second

// ConnServer speaks the one-request-per-connection JSON protocol: the client
// writes a single JSON request and half-closes, the server writes a single
// JSON response and closes. A fixed-size worker pool bounds concurrency;
// connections arriving while the pool is full are rejected immediately.
type ConnServer struct {
	srv        *Server
	maxWorkers int
}

// NewConnServer creates a connection server with the given worker budget.
func NewConnServer(srv *Server, maxWorkers int) (*ConnServer, error) {
	if srv == nil {
		return nil, fmt.Errorf("server cannot be nil")
	}
	if maxWorkers <= 0 {
		return nil, fmt.Errorf("maxWorkers must be positive, got %d", maxWorkers)
	}
	return &ConnServer{srv: srv, maxWorkers: maxWorkers}, nil
}

// ListenVsock opens a vsock listener on the given port.
func ListenVsock(port uint32) (net.Listener, error) {
	l, err := vsock.Listen(port, nil)
	if err != nil {
		return nil, fmt.Errorf("create vsock listener: %w", err)
	}
	return l, nil
}

// Serve accepts connections until the listener is closed.
func (c *ConnServer) Serve(listener net.Listener) error {
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("ERROR: Failed to close listener: %v", err)
		}
	}()

	log.Printf("INFO: Connection server listening on %s", listener.Addr())
	semaphore := make(chan struct{}, c.maxWorkers)
	log.Printf("INFO: Worker pool initialized with %d max concurrent workers", c.maxWorkers)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return err
		}

		select {
		case semaphore <- struct{}{}:
			go func(cn net.Conn) {
				defer func() { <-semaphore }()
				c.handleConnection(cn)
			}(conn)
		default:
			log.Printf("INFO: No workers available, rejecting connection (pool full)")
			if err := conn.Close(); err != nil {
				log.Printf("ERROR: Failed to close rejected connection: %v", err)
			}
		}
	}
}

func (c *ConnServer) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Panic recovered in handleConnection: %v", r)
		}
		if err := conn.Close(); err != nil {
			log.Printf("ERROR: Failed to close connection: %v", err)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(connReadDeadline))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		log.Printf("ERROR: Failed to read request: %v", err)
		return
	}

	response := c.dispatch(buf.Bytes())

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(response); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

// dispatch decodes the type discriminator and routes to the registry.
func (c *ConnServer) dispatch(raw []byte) any {
	var baseReq struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &baseReq); err != nil {
		log.Printf("ERROR: Failed to decode base request: %v", err)
		return api.ErrorResponse{Type: "error", Code: api.CodeBadRequest, Message: "malformed request"}
	}

	log.Printf("INFO: Received request type: %s", baseReq.Type)

	switch baseReq.Type {
	case api.TypePing:
		return map[string]any{
			"type":      "pong",
			"message":   "auction server is healthy",
			"timestamp": time.Now().Unix(),
		}

	case api.TypeCreateAuction:
		var req api.CreateAuctionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return badRequest("malformed create_auction request")
		}
		id, err := c.srv.registry.Create(req.Creator, req.StartingPrice, req.MinimumBidIncrement, req.DurationMinutes, req.EscrowedValue)
		if err != nil {
			log.Printf("ERROR: create_auction rejected: %v", err)
			return api.NewErrorResponse(err)
		}
		return api.CreateAuctionResponse{Type: "auction_created", AuctionID: id}

	case api.TypePlaceBid:
		var req api.PlaceBidRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return badRequest("malformed place_bid request")
		}
		if err := c.srv.registry.Bid(req.Bidder, req.AuctionID, req.BidAmount, req.EscrowedValue); err != nil {
			log.Printf("ERROR: place_bid rejected: %v", err)
			return api.NewErrorResponse(err)
		}
		return api.AckResponse{Type: "bid_accepted", AuctionID: req.AuctionID}

	case api.TypeEndAuction:
		var req api.EndAuctionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return badRequest("malformed end_auction request")
		}
		resp, err := c.srv.settle(req.Caller, req.AuctionID)
		if err != nil {
			log.Printf("ERROR: end_auction rejected: %v", err)
			return api.NewErrorResponse(err)
		}
		return resp

	case api.TypeAuctionDetails:
		var req api.AuctionDetailsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return badRequest("malformed auction_details request")
		}
		rec, err := c.srv.registry.AuctionDetails(req.AuctionID)
		if err != nil {
			return api.NewErrorResponse(err)
		}
		return api.AuctionDetailsResponse{Type: "auction_details", Auction: rec}

	case api.TypeOwnerAuctions:
		var req api.OwnerAuctionsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return badRequest("malformed owner_auctions request")
		}
		ids := c.srv.registry.OwnerAuctions(req.Owner)
		return api.OwnerAuctionsResponse{Type: "owner_auctions", Owner: req.Owner, AuctionIDs: ids}

	default:
		return badRequest(fmt.Sprintf("unknown request type: %s", baseReq.Type))
	}
}

func badRequest(msg string) api.ErrorResponse {
	return api.ErrorResponse{Type: "error", Code: api.CodeBadRequest, Message: msg}
}
