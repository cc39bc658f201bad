package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cloudx-io/auctionledger/api"
	"github.com/cloudx-io/auctionledger/core"
)

// HTTPServerConfig contains the REST surface's tunables.
type HTTPServerConfig struct {
	// ListenAddr is the address and port the HTTP server will listen on.
	ListenAddr string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	WriteTimeout time.Duration

	// GracefulShutdownDuration is the maximum time to wait for in-flight
	// requests to complete during shutdown.
	GracefulShutdownDuration time.Duration
}

// HTTPServer is the REST and websocket surface over the registry.
type HTTPServer struct {
	cfg HTTPServerConfig
	srv *Server
	hub *Hub

	httpSrv *http.Server
}

// NewHTTPServer creates the REST surface. The hub is optional; without it
// the websocket feed route is not registered.
func NewHTTPServer(cfg HTTPServerConfig, srv *Server, hub *Hub) (*HTTPServer, error) {
	if srv == nil {
		return nil, fmt.Errorf("server cannot be nil")
	}
	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("listen address cannot be empty")
	}

	h := &HTTPServer{cfg: cfg, srv: srv, hub: hub}
	h.httpSrv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      h.router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return h, nil
}

func (h *HTTPServer) router() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)

	mux.Get("/livez", h.handleLive)
	mux.Post("/auctions", h.handleCreate)
	mux.Get("/auctions/{id}", h.handleDetails)
	mux.Post("/auctions/{id}/bids", h.handleBid)
	mux.Post("/auctions/{id}/end", h.handleEnd)
	mux.Get("/owners/{owner}/auctions", h.handleOwnerAuctions)
	mux.Get("/receipts/key", h.handleReceiptKey)
	if h.srv.ledger != nil {
		mux.Get("/balances/{principal}", h.handleBalance)
	}
	if h.hub != nil {
		mux.Get("/events", h.hub.ServeHTTP)
	}

	return mux
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (h *HTTPServer) ListenAndServe() error {
	log.Printf("INFO: HTTP server listening on %s", h.cfg.ListenAddr)
	if err := h.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured grace period.
func (h *HTTPServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.GracefulShutdownDuration)
	defer cancel()
	return h.httpSrv.Shutdown(ctx)
}

func (h *HTTPServer) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

func (h *HTTPServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	id, err := h.srv.registry.Create(req.Creator, req.StartingPrice, req.MinimumBidIncrement, req.DurationMinutes, req.EscrowedValue)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.CreateAuctionResponse{Type: "auction_created", AuctionID: id})
}

func (h *HTTPServer) handleBid(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	var req api.PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if err := h.srv.registry.Bid(req.Bidder, id, req.BidAmount, req.EscrowedValue); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AckResponse{Type: "bid_accepted", AuctionID: id})
}

func (h *HTTPServer) handleEnd(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	var req api.EndAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	resp, err := h.srv.settle(req.Caller, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPServer) handleDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(w, r)
	if !ok {
		return
	}
	rec, err := h.srv.registry.AuctionDetails(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AuctionDetailsResponse{Type: "auction_details", Auction: rec})
}

func (h *HTTPServer) handleOwnerAuctions(w http.ResponseWriter, r *http.Request) {
	owner := core.Principal(chi.URLParam(r, "owner"))
	ids := h.srv.registry.OwnerAuctions(owner)
	writeJSON(w, http.StatusOK, api.OwnerAuctionsResponse{Type: "owner_auctions", Owner: owner, AuctionIDs: ids})
}

func (h *HTTPServer) handleReceiptKey(w http.ResponseWriter, r *http.Request) {
	if h.srv.signer == nil {
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{
			Type:    "error",
			Code:    api.CodeBadRequest,
			Message: "no receipt signing key configured",
		})
		return
	}
	pemKey, err := h.srv.signer.PublicKeyPEM()
	if err != nil {
		log.Printf("ERROR: Failed to export receipt public key: %v", err)
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{
			Type:    "error",
			Code:    api.CodeInternal,
			Message: "failed to export receipt public key",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"type":       "receipt_key",
		"public_key": pemKey,
	})
}

func (h *HTTPServer) handleBalance(w http.ResponseWriter, r *http.Request) {
	p := core.Principal(chi.URLParam(r, "principal"))
	writeJSON(w, http.StatusOK, map[string]any{
		"type":      "balance",
		"principal": p,
		"balance":   h.srv.ledger.Balance(p),
		"custody":   h.srv.ledger.CustodyBalance(),
	})
}

// auctionID parses the {id} route parameter, writing the error response
// itself when the parameter is not a valid identifier.
func auctionID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeBadRequest(w, fmt.Sprintf("invalid auction id %q", raw))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := api.NewErrorResponse(err)
	writeJSON(w, api.HTTPStatus(resp.Code), resp)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, api.ErrorResponse{
		Type:    "error",
		Code:    api.CodeBadRequest,
		Message: msg,
	})
}
