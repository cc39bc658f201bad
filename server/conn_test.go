package server

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudx-io/auctionledger/api"
	"github.com/cloudx-io/auctionledger/core"
	"github.com/cloudx-io/auctionledger/ledger"
	"github.com/cloudx-io/auctionledger/store"
)

func newConnStack(t *testing.T) (*ConnServer, *testClock, *ledger.Ledger) {
	t.Helper()

	led := ledger.New()
	led.Fund("alice", 1_000)
	led.Fund("bob", 1_000)

	clk := &testClock{now: 1_700_000_000}
	reg, err := core.NewRegistry(store.NewMemoryStore(), led, clk, nil)
	require.NoError(t, err)

	srv, err := New(reg, nil, led)
	require.NoError(t, err)

	cs, err := NewConnServer(srv, 4)
	require.NoError(t, err)
	return cs, clk, led
}

func TestNewConnServer_Validation(t *testing.T) {
	_, err := NewConnServer(nil, 4)
	assert.Error(t, err)

	cs, _, _ := newConnStack(t)
	_, err = NewConnServer(cs.srv, 0)
	assert.Error(t, err)
}

func TestDispatch_Ping(t *testing.T) {
	cs, _, _ := newConnStack(t)

	resp := cs.dispatch([]byte(`{"type":"ping"}`))
	body, ok := resp.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pong", body["type"])
}

func TestDispatch_CreateBidDetails(t *testing.T) {
	cs, _, _ := newConnStack(t)

	resp := cs.dispatch([]byte(`{"type":"create_auction","creator":"alice","starting_price":100,"minimum_bid_increment":10,"duration_minutes":60,"escrowed_value":100}`))
	created, ok := resp.(api.CreateAuctionResponse)
	require.True(t, ok)
	assert.Equal(t, uint64(0), created.AuctionID)

	resp = cs.dispatch([]byte(`{"type":"place_bid","bidder":"bob","auction_id":0,"bid_amount":111,"escrowed_value":111}`))
	ack, ok := resp.(api.AckResponse)
	require.True(t, ok)
	assert.Equal(t, "bid_accepted", ack.Type)

	resp = cs.dispatch([]byte(`{"type":"auction_details","auction_id":0}`))
	details, ok := resp.(api.AuctionDetailsResponse)
	require.True(t, ok)
	assert.Equal(t, core.Principal("bob"), details.Auction.HighestBidder)
	assert.Equal(t, uint64(111), details.Auction.CurrentHighestBid)

	resp = cs.dispatch([]byte(`{"type":"owner_auctions","owner":"alice"}`))
	list, ok := resp.(api.OwnerAuctionsResponse)
	require.True(t, ok)
	assert.Equal(t, []uint64{0}, list.AuctionIDs)
}

func TestDispatch_EndAfterExpiry(t *testing.T) {
	cs, clk, led := newConnStack(t)

	resp := cs.dispatch([]byte(`{"type":"create_auction","creator":"alice","starting_price":100,"minimum_bid_increment":10,"duration_minutes":60,"escrowed_value":100}`))
	_, ok := resp.(api.CreateAuctionResponse)
	require.True(t, ok)

	resp = cs.dispatch([]byte(`{"type":"end_auction","caller":"alice","auction_id":0}`))
	errResp, ok := resp.(api.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, api.CodeAuctionNotYetClosed, errResp.Code)

	clk.now += 60 * 60
	resp = cs.dispatch([]byte(`{"type":"end_auction","caller":"alice","auction_id":0}`))
	ended, ok := resp.(api.EndAuctionResponse)
	require.True(t, ok)
	assert.Equal(t, uint64(100), ended.Amount)
	assert.Equal(t, uint64(1_000), led.Balance("alice"))
}

func TestDispatch_FailureEnvelopes(t *testing.T) {
	cs, _, _ := newConnStack(t)

	resp := cs.dispatch([]byte(`{"type":"auction_details","auction_id":9}`))
	errResp, ok := resp.(api.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, api.CodeInvalidAuctionID, errResp.Code)

	resp = cs.dispatch([]byte(`{"type":"warp"}`))
	errResp, ok = resp.(api.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, api.CodeBadRequest, errResp.Code)

	resp = cs.dispatch([]byte(`{`))
	errResp, ok = resp.(api.ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, api.CodeBadRequest, errResp.Code)
}

func TestConnServer_TCPRoundTrip(t *testing.T) {
	cs, _, _ := newConnStack(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = cs.Serve(listener)
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	req := api.CreateAuctionRequest{
		Type:                api.TypeCreateAuction,
		Creator:             "alice",
		StartingPrice:       100,
		MinimumBidIncrement: 10,
		DurationMinutes:     60,
		EscrowedValue:       100,
	}
	require.NoError(t, json.NewEncoder(conn).Encode(req))
	// Half-close signals end of request, matching the protocol.
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var created api.CreateAuctionResponse
	require.NoError(t, json.Unmarshal(line, &created))
	assert.Equal(t, "auction_created", created.Type)
	assert.Equal(t, uint64(0), created.AuctionID)
}
