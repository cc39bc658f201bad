package ledger

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionledger/core"
)

func TestCaptureAndPayout(t *testing.T) {
	l := New()
	l.Fund("alice", 500)

	check.Nil(t, l.Capture("alice", 200))
	check.Equal(t, uint64(300), l.Balance("alice"))
	check.Equal(t, uint64(200), l.CustodyBalance())

	check.Nil(t, l.Payout("bob", 150))
	check.Equal(t, uint64(150), l.Balance("bob"))
	check.Equal(t, uint64(50), l.CustodyBalance())
}

func TestCapture_InsufficientBalance(t *testing.T) {
	l := New()
	l.Fund("alice", 100)

	err := l.Capture("alice", 101)
	check.True(t, errors.Is(err, ErrInsufficientBalance))

	// Failed movement leaves everything unchanged.
	check.Equal(t, uint64(100), l.Balance("alice"))
	check.Equal(t, uint64(0), l.CustodyBalance())
}

func TestPayout_CustodyUnderfunded(t *testing.T) {
	l := New()
	err := l.Payout("bob", 1)
	check.True(t, errors.Is(err, ErrInsufficientBalance))
	check.Equal(t, uint64(0), l.Balance("bob"))
}

func TestTransactionLog(t *testing.T) {
	l := New()
	l.Fund("alice", 100)
	check.Nil(t, l.Capture("alice", 100))
	check.Nil(t, l.Payout("alice", 40))

	txs := l.Transactions()
	check.Equal(t, 3, len(txs))
	check.Equal(t, KindFund, txs[0].Kind)
	check.Equal(t, KindCapture, txs[1].Kind)
	check.Equal(t, KindPayout, txs[2].Kind)
	check.Equal(t, uint64(40), txs[2].Amount)

	// Each committed movement carries its own id.
	check.NotEqual(t, txs[0].ID, txs[1].ID)
	check.NotEqual(t, txs[1].ID, txs[2].ID)
}

func TestLedgerBacksRegistryLifecycle(t *testing.T) {
	l := New()
	l.Fund("alice", 100)
	l.Fund("bob", 130)

	st := &stubStore{auctions: make(map[uint64]core.AuctionRecord), byOwner: make(map[core.Principal][]uint64)}
	clk := &stubClock{now: 1_700_000_000}
	reg, err := core.NewRegistry(st, l, clk, nil)
	check.Nil(t, err)

	id, err := reg.Create("alice", 100, 10, 60, 100)
	check.Nil(t, err)
	check.Nil(t, reg.Bid("bob", id, 130, 130))

	clk.now += 3600
	check.Nil(t, reg.End("alice", id))

	check.Equal(t, uint64(130), l.Balance("alice"))
	check.Equal(t, uint64(0), l.Balance("bob"))
	// Alice's creation deposit remains in custody after settlement.
	check.Equal(t, uint64(100), l.CustodyBalance())
}

type stubStore struct {
	auctions map[uint64]core.AuctionRecord
	byOwner  map[core.Principal][]uint64
	next     uint64
}

func (s *stubStore) GetAuction(id uint64) (core.AuctionRecord, bool) {
	rec, ok := s.auctions[id]
	return rec, ok
}

func (s *stubStore) PutAuction(rec core.AuctionRecord) { s.auctions[rec.ID] = rec }

func (s *stubStore) AppendOwnerAuction(owner core.Principal, id uint64) {
	s.byOwner[owner] = append(s.byOwner[owner], id)
}

func (s *stubStore) OwnerAuctions(owner core.Principal) []uint64 { return s.byOwner[owner] }

func (s *stubStore) NextAuctionID() uint64 {
	id := s.next
	s.next++
	return id
}

type stubClock struct{ now int64 }

func (c *stubClock) Now() int64 { return c.now }
