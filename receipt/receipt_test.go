package receipt

import (
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionledger/core"
)

func settledRecord() core.AuctionRecord {
	return core.AuctionRecord{
		ID:                  3,
		Owner:               "alice",
		HighestBidder:       "carol",
		StartingPrice:       100,
		MinimumBidIncrement: 10,
		CurrentHighestBid:   130,
		StartTime:           1_700_000_000,
		EndTime:             1_700_003_600,
		Ended:               true,
	}
}

func TestSignAndVerify(t *testing.T) {
	signer, err := NewSigner()
	check.Nil(t, err)

	data, err := signer.Sign(settledRecord(), 1_700_003_700)
	check.Nil(t, err)
	check.True(t, len(data) > 0)

	st, err := Verify(data, signer.PublicKey())
	check.Nil(t, err)
	check.Equal(t, uint64(3), st.AuctionID)
	check.Equal(t, core.Principal("alice"), st.Owner)
	check.Equal(t, core.Principal("carol"), st.WinningBidder)
	check.Equal(t, uint64(130), st.Amount)
	check.Equal(t, int64(1_700_003_700), st.SettledAt)
}

func TestSign_RequiresSettledRecord(t *testing.T) {
	signer, err := NewSigner()
	check.Nil(t, err)

	rec := settledRecord()
	rec.Ended = false
	_, err = signer.Sign(rec, 1_700_003_700)
	check.NotNil(t, err)
}

func TestVerify_RejectsTamperedReceipt(t *testing.T) {
	signer, err := NewSigner()
	check.Nil(t, err)

	data, err := signer.Sign(settledRecord(), 1_700_003_700)
	check.Nil(t, err)

	// Flip a byte near the end, inside the signature.
	data[len(data)-5] ^= 0xff
	_, err = Verify(data, signer.PublicKey())
	check.NotNil(t, err)
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	signer, err := NewSigner()
	check.Nil(t, err)
	other, err := NewSigner()
	check.Nil(t, err)

	data, err := signer.Sign(settledRecord(), 1_700_003_700)
	check.Nil(t, err)

	_, err = Verify(data, other.PublicKey())
	check.NotNil(t, err)
}

func TestPublicKeyPEMRoundTrip(t *testing.T) {
	signer, err := NewSigner()
	check.Nil(t, err)

	pemKey, err := signer.PublicKeyPEM()
	check.Nil(t, err)

	parsed, err := ParsePublicKeyPEM(pemKey)
	check.Nil(t, err)
	check.True(t, parsed.Equal(signer.PublicKey()))

	data, err := signer.Sign(settledRecord(), 1_700_003_700)
	check.Nil(t, err)
	_, err = Verify(data, parsed)
	check.Nil(t, err)
}

func TestParsePublicKeyPEM_Garbage(t *testing.T) {
	_, err := ParsePublicKeyPEM("not pem")
	check.NotNil(t, err)
}
