// Package receipt issues and verifies signed settlement receipts. A receipt
// is a COSE_Sign1 envelope (ES256) over the CBOR-encoded settlement facts,
// so anyone holding the registry's public key can later prove what an
// auction settled for without trusting the serving side.
package receipt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"

	"github.com/cloudx-io/auctionledger/core"
)

// Settlement is the signed payload of a receipt.
type Settlement struct {
	AuctionID     uint64         `json:"auction_id"`
	Owner         core.Principal `json:"owner"`
	WinningBidder core.Principal `json:"winning_bidder,omitempty"`
	Amount        uint64         `json:"amount"`
	StartTime     int64          `json:"start_time"`
	EndTime       int64          `json:"end_time"`
	SettledAt     int64          `json:"settled_at"`
}

// Signer issues receipts with an ECDSA P-256 key.
type Signer struct {
	key    *ecdsa.PrivateKey
	signer cose.Signer
}

// NewSigner generates a fresh signing key.
func NewSigner() (*Signer, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate receipt key: %w", err)
	}
	return NewSignerFromKey(key)
}

// NewSignerFromKey wraps an existing P-256 key, for deployments that keep
// the receipt key outside the process.
func NewSignerFromKey(key *ecdsa.PrivateKey) (*Signer, error) {
	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	if err != nil {
		return nil, fmt.Errorf("create COSE signer: %w", err)
	}
	return &Signer{key: key, signer: signer}, nil
}

// PublicKey returns the verification key for receipts from this signer.
func (s *Signer) PublicKey() *ecdsa.PublicKey {
	return &s.key.PublicKey
}

// PublicKeyPEM returns the verification key in PEM format for distribution
// to receipt holders.
func (s *Signer) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&s.key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("marshal receipt public key: %w", err)
	}
	block := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	}
	return string(pem.EncodeToMemory(block)), nil
}

// ParsePublicKeyPEM parses a PEM verification key as produced by
// PublicKeyPEM.
func ParsePublicKeyPEM(pemStr string) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("no PEM block in input")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse receipt public key: %w", err)
	}
	ecKey, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("receipt public key is not ECDSA")
	}
	return ecKey, nil
}

// Sign produces a COSE_Sign1 receipt for a settled auction record.
func (s *Signer) Sign(rec core.AuctionRecord, settledAt int64) ([]byte, error) {
	if !rec.Ended {
		return nil, errors.New("receipt requires a settled auction")
	}
	payload, err := cbor.Marshal(Settlement{
		AuctionID:     rec.ID,
		Owner:         rec.Owner,
		WinningBidder: rec.HighestBidder,
		Amount:        rec.CurrentHighestBid,
		StartTime:     rec.StartTime,
		EndTime:       rec.EndTime,
		SettledAt:     settledAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode settlement payload: %w", err)
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected[cose.HeaderLabelAlgorithm] = cose.AlgorithmES256
	msg.Payload = payload
	if err := msg.Sign(rand.Reader, nil, s.signer); err != nil {
		return nil, fmt.Errorf("sign receipt: %w", err)
	}
	return msg.MarshalCBOR()
}

// Verify checks a receipt's signature against the given public key and
// returns the settlement facts it covers.
func Verify(data []byte, pub *ecdsa.PublicKey) (Settlement, error) {
	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(data); err != nil {
		return Settlement{}, fmt.Errorf("parse receipt: %w", err)
	}
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, pub)
	if err != nil {
		return Settlement{}, fmt.Errorf("create COSE verifier: %w", err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return Settlement{}, fmt.Errorf("verify receipt signature: %w", err)
	}
	var st Settlement
	if err := cbor.Unmarshal(msg.Payload, &st); err != nil {
		return Settlement{}, fmt.Errorf("decode settlement payload: %w", err)
	}
	return st, nil
}
