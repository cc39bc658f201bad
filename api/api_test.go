package api

import (
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionledger/core"
)

func TestParseAmount(t *testing.T) {
	units, err := ParseAmount("1.50", 2)
	check.Nil(t, err)
	check.Equal(t, uint64(150), units)

	units, err = ParseAmount("0", 2)
	check.Nil(t, err)
	check.Equal(t, uint64(0), units)

	units, err = ParseAmount("100", 0)
	check.Nil(t, err)
	check.Equal(t, uint64(100), units)

	// Trailing zeros beyond the scale are fine as long as no precision
	// is lost.
	units, err = ParseAmount("2.100", 2)
	check.Nil(t, err)
	check.Equal(t, uint64(210), units)
}

func TestParseAmount_Rejections(t *testing.T) {
	_, err := ParseAmount("-1", 2)
	check.NotNil(t, err)

	_, err = ParseAmount("1.505", 2)
	check.NotNil(t, err)

	_, err = ParseAmount("not a number", 2)
	check.NotNil(t, err)

	// Past the top of the uint64 base-unit range.
	_, err = ParseAmount("184467440737095516.16", 2)
	check.NotNil(t, err)
}

func TestFormatAmount(t *testing.T) {
	check.Equal(t, "1.50", FormatAmount(150, 2))
	check.Equal(t, "0.00", FormatAmount(0, 2))
	check.Equal(t, "100", FormatAmount(100, 0))
	check.Equal(t, "184467440737095516.15", FormatAmount(math.MaxUint64, 2))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, units := range []uint64{0, 1, 99, 150, 12345678} {
		parsed, err := ParseAmount(FormatAmount(units, 2), 2)
		check.Nil(t, err)
		check.Equal(t, units, parsed)
	}
}

func TestCode_CoversEveryFailureKind(t *testing.T) {
	cases := map[string]error{
		CodeInvalidDuration:     core.ErrInvalidDuration,
		CodeSelfBidForbidden:    core.ErrSelfBidForbidden,
		CodeAuctionClosed:       core.ErrAuctionClosed,
		CodeBidTooLow:           core.ErrBidTooLow,
		CodeInsufficientEscrow:  core.ErrInsufficientEscrow,
		CodeNotOwner:            core.ErrNotOwner,
		CodeAuctionNotYetClosed: core.ErrAuctionNotYetClosed,
		CodeAlreadyEnded:        core.ErrAlreadyEnded,
		CodeInvalidAuctionID:    core.ErrInvalidAuctionID,
	}
	for want, err := range cases {
		check.Equal(t, want, Code(err))
	}

	// Wrapped registry errors map the same way.
	wrapped := errors.Join(errors.New("context"), core.ErrBidTooLow)
	check.Equal(t, CodeBidTooLow, Code(wrapped))

	check.Equal(t, CodeInternal, Code(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	check.Equal(t, http.StatusBadRequest, HTTPStatus(CodeInvalidDuration))
	check.Equal(t, http.StatusBadRequest, HTTPStatus(CodeInsufficientEscrow))
	check.Equal(t, http.StatusForbidden, HTTPStatus(CodeSelfBidForbidden))
	check.Equal(t, http.StatusForbidden, HTTPStatus(CodeNotOwner))
	check.Equal(t, http.StatusNotFound, HTTPStatus(CodeInvalidAuctionID))
	check.Equal(t, http.StatusConflict, HTTPStatus(CodeBidTooLow))
	check.Equal(t, http.StatusConflict, HTTPStatus(CodeAlreadyEnded))
	check.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInternal))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(core.ErrBidTooLow)
	check.Equal(t, "error", resp.Type)
	check.Equal(t, CodeBidTooLow, resp.Code)
	check.Equal(t, core.ErrBidTooLow.Error(), resp.Message)
}
