package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestConstructors() {
	cause := errors.New("disk full")

	tests := []struct {
		name        string
		err         *Error
		wantCode    ErrorCode
		wantMessage string
		wantCause   error
		wantString  string
	}{
		{
			name:        "New",
			err:         New(ErrCodeNoTickData, "no ticks"),
			wantCode:    ErrCodeNoTickData,
			wantMessage: "no ticks",
			wantString:  "[200] no ticks",
		},
		{
			name:        "Newf",
			err:         Newf(ErrCodeInvalidLatency, "latency %s is negative", "-1s"),
			wantCode:    ErrCodeInvalidLatency,
			wantMessage: "latency -1s is negative",
			wantString:  "[103] latency -1s is negative",
		},
		{
			name:        "Wrap",
			err:         Wrap(ErrCodeBacktestWriteFailed, "write trades", cause),
			wantCode:    ErrCodeBacktestWriteFailed,
			wantMessage: "write trades",
			wantCause:   cause,
			wantString:  "[605] write trades: disk full",
		},
		{
			name:        "Wrapf",
			err:         Wrapf(ErrCodeQueryFailed, cause, "read %s", "ticks.parquet"),
			wantCode:    ErrCodeQueryFailed,
			wantMessage: "read ticks.parquet",
			wantCause:   cause,
			wantString:  "[203] read ticks.parquet: disk full",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.wantCode, tc.err.Code)
			suite.Equal(tc.wantMessage, tc.err.Message)
			suite.Equal(tc.wantCause, tc.err.Unwrap())
			suite.Equal(tc.wantString, tc.err.Error())
		})
	}
}

func (suite *ErrorTestSuite) TestGetCode() {
	inner := New(ErrCodeNoTickData, "no ticks")
	outer := Wrap(ErrCodeBacktestInitFailed, "load", inner)

	suite.Equal(ErrCodeBacktestInitFailed, GetCode(outer))
	suite.Equal(ErrCodeNoTickData, GetCode(inner))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
	suite.Equal(ErrCodeNoTickData, GetCode(fmt.Errorf("context: %w", inner)))
}

func (suite *ErrorTestSuite) TestHasCodeAndChain() {
	cause := errors.New("underlying")
	err := Wrap(ErrCodeDataNotFound, "missing", cause)

	suite.True(HasCode(err, ErrCodeDataNotFound))
	suite.False(HasCode(err, ErrCodeNoTickData))
	suite.True(Is(err, cause))

	var coded *Error
	suite.True(As(err, &coded))
	suite.Equal(ErrCodeDataNotFound, coded.Code)
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataError(1, 0, "k-means needs at least one feature")
	suite.Equal("k-means needs at least one feature (required 1, got 0)", err.Error())
	suite.True(IsInsufficientDataError(err))
	suite.True(IsInsufficientDataError(fmt.Errorf("fit: %w", err)))

	formatted := NewInsufficientDataErrorf(20, 5, "regime window %s", "short")
	suite.Equal("regime window short", formatted.Message)

	suite.False(IsInsufficientDataError(New(ErrCodeInvalidParameter, "bad")))
	suite.False(IsInsufficientDataError(nil))
}
