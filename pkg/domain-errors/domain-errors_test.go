package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are the core error primitives used at every trust boundary of the
// ledger; the invariants "wrapped domain errors preserve the original code"
// and "errors.Is matches by code" must hold for rejection semantics to work.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "challenge not found"}
		s.Equal("challenge not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeInvalidState}
		s.Equal("invalid_state", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("sqlite locked")
		err := &Error{Code: CodeInternal, Message: "store failure", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeInvalidState, Message: "challenge inactive"}
		err2 := &Error{Code: CodeInvalidState, Message: "proof already verified"}
		s.True(err1.Is(err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeValidation}
		err2 := &Error{Code: CodeInsufficientFunds}
		s.False(err1.Is(err2))
	})

	s.Run("works through errors.Is with wrapping", func() {
		inner := New(CodeInsufficientFunds, "escrow exhausted")
		outer := Wrap(inner, CodeInternal, "release failed")
		s.True(errors.Is(outer, &Error{Code: CodeInsufficientFunds}))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	s.Run("wrapping a domain error keeps its code", func() {
		inner := New(CodeUnauthorized, "caller is not the creator")
		wrapped := Wrap(inner, CodeInternal, "deactivate failed")
		s.True(HasCode(wrapped, CodeUnauthorized))
		s.False(HasCode(wrapped, CodeInternal))
	})

	s.Run("wrapping a plain error applies the given code", func() {
		wrapped := Wrap(errors.New("io failure"), CodeInternal, "store failure")
		s.True(HasCode(wrapped, CodeInternal))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.Run("nil error has no code", func() {
		s.False(HasCode(nil, CodeNotFound))
	})

	s.Run("plain error has no code", func() {
		s.False(HasCode(errors.New("plain"), CodeNotFound))
	})
}
