package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodedError(t *testing.T) {
	e := Errorc(NotFoundError, "producer eosnationftw is not registered")
	assert.Equal(t, NotFoundError, CodeOf(e))
	assert.True(t, NotFoundError.Equals(e))
	assert.False(t, InvalidStateError.Equals(e))
}

func TestWrapKeepsCode(t *testing.T) {
	e := ConnectivityError.New("dial tcp 127.0.0.1:8888: connection refused")
	e2 := Wrap(e, "fail to read global state")
	assert.Equal(t, ConnectivityError, CodeOf(e2))

	e3 := WithCode(e, InvalidStateError)
	assert.Equal(t, InvalidStateError, CodeOf(e3))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		e    error
		want Code
	}{
		{"Nil", nil, Success},
		{"New", New("Empty"), UnknownError},
		{"Std", errors.New("MyError"), UnknownError},
		{"NewBase", NewBase(UnsupportedError, "MyError"), UnsupportedError},
		{"StackedBase", WithStack(NewBase(UnsupportedError, "MyError")), UnsupportedError},
		{"Wrapc", Wrapc(New("EOF"), BroadcastError, "push failed"), BroadcastError},
		{"Errorcf", Errorcf(SigningError, "attempt(%d) failed", 2), SigningError},
		{"WithCode", WithCode(errors.New("SimpleError"), ChainRejectedError), ChainRejectedError},
		{"StdWrapped", fmt.Errorf("outer: %w", NotFoundError.New("x")), NotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.e))
		})
	}
}

func TestIsSubmission(t *testing.T) {
	assert.True(t, IsSubmission(SigningError.New("bad key")))
	assert.True(t, IsSubmission(BroadcastError.New("timeout")))
	assert.True(t, IsSubmission(Wrap(ChainRejectedError.New("unsatisfied_authorization"), "claim")))
	assert.False(t, IsSubmission(ConnectivityError.New("refused")))
	assert.False(t, IsSubmission(nil))
}

func TestIs(t *testing.T) {
	e := Errorc(IllegalArgumentError, "IllegalArgument")

	e2 := Wrap(e, "MyTest")
	assert.False(t, Is(e, e2))
	assert.True(t, Is(e2, e))
	assert.True(t, errors.Is(e2, e))

	e3 := Wrapc(e, UnsupportedError, "MyTest2")
	assert.False(t, Is(e, e3))
	assert.True(t, Is(e3, e))
}

func TestFormat(t *testing.T) {
	e := Errorc(NotFoundError, "NoRow")
	assert.Equal(t, "E1005:NoRow", fmt.Sprintf("%v", e))

	e2 := Wrapc(e, InvalidStateError, "BadRow")
	assert.Equal(t, "E1004:BadRow", fmt.Sprintf("%s", e2))
	assert.Contains(t, fmt.Sprintf("%+v", e2), "Wrapping")

	assert.Equal(t, "NotFoundError", NotFoundError.String())
	assert.Equal(t, "E9999", Code(9999).String())
}

func TestCode_String(t *testing.T) {
	for _, c := range []Code{
		Success, UnknownError, IllegalArgumentError, UnsupportedError, InvalidStateError,
		NotFoundError, ConnectivityError, APIError, SubmissionError, SigningError,
		BroadcastError, ChainRejectedError,
	} {
		assert.NotRegexp(t, `^E\d{4}$`, c.String())
	}
	assert.Equal(t, "E1099", Code(CodeGeneral+99).String())

	for _, c := range []Code{SubmissionError, SigningError, BroadcastError, ChainRejectedError} {
		assert.True(t, IsSubmissionCode(c), c.String())
	}
	for _, c := range []Code{UnknownError, ConnectivityError, APIError, NotFoundError} {
		assert.False(t, IsSubmissionCode(c), c.String())
	}
}
