package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

type Code int

const CodeSegment = 1000

const (
	CodeGeneral Code = (iota + 1) * CodeSegment
	CodeChain
	CodeClaim
)

const (
	Success      Code = 0
	UnknownError Code = CodeGeneral + iota
	IllegalArgumentError
	UnsupportedError
	InvalidStateError
	NotFoundError
)

// Errors while talking to the chain API node.
const (
	ConnectivityError Code = CodeChain + iota
	APIError
)

// Errors of the claim submission. Every code in this segment is a
// submission failure (see IsSubmission).
const (
	SubmissionError Code = CodeClaim + iota
	SigningError
	BroadcastError
	ChainRejectedError
)

var codeNames = map[Code]string{
	Success:              "Success",
	UnknownError:         "UnknownError",
	IllegalArgumentError: "IllegalArgumentError",
	UnsupportedError:     "UnsupportedError",
	InvalidStateError:    "InvalidStateError",
	NotFoundError:        "NotFoundError",
	ConnectivityError:    "ConnectivityError",
	APIError:             "APIError",
	SubmissionError:      "SubmissionError",
	SigningError:         "SigningError",
	BroadcastError:       "BroadcastError",
	ChainRejectedError:   "ChainRejectedError",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("E%04d", int(c))
}

func IsSubmissionCode(c Code) bool {
	return c >= CodeClaim && c < CodeClaim+CodeSegment
}

// IsSubmission returns whether the error happened while signing or
// broadcasting the claim transaction.
func IsSubmission(e error) bool {
	return IsSubmissionCode(CodeOf(e))
}

func (c Code) New(msg string) error {
	return Errorc(c, msg)
}

func (c Code) Errorf(f string, args ...interface{}) error {
	return Errorcf(c, f, args...)
}

func (c Code) Wrap(e error, msg string) error {
	return Wrapc(e, c, msg)
}

func (c Code) Wrapf(e error, f string, args ...interface{}) error {
	return Wrapcf(e, c, f, args...)
}

func (c Code) Equals(e error) bool {
	if e == nil {
		return false
	}
	return CodeOf(e) == c
}

// New makes an error with a stack but without any code.
func New(msg string) error {
	return errors.New(msg)
}

func Errorf(f string, args ...interface{}) error {
	return errors.Errorf(f, args...)
}

func WithStack(e error) error {
	return errors.WithStack(e)
}

type baseError struct {
	code Code
	msg  string
}

func (e *baseError) Error() string {
	return e.msg
}

func (e *baseError) ErrorCode() Code {
	return e.code
}

func (e *baseError) Format(f fmt.State, c rune) {
	switch c {
	case 'v', 's', 'q':
		fmt.Fprintf(f, "E%04d:%s", e.code, e.msg)
	}
}

func (e *baseError) Equals(err error) bool {
	return CodeOf(err) == e.code
}

// NewBase returns an error without stack, usable as a sentinel value.
func NewBase(code Code, msg string) *baseError {
	return &baseError{code, msg}
}

type codedError struct {
	code Code
	error
}

func (e *codedError) Format(f fmt.State, c rune) {
	switch c {
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "E%04d:%+v", e.code, e.error)
			return
		}
		fallthrough
	case 's', 'q':
		fmt.Fprintf(f, "E%04d:%s", e.code, e.Error())
	}
}

func (e *codedError) ErrorCode() Code {
	return e.code
}

func (e *codedError) Unwrap() error {
	return e.error
}

func Errorc(code Code, msg string) error {
	return &codedError{
		code:  code,
		error: errors.New(msg),
	}
}

func Errorcf(code Code, f string, args ...interface{}) error {
	return &codedError{
		code:  code,
		error: errors.Errorf(f, args...),
	}
}

func WithCode(err error, code Code) error {
	if err == nil {
		return nil
	}
	if _, ok := CoderOf(err); ok {
		return Wrapc(err, code, err.Error())
	}
	return &codedError{
		code:  code,
		error: err,
	}
}

type messageError struct {
	error
	origin error
}

func (e *messageError) Format(f fmt.State, c rune) {
	switch c {
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "%+v", e.error)
			fmt.Fprintf(f, "\nWrapping %+v", e.origin)
			return
		}
		fallthrough
	case 's', 'q':
		fmt.Fprintf(f, "%s", e.error)
	}
}

func (e *messageError) Unwrap() error {
	return e.origin
}

// Wrap adds a message to the error keeping its code.
func Wrap(e error, msg string) error {
	return &messageError{
		error:  errors.New(msg),
		origin: e,
	}
}

func Wrapf(e error, f string, args ...interface{}) error {
	return &messageError{
		error:  errors.Errorf(f, args...),
		origin: e,
	}
}

type wrappedError struct {
	error
	code   Code
	origin error
}

func (e *wrappedError) Format(f fmt.State, c rune) {
	switch c {
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "E%04d:%+v", e.code, e.error)
			fmt.Fprintf(f, "\nWrapping %+v", e.origin)
			return
		}
		fallthrough
	case 'q', 's':
		fmt.Fprintf(f, "E%04d:%s", e.code, e.error)
	}
}

func (e *wrappedError) Unwrap() error {
	return e.origin
}

func (e *wrappedError) ErrorCode() Code {
	return e.code
}

func Wrapc(e error, c Code, msg string) error {
	return &wrappedError{
		error:  errors.New(msg),
		code:   c,
		origin: e,
	}
}

func Wrapcf(e error, c Code, f string, args ...interface{}) error {
	return &wrappedError{
		error:  errors.Errorf(f, args...),
		code:   c,
		origin: e,
	}
}

type ErrorCoder interface {
	error
	ErrorCode() Code
}

func CoderOf(e error) (ErrorCoder, bool) {
	coder := FindCause(e, func(err error) bool {
		_, ok := err.(ErrorCoder)
		return ok
	})
	if coder != nil {
		return coder.(ErrorCoder), true
	}
	return nil, false
}

// CodeOf returns the code of the outermost coded error in the chain.
func CodeOf(e error) Code {
	if e == nil {
		return Success
	}
	if coder, ok := CoderOf(e); ok {
		return coder.ErrorCode()
	}
	return UnknownError
}

func Unwrap(err error) error {
	switch obj := err.(type) {
	case interface{ Unwrap() error }:
		return obj.Unwrap()
	case interface{ Cause() error }:
		return obj.Cause()
	default:
		return nil
	}
}

// Is checks whether err is caused by the target.
func Is(err, target error) bool {
	if target == nil {
		return err == target
	}
	isComparable := reflect.TypeOf(target).Comparable()
	for {
		if isComparable && err == target {
			return true
		}
		if x, ok := err.(interface{ Is(error) bool }); ok && x.Is(target) {
			return true
		}
		if err = Unwrap(err); err == nil {
			return false
		}
	}
}

// As finds the first error in the chain assignable to target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func FindCause(err error, cb func(err error) bool) error {
	for {
		if err == nil {
			return nil
		}
		if cb(err) {
			return err
		}
		err = Unwrap(err)
	}
}
