// Package errors defines the domain error codes returned by the engine.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"connectrpc.com/connect"
)

// Code is a stable, machine-readable error number.
type Code uint32

const (
	CodeUnknown Code = 0

	CodeGroupNotFound               Code = 1
	CodeGroupNotActive              Code = 2
	CodeGroupCompleted              Code = 3
	CodeInvalidGroupStatus          Code = 4
	CodeMemberCountExceeded         Code = 5
	CodeUnauthorized                Code = 6
	CodeFailedToTransferToRecipient Code = 7
	CodeFailedToTransferFromMember  Code = 8
	CodeNoBalanceToTransfer         Code = 9

	CodeAlreadyMember      Code = 10
	CodeNotMember          Code = 11
	CodeAlreadyContributed Code = 12
	CodeInvalidAmount      Code = 13
)

var codeNames = map[Code]string{
	CodeUnknown:                     "UNKNOWN",
	CodeGroupNotFound:               "GROUP_NOT_FOUND",
	CodeGroupNotActive:              "GROUP_NOT_ACTIVE",
	CodeGroupCompleted:              "GROUP_COMPLETED",
	CodeInvalidGroupStatus:          "INVALID_GROUP_STATUS",
	CodeMemberCountExceeded:         "MEMBER_COUNT_EXCEEDED",
	CodeUnauthorized:                "UNAUTHORIZED",
	CodeFailedToTransferToRecipient: "FAILED_TO_TRANSFER_TO_RECIPIENT",
	CodeFailedToTransferFromMember:  "FAILED_TO_TRANSFER_FROM_MEMBER",
	CodeNoBalanceToTransfer:         "NO_BALANCE_TO_TRANSFER",
	CodeAlreadyMember:               "ALREADY_MEMBER",
	CodeNotMember:                   "NOT_MEMBER",
	CodeAlreadyContributed:          "ALREADY_CONTRIBUTED",
	CodeInvalidAmount:               "INVALID_AMOUNT",
}

// String returns the reason label of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%d", uint32(c))
}

// ConnectCode maps domain codes to Connect status codes.
func (c Code) ConnectCode() connect.Code {
	switch c {
	case CodeGroupNotFound:
		return connect.CodeNotFound

	// state doesn't allow the operation
	case CodeGroupNotActive,
		CodeGroupCompleted,
		CodeInvalidGroupStatus,
		CodeNoBalanceToTransfer:
		return connect.CodeFailedPrecondition

	case CodeMemberCountExceeded:
		return connect.CodeResourceExhausted

	case CodeUnauthorized, CodeNotMember:
		return connect.CodePermissionDenied

	// the external transfer failed; safe to retry
	case CodeFailedToTransferToRecipient, CodeFailedToTransferFromMember:
		return connect.CodeAborted

	case CodeAlreadyMember, CodeAlreadyContributed:
		return connect.CodeAlreadyExists

	case CodeInvalidAmount:
		return connect.CodeInvalidArgument

	default:
		return connect.CodeInternal
	}
}

// Error is a domain error carrying a Code and optional metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	cause    error
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error that keeps cause reachable through errors.Unwrap.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Metadata) > 0 {
		keys := make([]string, 0, len(e.Metadata))
		for k := range e.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Metadata[k])
		}
		b.WriteString(")")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of e with key=value added to its metadata.
func (e *Error) With(key, value string) *Error {
	out := *e
	out.Metadata = make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[key] = value
	return &out
}

// Sentinels for errors.Is comparisons.
var (
	ErrGroupNotFound               = New(CodeGroupNotFound, "group does not exist")
	ErrGroupNotActive              = New(CodeGroupNotActive, "group is not active")
	ErrGroupCompleted              = New(CodeGroupCompleted, "group is already completed")
	ErrInvalidGroupStatus          = New(CodeInvalidGroupStatus, "invalid group status")
	ErrMemberCountExceeded         = New(CodeMemberCountExceeded, "member count exceeds maximum")
	ErrUnauthorized                = New(CodeUnauthorized, "unauthorized")
	ErrFailedToTransferToRecipient = New(CodeFailedToTransferToRecipient, "failed to transfer to recipient")
	ErrFailedToTransferFromMember  = New(CodeFailedToTransferFromMember, "failed to transfer from member")
	ErrNoBalanceToTransfer         = New(CodeNoBalanceToTransfer, "no balance to transfer")
	ErrAlreadyMember               = New(CodeAlreadyMember, "already a member of the group")
	ErrNotMember                   = New(CodeNotMember, "not a member of the group")
	ErrAlreadyContributed          = New(CodeAlreadyContributed, "already contributed this cycle")
	ErrInvalidAmount               = New(CodeInvalidAmount, "invalid amount")
)

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
