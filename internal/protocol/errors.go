package protocol

import "errors"

// Decode errors. The session layer renders every one of these as a BAD reply
// and keeps the connection open.
var (
	ErrEmpty           = errors.New("empty command line")
	ErrUnknownCommand  = errors.New("no matching command")
	ErrMalformed       = errors.New("malformed argument list")
	ErrLoginRequired   = errors.New("login required")
	ErrAlreadyLoggedIn = errors.New("already logged in")
)

// Stable reason codes carried in audit/index records alongside the
// human-readable BAD text.
const (
	CodeProtoBadRequest = "E_PROTO_BAD_REQUEST"
	CodeBadRequest      = "E_BAD_REQUEST"
	CodeNotFound        = "E_NOT_FOUND"
	CodeConflict        = "E_CONFLICT"
	CodeInTransit       = "E_IN_TRANSIT"
	CodeNoPermission    = "E_NO_PERMISSION"
	CodeRateLimit       = "E_RATE_LIMIT"
	CodeInternal        = "E_INTERNAL"
)
