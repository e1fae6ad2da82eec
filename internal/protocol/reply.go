package protocol

import (
	"fmt"
	"strings"
)

// Reply prefixes. The OK/BAD prefix is the wire-compatibility contract;
// everything after it is colon-delimited trailing data.
const (
	PrefixOK  = "OK"
	PrefixBad = "BAD"
)

func OK() string { return PrefixOK }

func OKf(format string, args ...any) string {
	return PrefixOK + ": " + fmt.Sprintf(format, args...)
}

// OKFields joins trailing data fields in the wire's colon-delimited form.
func OKFields(fields ...string) string {
	if len(fields) == 0 {
		return PrefixOK
	}
	return PrefixOK + ": " + strings.Join(fields, ":")
}

func Bad() string { return PrefixBad }

func Badf(format string, args ...any) string {
	return PrefixBad + ": " + fmt.Sprintf(format, args...)
}

func IsOK(reply string) bool {
	return reply == PrefixOK || strings.HasPrefix(reply, PrefixOK+":")
}
