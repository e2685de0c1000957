package diagnostics

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"syscall"

	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/contactrelay/pkg/email"
)

const codeTimeout = "TIMEOUT"

var errnoNames = map[syscall.Errno]string{
	syscall.ECONNREFUSED: "ECONNREFUSED",
	syscall.ECONNRESET:   "ECONNRESET",
	syscall.ETIMEDOUT:    "ETIMEDOUT",
	syscall.EHOSTUNREACH: "EHOSTUNREACH",
	syscall.ENETUNREACH:  "ENETUNREACH",
}

// ExtractCode finds the most specific failure code in err's chain.
func ExtractCode(err error) string {
	if err == nil {
		return ""
	}

	if pe, ok := email.AsProviderError(err); ok && pe.Code != "" {
		return pe.Code
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if name, ok := errnoNames[errno]; ok {
			return name
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return "ENOTFOUND"
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return strconv.Itoa(tpErr.Code)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return codeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return codeTimeout
	}

	return ""
}
