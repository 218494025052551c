package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies a gateway failure. Every provider-side error passes
// through exactly one of these kinds; callers dispatch on Kind to decide
// between retrying and failing permanently.
type Kind int

const (
	KindGeneric Kind = iota
	KindAuthentication
	KindValidation
	KindRateLimit
	KindTimeout
	KindConnection
	KindInvalidPayload
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindRateLimit:
		return "rate_limit"
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindInvalidPayload:
		return "invalid_payload"
	default:
		return "generic"
	}
}

// Error is a classified gateway failure. It always names the gateway and
// keeps the outbound request and decoded response bodies, when available,
// for diagnostics.
type Error struct {
	Kind             Kind
	Gateway          string
	Message          string
	ValidationErrors map[string]any
	RetryAfter       int
	TimeoutSeconds   int
	Request          map[string]any
	Response         map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %s: %s", e.Gateway, e.Kind, e.Message)
}

// Retryable reports whether the failure is worth another attempt.
// Rate limits are handled separately by the caller via RetryAfter.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindAuthentication, KindValidation, KindInvalidPayload:
		return false
	default:
		return true
	}
}

// AsError unwraps err into a *Error when it carries one.
func AsError(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// UnsupportedGatewayError indicates a subacquirer slug with no registered
// gateway. This is a configuration problem detected before any network
// attempt, not a gateway failure.
type UnsupportedGatewayError struct {
	Slug string
}

func (e *UnsupportedGatewayError) Error() string {
	return fmt.Sprintf("gateway %q is not supported", e.Slug)
}

func invalidPayload(gw, reason string, payload map[string]any) *Error {
	return &Error{
		Kind:     KindInvalidPayload,
		Gateway:  gw,
		Message:  reason,
		Response: payload,
	}
}

// classifyResponse maps a completed non-2xx HTTP exchange into a failure.
func classifyResponse(gw string, httpStatus int, responseBody, requestBody map[string]any) *Error {
	switch httpStatus {
	case 401:
		return &Error{
			Kind:     KindAuthentication,
			Gateway:  gw,
			Message:  "gateway authentication failed",
			Request:  requestBody,
			Response: responseBody,
		}
	case 422:
		fieldErrors, _ := responseBody["errors"].(map[string]any)
		if fieldErrors == nil {
			fieldErrors = map[string]any{}
		}
		return &Error{
			Kind:             KindValidation,
			Gateway:          gw,
			Message:          "gateway validation failed",
			ValidationErrors: fieldErrors,
			Request:          requestBody,
			Response:         responseBody,
		}
	case 429:
		retryAfter := 0
		if v, ok := responseBody["retry_after"].(float64); ok {
			retryAfter = int(v)
		}
		return &Error{
			Kind:       KindRateLimit,
			Gateway:    gw,
			Message:    "gateway rate limit exceeded",
			RetryAfter: retryAfter,
			Request:    requestBody,
			Response:   responseBody,
		}
	default:
		message := fmt.Sprintf("gateway request failed with status %d", httpStatus)
		if m, ok := responseBody["message"].(string); ok && m != "" {
			message = m
		}
		return &Error{
			Kind:     KindGeneric,
			Gateway:  gw,
			Message:  message,
			Request:  requestBody,
			Response: responseBody,
		}
	}
}

// classifyTransport maps a transport-level failure (the request never
// completed) into Timeout or Connection.
func classifyTransport(gw string, err error, timeoutSeconds int, requestBody map[string]any) *Error {
	if isTimeout(err) {
		return &Error{
			Kind:           KindTimeout,
			Gateway:        gw,
			Message:        fmt.Sprintf("gateway request timed out after %d seconds", timeoutSeconds),
			TimeoutSeconds: timeoutSeconds,
			Request:        requestBody,
		}
	}
	return &Error{
		Kind:    KindConnection,
		Gateway: gw,
		Message: err.Error(),
		Request: requestBody,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
