package uds

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportError covers a failed transport configuration or send (ELM,
// CAN, ISO-TP) underneath UDS.
type TransportError struct{ cause error }

func (e *TransportError) Error() string { return "uds transport error: " + e.cause.Error() }
func (e *TransportError) Unwrap() error { return e.cause }

// NewTransportError wraps cause with errors.Wrap. Unwrap exposes that
// wrapped cause, so errors.Is/As reach the original transport failure;
// TransportError has no Cause method, so errors.Cause(err) stops at it.
func NewTransportError(cause error) error {
	return &TransportError{cause: errors.Wrap(cause, "uds transport")}
}

// ResponseError covers a malformed or unexpected UDS response.
type ResponseError struct{ msg string }

func (e *ResponseError) Error() string { return e.msg }

// NewResponseError builds a ResponseError with msg.
func NewResponseError(msg string) error { return &ResponseError{msg: msg} }

// NegativeResponse is the ECU's 0x7F SID NRC reply to a request.
type NegativeResponse struct {
	ServiceID byte
	NRC       byte
}

func (e *NegativeResponse) Error() string {
	return fmt.Sprintf("negative response: service 0x%02X, NRC 0x%02X", e.ServiceID, e.NRC)
}

// NewNegativeResponse builds a NegativeResponse for (serviceID, nrc).
func NewNegativeResponse(serviceID, nrc byte) error {
	return &NegativeResponse{ServiceID: serviceID, NRC: nrc}
}
