package usbcommand

import (
	"errors"
	"fmt"

	"github.com/nasa-jpl/k4ausb/protocol"
)

// ErrNoDevice is returned by Open when no USB device matches the endpoint
// descriptor's (vid, pid) after filtering by device index.
var ErrNoDevice = errors.New("usbcommand: no matching USB device found")

// ErrAccess is returned when the OS refused access to the device handle.
var ErrAccess = errors.New("usbcommand: access to USB device denied")

// ErrTimeout is returned when a bulk transfer exceeds the command timeout.
var ErrTimeout = errors.New("usbcommand: command timed out")

// ErrAlreadyStreaming is returned by StreamStart when a streaming worker is
// already running on this connection.
var ErrAlreadyStreaming = errors.New("usbcommand: streaming worker already running")

// ErrNotStreaming reports that no streaming worker is running on this
// connection. StreamStop does not return it: stopping a connection with no
// worker running is a no-op that returns nil.
var ErrNotStreaming = errors.New("usbcommand: no streaming worker running")

// Mismatch records an expected vs. observed value for a protocol error.
type Mismatch[T any] struct {
	Expected T
	Actual   T
}

func (m Mismatch[T]) String() string {
	return fmt.Sprintf("expected %v, got %v", m.Expected, m.Actual)
}

// ProtocolError is the family of errors produced when a response envelope
// fails to validate against the request that produced it.
type ProtocolError struct {
	// Kind names which check failed.
	Kind string

	// SizeMismatch is populated when Kind == "ResponseSizeMismatch".
	SizeMismatch Mismatch[int]

	// TransactionIDMismatch is populated when Kind == "TransactionIdMismatch".
	TransactionIDMismatch Mismatch[uint32]

	// PacketTypeMismatch is populated when Kind == "PacketTypeMismatch".
	PacketTypeMismatch Mismatch[uint32]
}

func (e *ProtocolError) Error() string {
	switch e.Kind {
	case "ResponseSizeMismatch":
		return fmt.Sprintf("usbcommand: response size mismatch (%s)", e.SizeMismatch)
	case "TransactionIdMismatch":
		return fmt.Sprintf("usbcommand: transaction id mismatch (%s)", e.TransactionIDMismatch)
	case "PacketTypeMismatch":
		return fmt.Sprintf("usbcommand: packet type mismatch (%s)", e.PacketTypeMismatch)
	case "InvalidString":
		return "usbcommand: response was not valid UTF-8"
	default:
		return "usbcommand: protocol error"
	}
}

// ErrResponseSizeMismatch builds a ProtocolError for an envelope whose length
// did not equal protocol.EnvelopeSize.
func ErrResponseSizeMismatch(expected, actual int) error {
	return &ProtocolError{Kind: "ResponseSizeMismatch", SizeMismatch: Mismatch[int]{expected, actual}}
}

// ErrTransactionIDMismatch builds a ProtocolError for an envelope whose
// transaction id did not match the request that produced it.
func ErrTransactionIDMismatch(expected, actual uint32) error {
	return &ProtocolError{Kind: "TransactionIdMismatch", TransactionIDMismatch: Mismatch[uint32]{expected, actual}}
}

// ErrPacketTypeMismatch builds a ProtocolError for an envelope whose
// packet_type was not protocol.ResponsePacketType.
func ErrPacketTypeMismatch(expected, actual uint32) error {
	return &ProtocolError{Kind: "PacketTypeMismatch", PacketTypeMismatch: Mismatch[uint32]{expected, actual}}
}

// ErrInvalidString is returned when a response that is supposed to carry a
// UTF-8 string contains invalid bytes.
var ErrInvalidString error = &ProtocolError{Kind: "InvalidString"}

// FirmwareError wraps a non-zero firmware status from a response envelope.
// It preserves the numeric code (via protocol.Status) and renders a symbolic
// name when one is known.
type FirmwareError struct {
	Status protocol.Status
}

func (e *FirmwareError) Error() string {
	return fmt.Sprintf("usbcommand: firmware returned status %s", e.Status)
}

// Is lets errors.Is(err, usbcommand.ErrFirmware) match any FirmwareError,
// regardless of the specific status code carried.
func (e *FirmwareError) Is(target error) bool {
	_, ok := target.(*FirmwareError)
	return ok
}

// ErrFirmware is a sentinel usable with errors.Is to detect "some firmware
// error occurred" without caring about the specific status code.
var ErrFirmware = &FirmwareError{}
