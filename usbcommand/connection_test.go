package usbcommand_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nasa-jpl/k4ausb/protocol"
	"github.com/nasa-jpl/k4ausb/usbcommand"
)

func TestTransactionIDsMonotonic(t *testing.T) {
	be := newFakeBackend("SN-0001")
	const n = 5
	for i := uint32(0); i < n; i++ {
		be.queueEnvelope(i, protocol.StatusOK)
	}
	conn := usbcommand.NewConnection(be, protocol.DepthEndpoint, time.Second)

	for i := 0; i < n; i++ {
		if _, err := conn.Write(protocol.DepthStart, nil, nil); err != nil {
			t.Fatalf("write %d: unexpected error: %v", i, err)
		}
	}
	if got := be.writeCount(); got != n {
		t.Fatalf("expected %d header writes, got %d", n, got)
	}
	for i := 0; i < n; i++ {
		if got := be.headerTxID(i); got != uint32(i) {
			t.Errorf("write %d: expected transaction id %d, got %d", i, i, got)
		}
	}
}

func TestReadTransactionIDMismatch(t *testing.T) {
	be := newFakeBackend("SN-0001")
	be.queueCommandBytes([]byte("payload"))
	be.queueEnvelope(99, protocol.StatusOK) // wrong tid, expected 0
	conn := usbcommand.NewConnection(be, protocol.DepthEndpoint, time.Second)

	_, err := conn.Read(protocol.DepthReadProductSN, nil, make([]byte, 128))
	var perr *usbcommand.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProtocolError, got %v (%T)", err, err)
	}
	if perr.Kind != "TransactionIdMismatch" {
		t.Errorf("expected Kind=TransactionIdMismatch, got %s", perr.Kind)
	}
	if perr.TransactionIDMismatch.Expected != 0 || perr.TransactionIDMismatch.Actual != 99 {
		t.Errorf("unexpected mismatch detail: %+v", perr.TransactionIDMismatch)
	}
}

func TestReadEnvelopeTooShort(t *testing.T) {
	be := newFakeBackend("SN-0001")
	be.queueCommandBytes([]byte("payload"))
	be.queueCommandBytes(make([]byte, 8)) // too short for a 16 byte envelope
	conn := usbcommand.NewConnection(be, protocol.DepthEndpoint, time.Second)

	_, err := conn.Read(protocol.DepthReadProductSN, nil, make([]byte, 128))
	var perr *usbcommand.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ProtocolError, got %v (%T)", err, err)
	}
	if perr.Kind != "ResponseSizeMismatch" {
		t.Errorf("expected Kind=ResponseSizeMismatch, got %s", perr.Kind)
	}
}

func TestReadNonZeroStatusIsFirmwareError(t *testing.T) {
	be := newFakeBackend("SN-0001")
	be.queueCommandBytes([]byte("payload"))
	be.queueEnvelope(0, protocol.StatusInvalidParameter)
	conn := usbcommand.NewConnection(be, protocol.DepthEndpoint, time.Second)

	_, err := conn.Read(protocol.DepthReadProductSN, nil, make([]byte, 128))
	if !errors.Is(err, usbcommand.ErrFirmware) {
		t.Fatalf("expected ErrFirmware, got %v (%T)", err, err)
	}
	var ferr *usbcommand.FirmwareError
	if errors.As(err, &ferr) && ferr.Status != protocol.StatusInvalidParameter {
		t.Errorf("expected status %v, got %v", protocol.StatusInvalidParameter, ferr.Status)
	}
}

func TestWriteSkipsBulkWriteWhenTxBufEmpty(t *testing.T) {
	be := newFakeBackend("SN-0001")
	be.queueEnvelope(0, protocol.StatusOK)
	conn := usbcommand.NewConnection(be, protocol.DepthEndpoint, time.Second)

	if _, err := conn.Write(protocol.DepthStart, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the header packet should have been written; no separate bulk
	// write for a zero-length txBuf.
	if got := be.writeCount(); got != 1 {
		t.Fatalf("expected exactly 1 write (header only), got %d", got)
	}
}

func TestSerialNumberAndPid(t *testing.T) {
	be := newFakeBackend("SN-4242")
	conn := usbcommand.NewConnection(be, protocol.DepthEndpoint, time.Second)
	if conn.SerialNumber() != "SN-4242" {
		t.Errorf("expected serial SN-4242, got %s", conn.SerialNumber())
	}
	if conn.Pid() != protocol.DepthEndpoint.PID {
		t.Errorf("expected pid 0x%X, got 0x%X", protocol.DepthEndpoint.PID, conn.Pid())
	}
}
