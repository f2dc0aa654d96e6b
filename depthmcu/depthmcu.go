/*Package depthmcu implements the depth-MCU controller: a typestate state
machine layered on top of a usbcommand.Connection that mediates capture-mode
selection, calibration retrieval, and frame streaming for the depth
processor function of an Azure Kinect-class peripheral.

The controller has three states (Off, Powered, Streaming), each a distinct
Go type embedding the shared operations (Serialnum, WaitIsReady, Version,
ExtrinsicCalibration). An operation not meaningful for a state simply does
not exist as a method on that state's type, so calling it is a compile
error rather than a runtime one:

	off := depthmcu.New(conn)
	powered, err := off.SetCaptureMode(protocol.PassiveIR)
	// powered.Calibration() is valid; off.Calibration() does not compile.
	streaming, err := powered.StartStreaming(protocol.Fps15, sink)
	powered2, err := streaming.StopStreaming()

A state-changing operation poisons the controller object it was called on,
whether it fails or succeeds (on success the returned successor state takes
over): every later operation on that same object returns ErrPoisoned instead
of touching the device again.
*/
package depthmcu

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff"

	"github.com/nasa-jpl/k4ausb/protocol"
	"github.com/nasa-jpl/k4ausb/usbcommand"
)

// ErrPoisoned is returned by every operation on a controller object that has
// already gone through a state-changing operation. After a failure the
// firmware's resulting state is unknown, so the object refuses to touch the
// device again; callers are expected to drop the connection and reopen. After
// a success the returned successor state is the one to use.
var ErrPoisoned = errors.New("depthmcu: controller is poisoned, drop and reopen the connection")

// waitIsReadyRetries is the number of Version probes WaitIsReady performs
// before giving up.
const waitIsReadyRetries = 20

// waitIsReadyInterval is the spacing between WaitIsReady probes.
const waitIsReadyInterval = 500 * time.Millisecond

// common holds the state shared by every controller state and implements
// the operations valid in Off, Powered, and Streaming alike.
type common struct {
	conn     *usbcommand.Connection
	poisoned *bool
}

// poison marks this controller object (and, through the shared pointer, any
// alias of it) as exhausted. It is called unconditionally by every
// state-changing operation: on success the object has logically been
// consumed by the returned successor state; on failure the firmware's state
// is unknown and must not be touched again through this object.
func (c *common) poison() {
	*c.poisoned = true
}

// checkLive returns ErrPoisoned if this object has already been consumed by
// a state transition (successful or not).
func (c *common) checkLive() error {
	if *c.poisoned {
		return ErrPoisoned
	}
	return nil
}

// Serialnum issues DepthReadProductSN and returns the device's serial
// number. Valid in every state.
func (c *common) Serialnum() (string, error) {
	if err := c.checkLive(); err != nil {
		return "", err
	}
	buf := make([]byte, 128)
	n, err := c.conn.Read(protocol.DepthReadProductSN, nil, buf)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf[:n]) {
		return "", usbcommand.ErrInvalidString
	}
	return string(buf[:n]), nil
}

// Version issues ComponentVersionGet and returns the parsed firmware
// version block. Valid in every state.
func (c *common) Version() (protocol.FirmwareVersions, error) {
	if err := c.checkLive(); err != nil {
		return protocol.FirmwareVersions{}, err
	}
	buf := make([]byte, protocol.FirmwareVersionSize)
	n, err := c.conn.Read(protocol.ComponentVersionGet, nil, buf)
	if err != nil {
		return protocol.FirmwareVersions{}, err
	}
	if n != protocol.FirmwareVersionSize {
		return protocol.FirmwareVersions{}, usbcommand.ErrResponseSizeMismatch(protocol.FirmwareVersionSize, n)
	}
	return protocol.DecodeFirmwareVersions(buf), nil
}

// WaitIsReady polls Version up to 20 times at 500ms intervals, returning as
// soon as one probe succeeds, or ErrTimeout once every probe has failed.
// The firmware answers ComponentVersionGet only after its sensor bring-up
// finishes, which is what makes Version the readiness probe.
func (c *common) WaitIsReady() error {
	if err := c.checkLive(); err != nil {
		return err
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(waitIsReadyInterval), waitIsReadyRetries-1)
	op := func() error {
		_, err := c.Version()
		return err
	}
	if err := backoff.Retry(op, b); err != nil {
		return usbcommand.ErrTimeout
	}
	return nil
}

// ExtrinsicCalibration issues DepthReadCalibrationData and returns the
// transferred prefix decoded as UTF-8. Valid in every state.
func (c *common) ExtrinsicCalibration() (string, error) {
	if err := c.checkLive(); err != nil {
		return "", err
	}
	buf := make([]byte, protocol.ExtrinsicCalibrationScratchSize)
	n, err := c.conn.Read(protocol.DepthReadCalibrationData, nil, buf)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf[:n]) {
		return "", usbcommand.ErrInvalidString
	}
	return string(buf[:n]), nil
}
