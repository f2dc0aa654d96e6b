package depthmcu

import (
	"github.com/nasa-jpl/k4ausb/protocol"
	"github.com/nasa-jpl/k4ausb/usbcommand"
)

// Off is a depth-MCU controller that has not yet selected a capture mode.
// It owns the underlying Connection but has not powered on the depth
// sensor.
type Off struct {
	common
}

// New wraps conn in a depth-MCU controller starting in the Off state. conn
// is consumed: it should not be used directly by the caller afterward,
// since the controller takes over issuing the command exchanges.
func New(conn *usbcommand.Connection) *Off {
	return &Off{common{conn: conn, poisoned: new(bool)}}
}

// SetCaptureMode transmits DepthModeSet with the capture mode's sensor-mode
// code and, on success, transitions the controller to Powered. A failure
// poisons this object; the caller must drop and reopen.
func (o *Off) SetCaptureMode(mode protocol.CaptureMode) (*Powered, error) {
	if err := o.checkLive(); err != nil {
		return nil, err
	}
	o.poison()

	sensorMode := mode.SensorMode()
	if _, err := o.conn.Write(protocol.DepthModeSet, sensorMode.Bytes(), nil); err != nil {
		return nil, err
	}

	return &Powered{
		common: common{conn: o.conn, poisoned: new(bool)},
		mode:   sensorMode,
	}, nil
}
