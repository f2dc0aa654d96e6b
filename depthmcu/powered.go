package depthmcu

import (
	"github.com/nasa-jpl/k4ausb/protocol"
	"github.com/nasa-jpl/k4ausb/usbcommand"
)

// Powered is a depth-MCU controller whose capture mode has been set. The
// depth sensor is powered on but not yet streaming frames.
type Powered struct {
	common
	mode protocol.SensorMode
}

// Mode returns the sensor mode this controller was powered on with.
func (p *Powered) Mode() protocol.SensorMode {
	return p.mode
}

// Calibration issues NVDataGet(IRSensorCalibration) and returns the
// transferred calibration blob, truncated to its actual length.
func (p *Powered) Calibration() ([]byte, error) {
	if err := p.checkLive(); err != nil {
		return nil, err
	}
	buf := make([]byte, protocol.CalibrationScratchSize)
	n, err := p.conn.Read(protocol.NVDataGet, protocol.IRSensorCalibration.Bytes(), buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// StartStreaming transmits DepthFPSSet, DepthStart, and DepthStreamStart, in
// that order, then launches the streaming worker with the padded payload
// size of this controller's sensor mode. Each completed frame is delivered
// to sink. On success the controller transitions to Streaming; any step's
// failure poisons this object.
func (p *Powered) StartStreaming(fps protocol.FPS, sink usbcommand.FrameSink) (*Streaming, error) {
	if err := p.checkLive(); err != nil {
		return nil, err
	}
	p.poison()

	if _, err := p.conn.Write(protocol.DepthFPSSet, fps.Bytes(), nil); err != nil {
		return nil, err
	}
	if _, err := p.conn.Write(protocol.DepthStart, nil, nil); err != nil {
		return nil, err
	}
	if _, err := p.conn.Write(protocol.DepthStreamStart, nil, nil); err != nil {
		return nil, err
	}

	payloadSize := p.mode.PayloadSize().Padded
	if err := p.conn.StreamStart(payloadSize, sink); err != nil {
		return nil, err
	}

	return &Streaming{
		common: common{conn: p.conn, poisoned: new(bool)},
		mode:   p.mode,
	}, nil
}
