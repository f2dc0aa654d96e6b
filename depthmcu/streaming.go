package depthmcu

import (
	"log"

	"github.com/nasa-jpl/k4ausb/protocol"
)

// Streaming is a depth-MCU controller actively delivering frames through the
// streaming worker started by Powered.StartStreaming.
type Streaming struct {
	common
	mode protocol.SensorMode
}

// Mode returns the sensor mode this controller is streaming with.
func (s *Streaming) Mode() protocol.SensorMode {
	return s.mode
}

// StopStreaming stops the streaming worker and transmits DepthStreamStop and
// DepthStop, in that order, transitioning back to Powered. Any step's
// failure poisons this object.
func (s *Streaming) StopStreaming() (*Powered, error) {
	if err := s.checkLive(); err != nil {
		return nil, err
	}
	s.poison()

	if err := s.conn.StreamStop(); err != nil {
		return nil, err
	}
	if _, err := s.conn.Write(protocol.DepthStreamStop, nil, nil); err != nil {
		return nil, err
	}
	if _, err := s.conn.Write(protocol.DepthStop, nil, nil); err != nil {
		return nil, err
	}

	return &Powered{
		common: common{conn: s.conn, poisoned: new(bool)},
		mode:   s.mode,
	}, nil
}

// Close performs a best-effort stop of the streaming session. It is meant
// for callers that are discarding a Streaming controller without having
// called StopStreaming explicitly; any error along the way is logged rather
// than returned, since there is no longer a useful caller to report it to.
func (s *Streaming) Close() {
	if _, err := s.StopStreaming(); err != nil {
		log.Println("depthmcu: best-effort stop on Close failed:", err)
	}
}
