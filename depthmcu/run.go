package depthmcu

import (
	"github.com/nasa-jpl/k4ausb/protocol"
	"github.com/nasa-jpl/k4ausb/usbcommand"
)

// Run drives conn through the full Off -> Powered -> Streaming -> Powered
// lifecycle: it sets the capture mode, waits for the sensor to come ready,
// starts streaming at fps delivering frames to sink, blocks until stop is
// closed, then stops streaming. It is a convenience wrapper around the
// typestate sequence for callers that just want frames for a while and don't
// need to hold the intermediate controller values themselves.
func Run(conn *usbcommand.Connection, mode protocol.CaptureMode, fps protocol.FPS, sink usbcommand.FrameSink, stop <-chan struct{}) error {
	off := New(conn)

	powered, err := off.SetCaptureMode(mode)
	if err != nil {
		return err
	}
	if err := powered.WaitIsReady(); err != nil {
		return err
	}

	streaming, err := powered.StartStreaming(fps, sink)
	if err != nil {
		return err
	}

	<-stop

	_, err = streaming.StopStreaming()
	return err
}
