package usbcommand

import (
	"fmt"
	"time"

	"github.com/google/gousb"

	"github.com/nasa-jpl/k4ausb/protocol"
)

// gousbBackend is the production backend, driving a real device through
// github.com/google/gousb.
type gousbBackend struct {
	ctx     *gousb.Context
	dev     *gousb.Device
	cfg     *gousb.Config
	iface   *gousb.Interface
	cmdOut  *gousb.OutEndpoint
	cmdIn   *gousb.InEndpoint
	stream  *gousb.InEndpoint
	serial  string
	timeout time.Duration
}

// openGousbBackend resolves a USB context, enumerates devices matching ep's
// (vid, pid), skips deviceIndex matches, opens the remaining one, claims
// configuration 1 and the target interface, and opens the three endpoints
// the transport needs.
func openGousbBackend(ep protocol.EndpointDescriptor, deviceIndex int, timeout time.Duration) (Backend, error) {
	ctx := gousb.NewContext()

	matched := 0
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Vendor != gousb.ID(ep.VID) || desc.Product != gousb.ID(ep.PID) {
			return false
		}
		take := matched == deviceIndex
		matched++
		return take
	})
	if err != nil {
		ctx.Close()
		return nil, classifyTransportErr(err)
	}
	if len(devices) == 0 {
		ctx.Close()
		return nil, ErrNoDevice
	}
	// Only the first selected device is ours; close any others the
	// enumeration callback may have admitted.
	dev := devices[0]
	for _, extra := range devices[1:] {
		extra.Close()
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, classifyTransportErr(err)
	}

	serial, err := dev.SerialNumber()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, classifyTransportErr(err)
	}

	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, classifyTransportErr(err)
	}

	iface, err := cfg.Interface(ep.Interface, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, classifyTransportErr(err)
	}

	// The endpoint table stores wire addresses; gousb wants the bare
	// endpoint number, with the IN direction bit (0x80) stripped.
	cmdOut, err := iface.OutEndpoint(ep.CmdTxEndpoint)
	if err != nil {
		iface.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, classifyTransportErr(err)
	}

	cmdIn, err := iface.InEndpoint(ep.CmdRxEndpoint &^ 0x80)
	if err != nil {
		iface.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, classifyTransportErr(err)
	}

	streamIn, err := iface.InEndpoint(ep.StreamEndpoint &^ 0x80)
	if err != nil {
		iface.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, classifyTransportErr(err)
	}

	return &gousbBackend{
		ctx:     ctx,
		dev:     dev,
		cfg:     cfg,
		iface:   iface,
		cmdOut:  cmdOut,
		cmdIn:   cmdIn,
		stream:  streamIn,
		serial:  serial,
		timeout: timeout,
	}, nil
}

// withTimeout races a blocking USB transfer against g.timeout. gousb's bulk
// Read/Write calls do not accept a per-call deadline, so the transport
// enforces its own timeout here rather than depending on a libusb-level
// knob; a transfer still in flight when the timeout elapses is reported as
// ErrTimeout and its goroutine left to finish or fail on its own.
func withTimeout(timeout time.Duration, fn func() (int, error)) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := fn()
		ch <- result{n, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			return r.n, classifyTransportErr(r.err)
		}
		return r.n, nil
	case <-time.After(timeout):
		return 0, ErrTimeout
	}
}

func (g *gousbBackend) WriteCommand(data []byte) (int, error) {
	return withTimeout(g.timeout, func() (int, error) { return g.cmdOut.Write(data) })
}

func (g *gousbBackend) ReadCommand(buf []byte) (int, error) {
	return withTimeout(g.timeout, func() (int, error) { return g.cmdIn.Read(buf) })
}

func (g *gousbBackend) ReadStream(buf []byte) (int, error) {
	return withTimeout(g.timeout, func() (int, error) { return g.stream.Read(buf) })
}

func (g *gousbBackend) SerialNumber() string {
	return g.serial
}

func (g *gousbBackend) Close() error {
	g.iface.Close()
	errCfg := g.cfg.Close()
	errDev := g.dev.Close()
	g.ctx.Close()
	if errCfg != nil {
		return fmt.Errorf("usbcommand: closing config: %w", errCfg)
	}
	if errDev != nil {
		return fmt.Errorf("usbcommand: closing device: %w", errDev)
	}
	return nil
}

// classifyTransportErr maps a gousb/libusb error into the usbcommand error
// taxonomy, preserving anything it doesn't specifically recognize as a
// wrapped transport error.
func classifyTransportErr(err error) error {
	if err == nil {
		return nil
	}
	switch err {
	case gousb.ErrorAccess:
		return ErrAccess
	case gousb.ErrorTimeout:
		return ErrTimeout
	case gousb.ErrorNoDevice, gousb.ErrorNotFound:
		return ErrNoDevice
	}
	return fmt.Errorf("usbcommand: transport error: %w", err)
}
