/*Package usbcommand implements the USB command transport for an Azure
Kinect-class depth sensing peripheral: device discovery and interface claim,
a framed request/response exchange correlated by a monotonic transaction id,
and a background streaming worker for the bulk image endpoint.

Typical usage:

	conn, err := usbcommand.Open(usbcommand.DepthProcessor, 0)
	if err != nil {
		// handle err
	}
	defer conn.Close()

	buf := make([]byte, 128)
	n, err := conn.Read(protocol.DepthReadProductSN, nil, buf)

Package depthmcu layers the depth-MCU state machine on top of a *Connection.
*/
package usbcommand

import (
	"fmt"
	"sync"
	"time"

	"github.com/nasa-jpl/k4ausb/protocol"
)

// DefaultTimeout is the default per-transfer command timeout.
const DefaultTimeout = 2 * time.Second

// DeviceType selects which logical USB function of the peripheral to open.
type DeviceType int

// Device types.
const (
	DepthProcessor DeviceType = iota
	ColorImuProcessor
)

func (t DeviceType) endpoint() protocol.EndpointDescriptor {
	switch t {
	case ColorImuProcessor:
		return protocol.ColorIMUEndpoint
	default:
		return protocol.DepthEndpoint
	}
}

// ConnectOption configures Open.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	timeout time.Duration
}

// WithTimeout overrides the default 2 second command timeout.
func WithTimeout(d time.Duration) ConnectOption {
	return func(o *connectOptions) { o.timeout = d }
}

// Connection is an owned, process-scoped handle to one USB function of the
// peripheral: the endpoint descriptor, the USB backend, the serial number
// read at open time, the command timeout, the next transaction id, and an
// optional streaming worker.
//
// All exported methods are safe for concurrent use; the command exchange
// and the streaming worker are serialized through mu so that a response
// envelope is always read immediately after the request that produced it.
type Connection struct {
	mu       sync.Mutex
	backend  Backend
	endpoint protocol.EndpointDescriptor
	serial   string
	timeout  time.Duration
	nextTxID uint32
	worker   *streamWorker
	closed   bool
}

// Open resolves a USB context, finds the deviceIndex-th device matching
// deviceType's (vid, pid), claims its interface, and returns a ready
// Connection.
func Open(deviceType DeviceType, deviceIndex int, opts ...ConnectOption) (*Connection, error) {
	o := connectOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	ep := deviceType.endpoint()
	be, err := openGousbBackend(ep, deviceIndex, o.timeout)
	if err != nil {
		return nil, err
	}
	return NewConnection(be, ep, o.timeout), nil
}

// NewConnection builds a Connection around an already-opened Backend. Open
// is the usual entry point for real hardware; NewConnection is the seam
// tests (in this package and in package depthmcu) use to drive a scripted
// fake Backend instead.
func NewConnection(be Backend, ep protocol.EndpointDescriptor, timeout time.Duration) *Connection {
	return &Connection{
		backend:  be,
		endpoint: ep,
		serial:   be.SerialNumber(),
		timeout:  timeout,
	}
}

// Pid returns the USB product id of the connected device function.
func (c *Connection) Pid() uint16 {
	return c.endpoint.PID
}

// SerialNumber returns the device's serial number, read once at Open time.
func (c *Connection) SerialNumber() string {
	return c.serial
}

// Close stops any running streaming worker, then releases the underlying
// USB backend. It is safe to call Close more than once; only the first call
// releases the backend.
func (c *Connection) Close() error {
	_ = c.StreamStop()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.backend.Close()
}

// allocTxID assigns the next transaction id. Callers must hold c.mu.
func (c *Connection) allocTxID() uint32 {
	id := c.nextTxID
	c.nextTxID++
	return id
}

// sendRequest writes a command header plus inline argument to the command
// TX endpoint. The header and argument must go out in one full bulk write;
// a short write leaves the firmware mid-packet, so it is an error. Callers
// must hold c.mu.
func (c *Connection) sendRequest(cmd protocol.Command, txID uint32, arg []byte) error {
	packet, err := protocol.NewPacket(cmd, txID, arg)
	if err != nil {
		return err
	}
	n, err := c.backend.WriteCommand(packet)
	if err != nil {
		return err
	}
	if n != len(packet) {
		return fmt.Errorf("usbcommand: short command write: %d of %d bytes", n, len(packet))
	}
	return nil
}

// readEnvelope reads and validates the 16 byte response envelope against
// the transaction id that was issued. Callers must hold c.mu.
func (c *Connection) readEnvelope(txID uint32) error {
	buf := make([]byte, protocol.EnvelopeSize)
	n, err := c.backend.ReadCommand(buf)
	if err != nil {
		return err
	}
	if n != protocol.EnvelopeSize {
		return ErrResponseSizeMismatch(protocol.EnvelopeSize, n)
	}
	env := protocol.DecodeEnvelope(buf)
	if env.TransactionID != txID {
		return ErrTransactionIDMismatch(txID, env.TransactionID)
	}
	if env.PacketType != protocol.ResponsePacketType {
		return ErrPacketTypeMismatch(protocol.ResponsePacketType, env.PacketType)
	}
	if env.Status != protocol.StatusOK {
		return &FirmwareError{Status: env.Status}
	}
	return nil
}

// Read issues a command that expects a payload response: it writes the
// command header (plus optional inline argument), bulk-reads the payload
// into rxBuf, then reads and validates the response envelope. It returns
// the number of payload bytes transferred.
func (c *Connection) Read(cmd protocol.Command, arg []byte, rxBuf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	txID := c.allocTxID()
	if err := c.sendRequest(cmd, txID, arg); err != nil {
		return 0, err
	}
	n, err := c.backend.ReadCommand(rxBuf)
	if err != nil {
		return 0, err
	}
	if err := c.readEnvelope(txID); err != nil {
		return n, err
	}
	return n, nil
}

// Write issues a command that carries an optional bulk payload of its own,
// distinct from the inline argument: it writes the command header (plus
// optional inline argument), bulk-writes txBuf if it is non-empty (an empty
// txBuf is never transmitted; the firmware rejects zero-length packets),
// then reads and validates the response envelope. It returns the number of
// payload bytes transmitted.
func (c *Connection) Write(cmd protocol.Command, arg []byte, txBuf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	txID := c.allocTxID()
	if err := c.sendRequest(cmd, txID, arg); err != nil {
		return 0, err
	}
	var n int
	if len(txBuf) > 0 {
		var err error
		n, err = c.backend.WriteCommand(txBuf)
		if err != nil {
			return 0, err
		}
	}
	if err := c.readEnvelope(txID); err != nil {
		return n, err
	}
	return n, nil
}
