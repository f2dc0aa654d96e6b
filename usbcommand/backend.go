package usbcommand

// Backend abstracts the subset of USB operations the transport needs. The
// production implementation (gousbBackend, see gousb.go) drives a real
// device through github.com/google/gousb; tests substitute a scripted fake
// so that the transaction-id, protocol-mismatch, and streaming-lifecycle
// properties can be exercised without hardware, and supply it to
// NewConnection directly.
type Backend interface {
	// WriteCommand bulk-writes data to the command TX endpoint and returns
	// the number of bytes actually written.
	WriteCommand(data []byte) (int, error)

	// ReadCommand bulk-reads from the command RX endpoint into buf and
	// returns the number of bytes actually read. Short reads are legal.
	ReadCommand(buf []byte) (int, error)

	// ReadStream bulk-reads from the streaming endpoint into buf and
	// returns the number of bytes actually read.
	ReadStream(buf []byte) (int, error)

	// SerialNumber returns the device's serial-number string descriptor,
	// read once at Open time.
	SerialNumber() string

	// Close releases the interface, configuration, and device handle.
	Close() error
}
