package depthmcu_test

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/nasa-jpl/k4ausb/protocol"
)

// scriptedResponse is one canned reply, consumed in order.
type scriptedResponse struct {
	data []byte
	err  error
}

// fakeBackend is a scripted usbcommand.Backend, letting depthmcu's typestate
// and poisoning behavior be exercised without real hardware.
type fakeBackend struct {
	mu sync.Mutex

	serial string

	writes   [][]byte
	readCmd  []scriptedResponse
	readStrm []scriptedResponse
}

func newFakeBackend(serial string) *fakeBackend {
	return &fakeBackend{serial: serial}
}

func (f *fakeBackend) queueEnvelope(txID uint32, status protocol.Status) {
	buf := make([]byte, protocol.EnvelopeSize)
	binary.LittleEndian.PutUint32(buf[0:4], protocol.ResponsePacketType)
	binary.LittleEndian.PutUint32(buf[4:8], txID)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(status))
	f.queueCommandBytes(buf)
}

func (f *fakeBackend) queueCommandBytes(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCmd = append(f.readCmd, scriptedResponse{data: data})
}

func (f *fakeBackend) queueCommandErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCmd = append(f.readCmd, scriptedResponse{err: err})
}

func (f *fakeBackend) queueStreamBytes(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readStrm = append(f.readStrm, scriptedResponse{data: data})
}

func (f *fakeBackend) WriteCommand(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.writes = append(f.writes, cp)
	return len(data), nil
}

func (f *fakeBackend) ReadCommand(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.readCmd) == 0 {
		return 0, errors.New("fakeBackend: command response queue exhausted")
	}
	r := f.readCmd[0]
	f.readCmd = f.readCmd[1:]
	if r.err != nil {
		return 0, r.err
	}
	n := copy(buf, r.data)
	return n, nil
}

func (f *fakeBackend) ReadStream(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.readStrm) == 0 {
		return 0, errors.New("fakeBackend: stream response queue exhausted")
	}
	r := f.readStrm[0]
	f.readStrm = f.readStrm[1:]
	if r.err != nil {
		return 0, r.err
	}
	n := copy(buf, r.data)
	return n, nil
}

func (f *fakeBackend) SerialNumber() string { return f.serial }

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// writeCommand decodes the command code out of the i-th header written to
// WriteCommand.
func (f *fakeBackend) writeCommand(i int) protocol.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return protocol.Command(binary.LittleEndian.Uint32(f.writes[i][12:16]))
}

// writeArg returns the inline argument bytes (if any) trailing the i-th
// header written to WriteCommand.
func (f *fakeBackend) writeArg(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[i][protocol.HeaderSize:]
}
