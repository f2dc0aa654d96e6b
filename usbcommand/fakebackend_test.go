package usbcommand_test

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/nasa-jpl/k4ausb/protocol"
)

// scriptedResponse is one canned reply, consumed in order, from either the
// command-read or streaming-read queue of a fakeBackend.
type scriptedResponse struct {
	data []byte
	err  error
}

// fakeBackend is a scripted usbcommand.Backend used in place of real
// hardware. Canned command and stream replies are consumed in queue order.
type fakeBackend struct {
	mu sync.Mutex

	serial string

	writes   [][]byte
	readCmd  []scriptedResponse
	readStrm []scriptedResponse
	closed   bool
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

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBackend) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeBackend) headerTxID(i int) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return binary.LittleEndian.Uint32(f.writes[i][4:8])
}
