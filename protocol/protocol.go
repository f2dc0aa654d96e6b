/*Package protocol defines the wire-level layouts used to talk to an Azure
Kinect-class depth sensing peripheral: the fixed command header, the inline
argument block, the response envelope, and the constants (endpoint tables,
command codes, sensor modes, firmware status codes) that parameterize them.

This package does no I/O. It builds and parses byte slices only, so that the
transport layer (package usbcommand) and its tests can depend on a pure,
allocation-light encoder/decoder instead of re-deriving the header layout.

All multi-byte fields are little-endian and densely packed; buffers are built
explicitly with encoding/binary rather than via Go struct layout, since Go
gives no padding guarantee equivalent to Rust's repr(C, packed).
*/
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// RequestPacketType is the fixed packet_type value of every request header.
const RequestPacketType uint32 = 0x06022009

// ResponsePacketType is the fixed packet_type value of every response envelope.
const ResponsePacketType uint32 = 0x0A6FE000

// HeaderSize is the size in bytes of a command header.
const HeaderSize = 24

// EnvelopeSize is the size in bytes of a response envelope.
const EnvelopeSize = 16

// MaxArgumentSize is the largest inline command argument the device accepts.
const MaxArgumentSize = 128

// ErrArgumentTooLarge is returned by NewPacket when the caller's inline
// argument exceeds MaxArgumentSize.
var ErrArgumentTooLarge = errors.New("protocol: command argument exceeds 128 bytes")

// EndpointDescriptor names the USB identity and endpoint addresses of one
// logical function of the peripheral (depth processor or color/IMU
// processor).
type EndpointDescriptor struct {
	VID            uint16
	PID            uint16
	Interface      int
	CmdTxEndpoint  int
	CmdRxEndpoint  int
	StreamEndpoint int
}

// DepthEndpoint is the endpoint descriptor for the depth processor function.
var DepthEndpoint = EndpointDescriptor{
	VID:            0x045e,
	PID:            0x097c,
	Interface:      0,
	CmdTxEndpoint:  0x02,
	CmdRxEndpoint:  0x81,
	StreamEndpoint: 0x83,
}

// ColorIMUEndpoint is the endpoint descriptor for the color/IMU processor
// function. No controller is built atop it in this module (out of scope),
// but the constant is kept because it is part of the wire protocol table.
var ColorIMUEndpoint = EndpointDescriptor{
	VID:            0x045e,
	PID:            0x097d,
	Interface:      2,
	CmdTxEndpoint:  0x04,
	CmdRxEndpoint:  0x83,
	StreamEndpoint: 0x82,
}

// Command is a u32 command code understood by the device firmware.
type Command uint32

// Command codes. Names match the firmware's own vocabulary.
const (
	Reset                    Command = 0x0000
	VersionGet               Command = 0x0002
	DepthStart               Command = 0x0009
	DepthStop                Command = 0x000A
	NVDataGet                Command = 0x0022
	DepthModeSet             Command = 0x00E1
	DepthPowerOff            Command = 0x00EF
	DepthPowerOn             Command = 0x00F0
	DepthStreamStart         Command = 0x00F1
	DepthStreamStop          Command = 0x00F2
	DepthFPSSet              Command = 0x0103
	DepthReadCalibrationData Command = 0x0111
	DepthReadProductSN       Command = 0x0115
	ComponentVersionGet      Command = 0x0201
	DownloadFirmware         Command = 0x0202
	GetFirmwareUpdateStatus  Command = 0x0203
)

// Header is the in-memory representation of a 24 byte command header.
type Header struct {
	PacketType    uint32
	TransactionID uint32
	PayloadSize   uint32
	Command       Command
	Reserved      uint32
}

// PutHeader encodes h into buf[:HeaderSize]. buf must have length >= HeaderSize.
func PutHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.PacketType)
	binary.LittleEndian.PutUint32(buf[4:8], h.TransactionID)
	binary.LittleEndian.PutUint32(buf[8:12], h.PayloadSize)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Command))
	binary.LittleEndian.PutUint32(buf[16:20], h.Reserved)
}

// NewPacket builds a contiguous command packet: a 24 byte header immediately
// followed by 0..len(arg) bytes of inline argument, with no padding between
// the two. It returns ErrArgumentTooLarge if arg exceeds MaxArgumentSize.
func NewPacket(cmd Command, transactionID uint32, arg []byte) ([]byte, error) {
	if len(arg) > MaxArgumentSize {
		return nil, ErrArgumentTooLarge
	}
	buf := make([]byte, HeaderSize+len(arg))
	PutHeader(buf, Header{
		PacketType:    RequestPacketType,
		TransactionID: transactionID,
		PayloadSize:   uint32(len(arg)),
		Command:       cmd,
	})
	copy(buf[HeaderSize:], arg)
	return buf, nil
}

// Envelope is the in-memory representation of a 16 byte response envelope.
type Envelope struct {
	PacketType    uint32
	TransactionID uint32
	Status        Status
	Reserved      uint32
}

// DecodeEnvelope parses a response envelope from buf. buf must have length
// exactly EnvelopeSize; callers are expected to check the transferred byte
// count before calling this (see usbcommand.ErrResponseSizeMismatch).
func DecodeEnvelope(buf []byte) Envelope {
	return Envelope{
		PacketType:    binary.LittleEndian.Uint32(buf[0:4]),
		TransactionID: binary.LittleEndian.Uint32(buf[4:8]),
		Status:        Status(binary.LittleEndian.Uint32(buf[8:12])),
		Reserved:      binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// Status is a firmware response status code. The zero value, StatusOK,
// indicates success; any other value is a firmware-reported failure.
type Status uint32

// StatusOK is the status value meaning the command succeeded.
const StatusOK Status = 0x00

// Known status codes. Names mirror the firmware's DEV_CMD_STATUS_* constants.
const (
	StatusError                Status = 0x01
	StatusInvalidParameter     Status = 0x03
	StatusCommandBusy          Status = 0x07
	StatusNotImplemented       Status = 0x08
	StatusOutOfMemory          Status = 0x09
	StatusParamBadTag          Status = 0x0D
	StatusInvalidPayloadSize   Status = 0x12
	StatusFailed               Status = 0x63
	StatusWrongCommandState    Status = 0x101
	StatusWrongDeviceState     Status = 0x102
	StatusADCInvalidChannel    Status = 0x480
	StatusADCIncorrectChannel  Status = 0x481
	StatusADCTimeout           Status = 0x482
	StatusADCUnknownDevice     Status = 0x483
	StatusADCUnsupportedDevice Status = 0x484
	StatusADCUnsupportedSignal Status = 0x485
	StatusADCInvalidInput      Status = 0x486
	StatusADCDataNotAvailable  Status = 0x487
)

// statusNames maps numeric codes to symbolic names. String consults it and
// falls back to the bare hex code for anything unrecognized.
var statusNames = map[Status]string{
	StatusOK:                   "DEV_CMD_STATUS_SUCCESS",
	StatusError:                "DEV_CMD_STATUS_ERROR",
	StatusInvalidParameter:     "DEV_CMD_STATUS_INVALID_PARAMETER",
	StatusCommandBusy:          "DEV_CMD_STATUS_COMMAND_BUSY",
	StatusNotImplemented:       "DEV_CMD_STATUS_NOT_IMPLEMENTED",
	StatusOutOfMemory:          "DEV_CMD_STATUS_OUT_OF_MEMORY",
	StatusParamBadTag:          "DEV_CMD_STATUS_PARAM_BAD_TAG",
	StatusInvalidPayloadSize:   "DEV_CMD_STATUS_INVALID_PAYLOAD_SIZE",
	StatusFailed:               "DEV_CMD_STATUS_FAILED",
	StatusWrongCommandState:    "DEV_CMD_STATUS_WRONG_COMMAND_STATE",
	StatusWrongDeviceState:     "DEV_CMD_STATUS_WRONG_DEVICE_STATE",
	StatusADCInvalidChannel:    "DEV_CMD_STATUS_ADC_INVALID_CHANNEL",
	StatusADCIncorrectChannel:  "DEV_CMD_STATUS_ADC_INCORRECT_CHANNEL",
	StatusADCTimeout:           "DEV_CMD_STATUS_ADC_TIMEOUT",
	StatusADCUnknownDevice:     "DEV_CMD_STATUS_ADC_UNKNOWN_DEVICE",
	StatusADCUnsupportedDevice: "DEV_CMD_STATUS_ADC_UNSUPPORTED_DEVICE",
	StatusADCUnsupportedSignal: "DEV_CMD_STATUS_ADC_UNSUPPORTED_SIGNAL",
	StatusADCInvalidInput:      "DEV_CMD_STATUS_ADC_INVALID_INPUT",
	StatusADCDataNotAvailable:  "DEV_CMD_STATUS_ADC_DATA_NOT_AVAILABLE",
}

// String renders a Status using its symbolic name when known, else its
// numeric value. Unknown codes are never dropped, only unnamed.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return fmt.Sprintf("%s (0x%X)", name, uint32(s))
	}
	return fmt.Sprintf("0x%X", uint32(s))
}
