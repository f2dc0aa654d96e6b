package protocol

import "encoding/binary"

// SensorMode is the device-facing numeric mode transmitted to DepthModeSet.
type SensorMode uint32

// Sensor mode codes.
const (
	PseudoCommon     SensorMode = 3
	LongThrowNative  SensorMode = 4
	MegaPixel        SensorMode = 5
	QuarterMegaPixel SensorMode = 7
)

// meaningfulPayloadSizes holds the uncompressed frame size, in bytes, that
// each sensor mode delivers on the streaming endpoint.
var meaningfulPayloadSizes = map[SensorMode]int{
	PseudoCommon:     1678024,
	LongThrowNative:  5310760,
	MegaPixel:        9438664,
	QuarterMegaPixel: 3777232,
}

// roundUp1024 rounds n up to the next multiple of 1024.
func roundUp1024(n int) int {
	const size = 1024
	return (n + size - 1) &^ (size - 1)
}

// PayloadSize describes the meaningful (firmware-written) and padded
// (buffer-allocation) sizes of one streamed frame for a sensor mode.
type PayloadSize struct {
	Meaningful int
	Padded     int
}

// PayloadSize returns the meaningful and padded frame sizes for m.
func (m SensorMode) PayloadSize() PayloadSize {
	meaningful := meaningfulPayloadSizes[m]
	return PayloadSize{
		Meaningful: meaningful,
		Padded:     roundUp1024(meaningful),
	}
}

// Bytes encodes the sensor mode as its 4 byte little-endian wire argument.
func (m SensorMode) Bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(m))
	return buf
}

// CaptureMode is the user-facing preset (field of view x binning) that
// selects a SensorMode.
type CaptureMode int

// Capture mode presets.
const (
	Nfov2x2Binned CaptureMode = iota
	NfovUnbinned
	Wfov2x2Binned
	WfovUnbinned
	PassiveIR
)

// captureModeSensorMode is the CaptureMode -> SensorMode mapping table.
var captureModeSensorMode = map[CaptureMode]SensorMode{
	Nfov2x2Binned: LongThrowNative,
	NfovUnbinned:  LongThrowNative,
	Wfov2x2Binned: QuarterMegaPixel,
	WfovUnbinned:  MegaPixel,
	PassiveIR:     PseudoCommon,
}

// SensorMode returns the sensor mode that realizes this capture mode.
func (c CaptureMode) SensorMode() SensorMode {
	return captureModeSensorMode[c]
}

// FPS is a supported capture frame rate.
type FPS uint32

// Supported frame rates.
const (
	Fps5  FPS = 5
	Fps15 FPS = 15
	Fps30 FPS = 30
)

// Bytes encodes the frame rate as its 4 byte little-endian wire argument.
func (f FPS) Bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(f))
	return buf
}

// NvTag selects a block of non-volatile data for NVDataGet.
type NvTag uint32

// NV tags.
const (
	NoData              NvTag = 0
	IRSensorCalibration NvTag = 2
)

// Bytes encodes the NV tag as its 4 byte little-endian wire argument.
func (t NvTag) Bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(t))
	return buf
}

// CalibrationScratchSize is the scratch buffer size used to receive the
// NVDataGet(IRSensorCalibration) response before truncating to the actual
// transferred length.
const CalibrationScratchSize = 2000000

// ExtrinsicCalibrationScratchSize is the scratch buffer size used to receive
// the DepthReadCalibrationData response.
const ExtrinsicCalibrationScratchSize = 1024 * 1024
