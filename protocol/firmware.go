package protocol

import "encoding/binary"

// FirmwareVersionSize is the byte size of the packed FirmwareVersions wire
// structure returned by ComponentVersionGet: three 4 byte component version
// triples (12 bytes) plus depth sensor config major/minor and build/signature
// bytes (6 bytes).
const FirmwareVersionSize = 18

// ComponentVersion is one (major, minor, build) triple as transmitted on the
// wire: major:u8, minor:u8, build:u16.
type ComponentVersion struct {
	Major uint8
	Minor uint8
	Build uint16
}

// FirmwareVersions is the parsed form of the 18 byte packed structure
// returned by ComponentVersionGet: three 4 byte component version triples
// (RGB, depth, audio) followed by the depth sensor configuration version and
// build metadata.
type FirmwareVersions struct {
	RGB                 ComponentVersion
	Depth               ComponentVersion
	Audio               ComponentVersion
	DepthSensorCfgMajor uint16
	DepthSensorCfgMinor uint16
	BuildConfig         uint8
	SignatureType       uint8
}

func decodeComponentVersion(buf []byte) ComponentVersion {
	return ComponentVersion{
		Major: buf[0],
		Minor: buf[1],
		Build: binary.LittleEndian.Uint16(buf[2:4]),
	}
}

// DecodeFirmwareVersions parses a FirmwareVersions from its 18 byte wire
// representation. buf must have length exactly FirmwareVersionSize.
func DecodeFirmwareVersions(buf []byte) FirmwareVersions {
	return FirmwareVersions{
		RGB:                 decodeComponentVersion(buf[0:4]),
		Depth:               decodeComponentVersion(buf[4:8]),
		Audio:               decodeComponentVersion(buf[8:12]),
		DepthSensorCfgMajor: binary.LittleEndian.Uint16(buf[12:14]),
		DepthSensorCfgMinor: binary.LittleEndian.Uint16(buf[14:16]),
		BuildConfig:         buf[16],
		SignatureType:       buf[17],
	}
}
