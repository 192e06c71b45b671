package section

const (
	// Bit masks of the VersionAndFlags byte.
	FormatMask  = 0x0F // Mask for the serialization format (bits 0-3)
	VersionMask = 0xF0 // Mask for the header version (bits 4-7)

	VersionShift = 4 // VersionShift is the bit offset of the version nibble.

	// CurrentVersion is the header version written by this package.
	CurrentVersion = 0
)

// frame layout sizes in bytes
const (
	HeaderSize        = 4 // fixed header size in bytes
	PayloadLengthSize = 4 // size of the int32 payload length prefix
	RawLengthSize     = 4 // size of the int32 raw length inside compressed payloads
)
