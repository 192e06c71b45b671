// Package section defines the fixed-size header that starts every frame.
//
// A frame produced by the serializer package has the layout:
//
//	┌───────────────────────────────────────────────┐
//	│ Header (4 bytes, optional)                    │
//	├───────────────────────────────────────────────┤
//	│ Payload length (int32, variable-size only)    │
//	├───────────────────────────────────────────────┤
//	│ Payload                                       │
//	│  - raw fixed-size value, or                   │
//	│  - encoded bytes, or                          │
//	│  - raw length (int32) + compressed bytes      │
//	└───────────────────────────────────────────────┘
//
// # Header Format
//
//	Byte | Field           | Description
//	-----|-----------------|-----------------------------------------------
//	0    | VersionAndFlags | bits 0-2 compression, bit 3 binary, bits 4-7 version
//	1    | TypeEnum        | category of the value (format.TypeEnum)
//	2    | TypeSize        | fixed element size in bytes, 0 when variable
//	3    | ElementInfo     | element enum (Array), count (TupleTN), tag (UserType)
//
// All multi-byte integers in a frame are little-endian and lengths are
// signed 32-bit values.
package section
