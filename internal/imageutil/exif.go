package imageutil

import (
	"encoding/binary"
)

const orientationTag = 0x0112

// readOrientation extracts the EXIF orientation (1-8) from JPEG or TIFF
// bytes. Returns 0 when the file carries no usable orientation, which
// callers treat the same as upright.
func readOrientation(data []byte) int {
	if len(data) < 4 {
		return 0
	}

	// Raw TIFF: the EXIF container format, headers start at byte 0.
	if (data[0] == 'I' && data[1] == 'I') || (data[0] == 'M' && data[1] == 'M') {
		return orientationFromTIFF(data)
	}

	// JPEG: walk segments looking for APP1/Exif.
	if data[0] != 0xFF || data[1] != 0xD8 {
		return 0
	}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return 0
		}
		marker := data[pos+1]
		if marker == 0xDA || marker == 0xD9 { // Start of scan / end of image
			return 0
		}
		size := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if size < 2 || pos+2+size > len(data) {
			return 0
		}
		if marker == 0xE1 { // APP1
			seg := data[pos+4 : pos+2+size]
			if len(seg) > 6 && string(seg[:6]) == "Exif\x00\x00" {
				return orientationFromTIFF(seg[6:])
			}
		}
		pos += 2 + size
	}
	return 0
}

// orientationFromTIFF walks IFD0 of a TIFF header and returns the value of
// the orientation tag.
func orientationFromTIFF(tiff []byte) int {
	if len(tiff) < 8 {
		return 0
	}

	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return 0
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return 0
	}

	ifdOffset := int(order.Uint32(tiff[4:8]))
	if ifdOffset+2 > len(tiff) {
		return 0
	}

	count := int(order.Uint16(tiff[ifdOffset : ifdOffset+2]))
	pos := ifdOffset + 2
	for i := 0; i < count; i++ {
		if pos+12 > len(tiff) {
			return 0
		}
		tag := order.Uint16(tiff[pos : pos+2])
		typ := order.Uint16(tiff[pos+2 : pos+4])
		if tag == orientationTag && typ == 3 { // SHORT
			v := int(order.Uint16(tiff[pos+8 : pos+10]))
			if v >= 1 && v <= 8 {
				return v
			}
			return 0
		}
		pos += 12
	}
	return 0
}
