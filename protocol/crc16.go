package protocol

// CRC16 is the CCITT variant used on the wire (initial value 0xFFFF,
// reflected update).
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

// appendTrailer appends the big-endian CRC of dst[start:] and the sync byte.
func appendTrailer(dst []byte, start int) []byte {
	crc := CRC16(dst[start:])
	return append(dst, byte(crc>>8), byte(crc), MessageValueSync)
}
