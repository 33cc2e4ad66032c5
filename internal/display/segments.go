package display

// glyphs maps 0-9 then A-Z to segment bits (bit 0 = a ... bit 6 = g).
// Several letters share a pattern with a digit or another letter; the
// display has only seven segments.
var glyphs = [36]uint8{
	0x3F, // 0
	0x06, // 1
	0x5B, // 2
	0x4F, // 3
	0x66, // 4
	0x6D, // 5
	0x7D, // 6
	0x07, // 7
	0x7F, // 8
	0x6F, // 9
	0x77, // A
	0x7C, // B
	0x39, // C
	0x5E, // D
	0x79, // E
	0x71, // F
	0x38, // G
	0x76, // H
	0x30, // I
	0x1E, // J
	0x75, // K
	0x38, // L
	0x54, // M
	0x5C, // N
	0x3F, // O
	0x73, // P
	0x67, // Q
	0x50, // R
	0x6D, // S
	0x78, // T
	0x3E, // U
	0x3E, // V
	0x6A, // W
	0x76, // X
	0x6E, // Y
	0x5B, // Z
}

// Encode returns the segment bits for glyph. Only 0-9 and upper-case A-Z
// are displayable.
func Encode(glyph rune) (uint8, bool) {
	switch {
	case glyph >= '0' && glyph <= '9':
		return glyphs[glyph-'0'], true
	case glyph >= 'A' && glyph <= 'Z':
		return glyphs[glyph-'A'+10], true
	}
	return 0, false
}
