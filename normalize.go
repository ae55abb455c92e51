package kws

import "encoding/binary"

// pcmScale maps a signed 16-bit sample into [-1, 1).
const pcmScale = 32768.0

// Normalize writes src[i] / 32768 into dst and returns the number of samples
// written (the shorter of the two lengths). It does not allocate.
func Normalize(dst []float32, src []int16) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] = float32(src[i]) / pcmScale
	}
	return n
}

// DecodePCM16 decodes little-endian signed 16-bit samples from b into dst and
// returns the number of whole samples decoded. A trailing odd byte is ignored.
func DecodePCM16(dst []int16, b []byte) int {
	n := min(len(dst), len(b)/2)
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return n
}
