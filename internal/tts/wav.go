package tts

import "encoding/binary"

// EncodeWAV wraps little-endian PCM samples in a canonical 44-byte WAV header.
func EncodeWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	out := make([]byte, 44+len(pcm))
	le := binary.LittleEndian

	copy(out[0:], "RIFF")
	le.PutUint32(out[4:], uint32(36+len(pcm)))
	copy(out[8:], "WAVE")

	copy(out[12:], "fmt ")
	le.PutUint32(out[16:], 16)
	le.PutUint16(out[20:], 1) // PCM
	le.PutUint16(out[22:], uint16(channels))
	le.PutUint32(out[24:], uint32(sampleRate))
	le.PutUint32(out[28:], uint32(sampleRate*channels*bytesPerSample))
	le.PutUint16(out[32:], uint16(channels*bytesPerSample))
	le.PutUint16(out[34:], uint16(bytesPerSample*8))

	copy(out[36:], "data")
	le.PutUint32(out[40:], uint32(len(pcm)))
	copy(out[44:], pcm)
	return out
}
