// Package audio handles the raw speech samples the content provider
// returns: 16-bit signed little-endian PCM. The browser can't play
// headerless PCM, so clips are wrapped in a minimal RIFF/WAVE container
// before going over the wire.
package audio

import (
	"encoding/binary"
	"time"
)

const bytesPerSample = 2

// WAVFromPCM16 wraps raw PCM16LE samples in a WAV container.
func WAVFromPCM16(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	buf := make([]byte, 0, 44+len(pcm))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16) // PCM fmt chunk size
	buf = binary.LittleEndian.AppendUint16(buf, 1)  // audio format: PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(byteRate))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(blockAlign))
	buf = binary.LittleEndian.AppendUint16(buf, bytesPerSample*8)

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(pcm)))
	buf = append(buf, pcm...)
	return buf
}

// Duration reports how long the clip plays for.
func Duration(pcm []byte, sampleRate, channels int) time.Duration {
	byteRate := sampleRate * channels * bytesPerSample
	if byteRate <= 0 {
		return 0
	}
	return time.Duration(len(pcm)) * time.Second / time.Duration(byteRate)
}
