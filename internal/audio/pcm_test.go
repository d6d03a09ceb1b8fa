package audio

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestWAVFromPCM16(t *testing.T) {
	pcm := make([]byte, 48000) // 1 second at 24kHz mono
	wav := WAVFromPCM16(pcm, 24000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(pcm)) {
		t.Fatalf("bad RIFF size: %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[20:22]); got != 1 {
		t.Fatalf("expected PCM format tag, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Fatalf("expected 1 channel, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Fatalf("expected 24000 sample rate, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 48000 {
		t.Fatalf("expected 48000 byte rate, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Fatalf("expected 16 bits per sample, got %d", got)
	}
	if string(wav[36:40]) != "data" {
		t.Fatal("missing data chunk marker")
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("bad data size: %d", got)
	}
}

func TestDuration(t *testing.T) {
	if got := Duration(make([]byte, 48000), 24000, 1); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
	if got := Duration(make([]byte, 24000), 24000, 1); got != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", got)
	}
	if got := Duration(nil, 24000, 1); got != 0 {
		t.Fatalf("expected 0 for empty clip, got %v", got)
	}
	if got := Duration(make([]byte, 48000), 0, 0); got != 0 {
		t.Fatalf("expected 0 for invalid rate, got %v", got)
	}
}
