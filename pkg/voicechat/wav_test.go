package voicechat

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	pcm := make([]byte, 320)
	out := EncodeWAV(pcm, 16000)

	if len(out) != 44+len(pcm) {
		t.Fatalf("output length = %d, want %d", len(out), 44+len(pcm))
	}
	if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(out[4:8]); got != uint32(36+len(pcm)) {
		t.Errorf("riff chunk size = %d", got)
	}
	if got := binary.LittleEndian.Uint16(out[20:22]); got != 1 {
		t.Errorf("audio format = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(out[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint32(out[28:32]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
	if got := binary.LittleEndian.Uint16(out[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data chunk size = %d, want %d", got, len(pcm))
	}
}

func TestWriteWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	pcm := EncodePCM16([]float32{0.1, -0.1, 0.2, -0.2})

	if err := WriteWAVFile(path, pcm, 16000); err != nil {
		t.Fatalf("WriteWAVFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44+len(pcm) {
		t.Errorf("file length = %d, want %d", len(data), 44+len(pcm))
	}
	if string(data[len(data)-len(pcm):]) != string(pcm) {
		t.Error("payload does not follow the header intact")
	}
}
