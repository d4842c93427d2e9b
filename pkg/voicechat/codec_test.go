package voicechat

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodePCM16Scaling(t *testing.T) {
	cases := []struct {
		name   string
		sample float32
		want   int16
	}{
		{"full negative", -1.0, -32768},
		{"full positive", 1.0, 32767},
		{"zero", 0.0, 0},
		{"half negative", -0.5, -16384},
		{"clamp above", 2.0, 32767},
		{"clamp below", -2.0, -32768},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := EncodePCM16([]float32{tc.sample})
			if len(out) != 2 {
				t.Fatalf("expected 2 bytes, got %d", len(out))
			}
			got := int16(binary.LittleEndian.Uint16(out))
			if got != tc.want {
				t.Errorf("EncodePCM16(%v) = %d, want %d", tc.sample, got, tc.want)
			}
		})
	}
}

func TestEncodePCM16HalfPositive(t *testing.T) {
	out := EncodePCM16([]float32{0.5})
	got := int16(binary.LittleEndian.Uint16(out))
	// 0.5 * 0x7FFF truncates to 16383.
	if got != 16383 {
		t.Errorf("EncodePCM16(0.5) = %d, want 16383", got)
	}
}

func TestDecodePCM16Inverse(t *testing.T) {
	buf := make([]byte, 4)
	negFull := int16(-32768)
	posFull := int16(32767)
	binary.LittleEndian.PutUint16(buf[0:], uint16(negFull))
	binary.LittleEndian.PutUint16(buf[2:], uint16(posFull))

	out := DecodePCM16(buf)
	if len(out) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out))
	}
	if out[0] != -1.0 {
		t.Errorf("decoded -32768 as %v, want -1", out[0])
	}
	if out[1] != 1.0 {
		t.Errorf("decoded 32767 as %v, want 1", out[1])
	}
}

func TestDecodePCM16OddTrailingByte(t *testing.T) {
	buf := []byte{0x00, 0x40, 0xFF}
	out := DecodePCM16(buf)
	if len(out) != 1 {
		t.Fatalf("expected 1 sample from 3 bytes, got %d", len(out))
	}
}

func TestPCM16RoundTrip(t *testing.T) {
	samples := []float32{-1.0, -0.75, -0.25, -0.003, 0, 0.003, 0.25, 0.75, 1.0}
	decoded := DecodePCM16(EncodePCM16(samples))

	if len(decoded) != len(samples) {
		t.Fatalf("length changed in round trip: %d != %d", len(decoded), len(samples))
	}
	for i := range samples {
		diff := math.Abs(float64(decoded[i] - samples[i]))
		if diff > 1.0/32767.0 {
			t.Errorf("sample %d: round trip %v -> %v, off by %v", i, samples[i], decoded[i], diff)
		}
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	if got := RMS([]float32{0, 0, 0}); got != 0 {
		t.Errorf("RMS of silence = %v, want 0", got)
	}
	got := RMS([]float32{0.5, -0.5, 0.5, -0.5})
	if math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("RMS of ±0.5 square = %v, want 0.5", got)
	}
}

func TestApplyGainClamps(t *testing.T) {
	in := []float32{0.05, -0.05, 0.5, -0.5}
	out := ApplyGain(in, 10)

	want := []float32{0.5, -0.5, 1.0, -1.0}
	for i := range want {
		if math.Abs(float64(out[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d: got %v, want %v", i, out[i], want[i])
		}
	}
	if in[2] != 0.5 {
		t.Error("ApplyGain mutated its input")
	}
}

func TestDownsampleRatio(t *testing.T) {
	in := make([]float32, 480)
	for i := range in {
		in[i] = float32(i)
	}

	out := Downsample(in, 48000, 16000)
	if len(out) != 160 {
		t.Fatalf("expected 160 samples, got %d", len(out))
	}
	// Nearest-neighbor picks every third sample for a 3:1 ratio.
	for i, v := range out {
		if v != float32(i*3) {
			t.Fatalf("sample %d: got %v, want %v", i, v, float32(i*3))
		}
	}
}

func TestDownsamplePassthrough(t *testing.T) {
	in := []float32{1, 2, 3}

	for _, tc := range []struct {
		name     string
		from, to int
	}{
		{"equal rates", 16000, 16000},
		{"upsample request", 16000, 48000},
		{"zero from", 0, 16000},
		{"zero to", 48000, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := Downsample(in, tc.from, tc.to)
			if len(out) != len(in) {
				t.Fatalf("expected passthrough, got %d samples", len(out))
			}
		})
	}
}
