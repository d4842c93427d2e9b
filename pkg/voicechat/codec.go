package voicechat

import (
	"encoding/binary"
	"math"
)

// RMS returns the root-mean-square energy of a sample buffer on the
// [-1,1] normalized scale.
func RMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}

// ApplyGain multiplies each sample by gain and clamps the result to
// [-1,1]. A gain of 1 still allocates; callers on the hot path reuse
// the returned slice between frames via ApplyGainInPlace.
func ApplyGain(samples []float32, gain float32) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)
	ApplyGainInPlace(out, gain)
	return out
}

// ApplyGainInPlace is the allocation-free variant of ApplyGain.
func ApplyGainInPlace(samples []float32, gain float32) {
	for i, s := range samples {
		v := s * gain
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		samples[i] = v
	}
}

// Downsample reduces a sample buffer from fromRate to toRate using
// nearest-neighbor selection. Output length is floor(n * to/from), so
// the approximate duration of the buffer is preserved. Rates equal or
// toRate above fromRate return the input unchanged.
func Downsample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || toRate > fromRate {
		return samples
	}
	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(samples)) / ratio)
	out := make([]float32, outLen)
	for i := 0; i < outLen; i++ {
		out[i] = samples[int(float64(i)*ratio)]
	}
	return out
}

// EncodePCM16 converts normalized float32 samples to 16-bit little-endian
// PCM bytes. Samples are clamped to [-1,1] first; negatives then scale
// by 0x8000 and non-negatives by 0x7FFF. The server decodes with the
// same asymmetric scaling, so both halves must stay in step.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// DecodePCM16 converts 16-bit little-endian PCM bytes back to normalized
// float32 samples, applying the inverse of the EncodePCM16 scaling.
// An odd trailing byte is trimmed before interpretation.
func DecodePCM16(data []byte) []float32 {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	out := make([]float32, len(data)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		if v < 0 {
			out[i] = float32(v) / 0x8000
		} else {
			out[i] = float32(v) / 0x7FFF
		}
	}
	return out
}
