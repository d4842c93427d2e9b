package voicechat

import (
	"encoding/binary"
	"os"
)

// wavHeader builds the 44-byte canonical RIFF header for a PCM16 mono
// payload of the given byte length.
func wavHeader(dataLength, sampleRate, numChannels, bitsPerSample int) []byte {
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataLength))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*numChannels*bitsPerSample/8))
	binary.LittleEndian.PutUint16(header[32:34], uint16(numChannels*bitsPerSample/8))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataLength))
	return header
}

// EncodeWAV frames raw PCM16LE bytes as a mono WAV file body.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	header := wavHeader(len(pcm), sampleRate, 1, 16)
	out := make([]byte, 0, len(header)+len(pcm))
	out = append(out, header...)
	return append(out, pcm...)
}

// WriteWAVFile dumps raw PCM16LE bytes to disk as a playable WAV.
// Used by the CLI to record inbound agent audio for inspection.
func WriteWAVFile(path string, pcm []byte, sampleRate int) error {
	return os.WriteFile(path, EncodeWAV(pcm, sampleRate), 0644)
}
