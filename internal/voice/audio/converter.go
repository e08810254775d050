// Package audio provides the telephony audio conversions used by the media bridge:
// G.711 μ-law expansion to 16-bit linear PCM and mono to stereo interleaving.
package audio

import (
	"encoding/base64"
	"encoding/binary"
	"math"
)

const (
	// SampleRate is the only rate the carrier delivers: 8kHz narrowband.
	SampleRate = 8000
	// BitDepth of decoded PCM.
	BitDepth = 16

	muLawBias = 0x84
)

var muLawTable [256]int16

func init() {
	for i := 0; i < 256; i++ {
		muLawTable[i] = mulawToLinear(byte(i))
	}
}

// DecodeMuLawToPCM16 expands μ-law samples into signed 16-bit little-endian PCM.
// Every input byte yields exactly two output bytes.
func DecodeMuLawToPCM16(mulaw []byte) []byte {
	pcm := make([]byte, len(mulaw)*2)
	for i, b := range mulaw {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(muLawTable[b]))
	}
	return pcm
}

// MuLawToLinear returns the linear value of a single μ-law sample.
func MuLawToLinear(b byte) int16 {
	return muLawTable[b]
}

// InterleaveMonoToStereo spreads mono PCM16 samples over a stereo stream, writing
// each sample on channel (0 = left, 1 = right) and silence on the other one.
// The result is always twice as long as the input.
func InterleaveMonoToStereo(pcm []byte, channel int) []byte {
	if channel != 1 {
		channel = 0
	}
	stereo := make([]byte, len(pcm)*2)
	for i := 0; i+1 < len(pcm); i += 2 {
		frame := i * 2
		offset := frame + channel*2
		stereo[offset] = pcm[i]
		stereo[offset+1] = pcm[i+1]
	}
	return stereo
}

// PCM16ToSamples unpacks little-endian PCM16 into ints for WAV encoders.
// A trailing odd byte is ignored.
func PCM16ToSamples(pcm []byte) []int {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	return samples
}

func Base64ToBytes(base64String string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64String)
}

func BytesToBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func mulawToLinear(mulawByte byte) int16 {
	// Invert all bits
	mulawByte = ^mulawByte

	sign := mulawByte & 0x80
	exponent := (mulawByte >> 4) & 0x07
	mantissa := mulawByte & 0x0F

	magnitude := ((int32(mantissa) << 3) + muLawBias) << exponent
	magnitude -= muLawBias

	sample := magnitude
	if sign != 0 {
		sample = -magnitude
	}
	return clamp16(sample)
}

func clamp16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
