package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// Tone renders beeps short sine beeps at freq Hz as 16-bit mono PCM, each
// followed by a gap of the same length.
func Tone(freq float64, length time.Duration, beeps int) []byte {
	n := int(float64(SampleRate) * length.Seconds())
	out := make([]byte, 0, beeps*n*4)
	for b := 0; b < beeps; b++ {
		for i := 0; i < n; i++ {
			// Linear fade out keeps the beep from clicking.
			amp := 0.4 * (1 - float64(i)/float64(n))
			v := int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		}
		out = append(out, make([]byte, n*2)...)
	}
	return out
}

// extractPCM strips the WAV/RIFF header and returns raw PCM data.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}

	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	// Walk chunks to find the "data" chunk.
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := min(start+chunkSize, len(wav))
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}
