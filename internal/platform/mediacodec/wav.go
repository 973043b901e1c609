package mediacodec

import "encoding/binary"

const WAVHeaderSize = 44

// PCMParams describes an uncontainered PCM stream.
type PCMParams struct {
	NumChannels   int
	SampleRateHz  int
	BitsPerSample int
}

func (p PCMParams) ByteRate() int   { return p.SampleRateHz * p.NumChannels * p.BitsPerSample / 8 }
func (p PCMParams) BlockAlign() int { return p.NumChannels * p.BitsPerSample / 8 }

// WAVHeader builds the canonical 44-byte RIFF/WAVE header for dataLength bytes of PCM.
func WAVHeader(dataLength int, p PCMParams) []byte {
	h := make([]byte, WAVHeaderSize)
	le := binary.LittleEndian

	copy(h[0:4], "RIFF")
	le.PutUint32(h[4:8], uint32(36+dataLength))
	copy(h[8:12], "WAVE")

	copy(h[12:16], "fmt ")
	le.PutUint32(h[16:20], 16)
	le.PutUint16(h[20:22], 1)
	le.PutUint16(h[22:24], uint16(p.NumChannels))
	le.PutUint32(h[24:28], uint32(p.SampleRateHz))
	le.PutUint32(h[28:32], uint32(p.ByteRate()))
	le.PutUint16(h[32:34], uint16(p.BlockAlign()))
	le.PutUint16(h[34:36], uint16(p.BitsPerSample))

	copy(h[36:40], "data")
	le.PutUint32(h[40:44], uint32(dataLength))
	return h
}

// SynthesizeWAV wraps raw PCM frames in a playable WAV container.
func SynthesizeWAV(pcm []byte, p PCMParams) []byte {
	return Concat(WAVHeader(len(pcm), p), pcm)
}
