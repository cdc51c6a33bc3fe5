package fpttts

import "encoding/binary"

// wavDuration reads the RIFF header of a PCM WAV payload and returns its
// length in seconds, or 0 when the header is not understood.
func wavDuration(data []byte) float64 {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return 0
	}
	var byteRate uint32
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8
		switch id {
		case "fmt ":
			if body+12 > len(data) {
				return 0
			}
			byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
		case "data":
			if byteRate == 0 {
				return 0
			}
			// ffmpeg writes 0xFFFFFFFF when streaming to a pipe.
			if size == 0xFFFFFFFF || int(size) > len(data)-body {
				size = uint32(len(data) - body)
			}
			return float64(size) / float64(byteRate)
		}
		offset = body + int(size) + int(size%2)
	}
	return 0
}
