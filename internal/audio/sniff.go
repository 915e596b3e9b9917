package audio

// DetectContentType guesses the MIME type of an audio payload from container
// magic bytes. The gateway treats audio as opaque, so this only backfills a
// missing Content-Type header before the payload is forwarded upstream.
func DetectContentType(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return "audio/wav"
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return "audio/ogg"
	case len(data) >= 4 && data[0] == 0x1a && data[1] == 0x45 && data[2] == 0xdf && data[3] == 0xa3:
		// EBML header, shared by WebM and Matroska recordings.
		return "audio/webm"
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return "audio/mpeg"
	case len(data) >= 2 && data[0] == 0xff && data[1]&0xe0 == 0xe0:
		// Raw MPEG audio frame sync.
		return "audio/mpeg"
	case len(data) >= 4 && string(data[0:4]) == "fLaC":
		return "audio/flac"
	case len(data) >= 12 && string(data[4:8]) == "ftyp":
		return "audio/mp4"
	}
	return "application/octet-stream"
}
