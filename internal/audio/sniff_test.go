package audio

import "testing"

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "wav",
			data: []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
			want: "audio/wav",
		},
		{
			name: "ogg",
			data: []byte("OggS\x00\x02"),
			want: "audio/ogg",
		},
		{
			name: "webm",
			data: []byte{0x1a, 0x45, 0xdf, 0xa3, 0x01},
			want: "audio/webm",
		},
		{
			name: "mp3 with id3 tag",
			data: []byte("ID3\x04\x00"),
			want: "audio/mpeg",
		},
		{
			name: "raw mpeg frame",
			data: []byte{0xff, 0xfb, 0x90, 0x00},
			want: "audio/mpeg",
		},
		{
			name: "flac",
			data: []byte("fLaC\x00\x00\x00\x22"),
			want: "audio/flac",
		},
		{
			name: "mp4 container",
			data: []byte("\x00\x00\x00\x20ftypM4A "),
			want: "audio/mp4",
		},
		{
			name: "unknown",
			data: []byte("hello world"),
			want: "application/octet-stream",
		},
		{
			name: "empty",
			data: nil,
			want: "application/octet-stream",
		},
		{
			name: "riff but not wave",
			data: []byte("RIFF\x24\x00\x00\x00AVI LIST"),
			want: "application/octet-stream",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectContentType(tc.data); got != tc.want {
				t.Fatalf("DetectContentType() = %q, want %q", got, tc.want)
			}
		})
	}
}
