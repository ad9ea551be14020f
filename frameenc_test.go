package zstdenc

import (
	"bytes"
	"testing"
)

func TestFrameHeaderLayout(t *testing.T) {
	cases := []struct {
		name string
		fh   frameHeader
		want []byte
	}{
		{
			name: "default policy",
			fh:   frameHeader{WindowSize: windowSize},
			want: []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00, 0x40},
		},
		{
			name: "checksum, small dict id, two byte content size",
			fh:   frameHeader{ContentSize: 300, WindowSize: 1 << 18, Checksum: true, DictID: 7},
			want: []byte{0x28, 0xb5, 0x2f, 0xfd, 0x45, 0x40, 0x07, 0x2c, 0x00},
		},
		{
			name: "single segment with inline content size",
			fh:   frameHeader{ContentSize: 10, SingleSegment: true},
			want: []byte{0x28, 0xb5, 0x2f, 0xfd, 0x20, 0x0a},
		},
	}
	for _, c := range cases {
		if got := c.fh.appendTo(nil); !bytes.Equal(got, c.want) {
			t.Errorf("%s: got % x, want % x", c.name, got, c.want)
		}
	}
}
