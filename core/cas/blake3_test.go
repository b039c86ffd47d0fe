package cas

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

func TestBlake3Hash(t *testing.T) {
	data := []byte(`<osis><verse osisID="Gen.1.1"/></osis>`)
	h := blake3.Sum256(data)

	got := Blake3Hash(data)
	if len(got) != 64 {
		t.Fatalf("Blake3Hash() length = %d; want 64", len(got))
	}
	if !IsValidHash(got) {
		t.Errorf("IsValidHash(%q) = false", got)
	}
	if got == Blake3Hash([]byte("other")) {
		t.Error("different inputs should hash differently")
	}
	if got != Blake3Hash(bytes.Clone(data)) {
		t.Error("Blake3Hash should be deterministic")
	}
	if h[0] == 0 && h[1] == 0 && h[2] == 0 {
		t.Error("unexpected zero digest prefix")
	}
}

func TestIsValidHash(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{strings.Repeat("a", 64), true},
		{strings.Repeat("A", 64), false},
		{strings.Repeat("a", 63), false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidHash(tt.in); got != tt.want {
			t.Errorf("IsValidHash(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestFingerprinter(t *testing.T) {
	data := strings.Repeat("In the beginning God created the heaven and the earth. ", 1000)

	fp := NewFingerprinter(strings.NewReader(data))
	read, err := io.ReadAll(fp)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(read) != data {
		t.Error("Fingerprinter altered the stream")
	}
	if got, want := fp.Sum(), Blake3Hash([]byte(data)); got != want {
		t.Errorf("Sum() = %s; want %s", got, want)
	}
}
