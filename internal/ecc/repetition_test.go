package ecc

import (
	"errors"
	"reflect"
	"testing"
)

func TestRepetition3_EncodeDecode(t *testing.T) {
	r := &Repetition3{}

	original := []byte{0x12, 0x34}
	encoded, err := r.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if len(encoded) != r.EncodedLen(len(original)) {
		t.Errorf("expected encoded length %d, got %d", r.EncodedLen(len(original)), len(encoded))
	}

	decoded, err := r.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip failed: expected %v, got %v", original, decoded)
	}
}

func TestRepetition3_ErrorCorrection(t *testing.T) {
	r := &Repetition3{}

	original := []byte{0x80} // 10000000
	encoded, err := r.Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// first triple is 111, the byte starts 0b111
	if encoded[0]&0xE0 != 0xE0 {
		t.Fatalf("first bit should be encoded as three ones, got %08b", encoded[0])
	}

	// flip one bit of the first triple
	encoded[0] ^= 0x80

	decoded, err := r.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("error correction failed: expected %v, got %v", original, decoded)
	}
}

func TestRepetition3_TwoBitError(t *testing.T) {
	r := &Repetition3{}

	encoded, err := r.Encode([]byte{0x80})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	encoded[0] ^= 0xC0

	decoded, err := r.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	// majority flips the bit
	if decoded[0] != 0x00 {
		t.Errorf("expected 0x00 after two flips, got %#x", decoded[0])
	}
}

func TestRepetition3_InsufficientBits(t *testing.T) {
	r := &Repetition3{}

	_, err := r.Decode([]byte{0xff, 0xff})
	if !errors.Is(err, ErrInsufficientBits) {
		t.Errorf("expected ErrInsufficientBits, got %v", err)
	}
}

func TestParseScheme(t *testing.T) {
	tests := []struct {
		name    string
		want    ECCScheme
		wantErr bool
	}{
		{name: "", want: ECCSchemeReedSolomon},
		{name: "rs", want: ECCSchemeReedSolomon},
		{name: "reed-solomon", want: ECCSchemeReedSolomon},
		{name: "rep3", want: ECCSchemeRepetition3},
		{name: "hamming", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseScheme(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedScheme) {
				t.Errorf("ParseScheme(%q): expected ErrUnsupportedScheme, got %v", tt.name, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseScheme(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
}

func TestGetScheme(t *testing.T) {
	s, err := GetScheme(ECCSchemeReedSolomon, 10)
	if err != nil {
		t.Fatalf("GetScheme failed: %v", err)
	}
	if rs, ok := s.(*ReedSolomon); !ok || rs.Symbols != 10 {
		t.Errorf("expected ReedSolomon with 10 symbols, got %#v", s)
	}

	if _, err := GetScheme(ECCSchemeReedSolomon, 255); !errors.Is(err, ErrTooManySymbols) {
		t.Errorf("expected ErrTooManySymbols, got %v", err)
	}
	if _, err := GetScheme(ECCScheme(9), 0); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
}
