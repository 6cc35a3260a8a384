package framing

import (
	"bytes"
	"errors"
	"testing"
)

func TestStuff(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    []byte
	}{
		{name: "empty", payload: []byte{}, want: []byte{0x01}},
		{name: "single zero", payload: []byte{0x00}, want: []byte{0x01, 0x01}},
		{name: "two zeros", payload: []byte{0x00, 0x00}, want: []byte{0x01, 0x01, 0x01}},
		{name: "inner zero", payload: []byte{0x11, 0x22, 0x00, 0x33}, want: []byte{0x03, 0x11, 0x22, 0x02, 0x33}},
		{name: "no zero", payload: []byte{0x11, 0x22, 0x33, 0x44}, want: []byte{0x05, 0x11, 0x22, 0x33, 0x44}},
		{name: "trailing zero", payload: []byte{0x11, 0x00}, want: []byte{0x02, 0x11, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stuff(tt.payload)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Stuff(%x) = %x, want %x", tt.payload, got, tt.want)
			}

			back, err := Unstuff(got)
			if err != nil {
				t.Fatalf("Unstuff failed: %v", err)
			}
			if !bytes.Equal(back, tt.payload) {
				t.Errorf("Unstuff(%x) = %x, want %x", got, back, tt.payload)
			}
		})
	}
}

func TestStuffLongRuns(t *testing.T) {
	for _, n := range []int{253, 254, 255, 600} {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i%255) + 1
		}
		payload[n/2] = 0

		stuffed := Stuff(payload)
		if bytes.IndexByte(stuffed, Delimiter) >= 0 {
			t.Fatalf("n=%d: stuffed frame contains delimiter", n)
		}
		if len(stuffed) > StuffedLen(n) {
			t.Errorf("n=%d: stuffed length %d exceeds bound %d", n, len(stuffed), StuffedLen(n))
		}

		back, err := Unstuff(stuffed)
		if err != nil {
			t.Fatalf("n=%d: Unstuff failed: %v", n, err)
		}
		if !bytes.Equal(back, payload) {
			t.Errorf("n=%d: round trip mismatch", n)
		}
	}
}

func TestUnstuffErrors(t *testing.T) {
	if _, err := Unstuff(nil); !errors.Is(err, ErrFrameTooShort) {
		t.Errorf("expected ErrFrameTooShort, got %v", err)
	}
	if _, err := Unstuff([]byte{0x02, 0x00}); !errors.Is(err, ErrDelimiterInFrame) {
		t.Errorf("expected ErrDelimiterInFrame, got %v", err)
	}
	if _, err := Unstuff([]byte{0x05, 0x11}); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
}
