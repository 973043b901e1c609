package mediacodec

import (
	"bytes"
	"testing"
)

func TestBase64RoundTripLarge(t *testing.T) {
	in := make([]byte, 8<<20)
	for i := range in {
		in[i] = byte(i * 31)
	}
	out, err := DecodeBase64(EncodeBase64(in))
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeBase64Unpadded(t *testing.T) {
	got, err := DecodeBase64("aGk")
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}
	if string(got) != "hi" {
		t.Fatalf("DecodeBase64: want=%q got=%q", "hi", got)
	}
	if _, err := DecodeBase64("!!!"); err == nil {
		t.Fatalf("DecodeBase64: expected error on garbage")
	}
}

func TestConcat(t *testing.T) {
	a, b, c := []byte("ab"), []byte{}, []byte("cde")
	got := Concat(a, b, c)
	if string(got) != "abcde" {
		t.Fatalf("Concat: want=%q got=%q", "abcde", got)
	}
	if len(Concat()) != 0 {
		t.Fatalf("Concat(): want empty")
	}
	single := []byte("x")
	if out := Concat(single); &out[0] != &single[0] {
		t.Fatalf("Concat(single): expected the input slice back")
	}
}
