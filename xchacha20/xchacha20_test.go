package xchacha20_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/Zeegomo/stream-ciphers/xchacha20"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("invalid hex: %v", err)
	}
	return b
}

// TestHChaCha20Vector is the test vector from draft-irtf-cfrg-xchacha-03
// appendix A.1.
func TestHChaCha20Vector(t *testing.T) {
	key := [32]byte(mustHex(t, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"))
	in := [16]byte(mustHex(t, "000000090000004a0000000031415927"))

	got := xchacha20.HChaCha20(key, in)
	want := mustHex(t, "82413b4227b27bfed30e42508a877d73a0f9e4d58a74a853c12ec41326d3ecdc")

	if !bytes.Equal(got[:], want) {
		t.Errorf("want %x, got %x", want, got)
	}
}

// TestXChaCha20Vector checks XChaCha20 output at block counter 0 and at
// block counter 1 against independently computed ciphertexts for a fixed
// key, nonce and plaintext.
func TestXChaCha20Vector(t *testing.T) {
	key := [32]byte(mustHex(t, "00070e151c232a31383f464d545b626970777e858c939aa1a8afb6bdc4cbd2d9"))
	nonce := [24]byte(mustHex(t, "00050a0f14191e23282d32373c41464b50555a5f64696e73"))

	plaintext := make([]byte, 100)
	for i := range plaintext {
		plaintext[i] = byte(i)
	}

	wantPos0 := mustHex(t, "e4f52e71dfa336bcb6817f60cdba0303"+
		"a781b68980f8c0ddfeef702a3214b646"+
		"5b75df71c9da85ea282b6c6563cdedd8"+
		"8701f501d50fffc4b2912ed86c25868b"+
		"c6a218a5a6cf5f6480d419bc2a32871c"+
		"67669594eb4bf6934a1d3d76bfbaa909"+
		"02d0b22b")

	c := xchacha20.New(key, nonce)
	got := append([]byte(nil), plaintext...)
	if err := c.ApplyKeystream(got); err != nil {
		t.Fatalf("ApplyKeystream: %v", err)
	}
	if !bytes.Equal(got, wantPos0) {
		t.Errorf("block 0: want %x, got %x", wantPos0, got)
	}

	wantPos1 := mustHex(t, "86e258e5e68f1f24c09459fc6a72c75c"+
		"2726d5d4ab0bb6d30a5d7d36fffae949"+
		"4290f26b92869010fd6314887bddda6f"+
		"85bfaa99c5821c6716a19ab0bd118600"+
		"70faab8c976772f16668d2954be00e70"+
		"230b353c5a9094f20da6a5abcdb3a99c"+
		"ff6f279a")

	c2 := xchacha20.New(key, nonce)
	c2.SetBlockPos(1)
	got2 := append([]byte(nil), plaintext...)
	if err := c2.ApplyKeystream(got2); err != nil {
		t.Fatalf("ApplyKeystream: %v", err)
	}
	if !bytes.Equal(got2, wantPos1) {
		t.Errorf("block 1: want %x, got %x", wantPos1, got2)
	}
}
