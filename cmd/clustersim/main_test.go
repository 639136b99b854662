package main

import "testing"

func TestDecodeKeyIVFromHex(t *testing.T) {
	keyHex := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	nonceHex := "202122232425262728292a2b"

	key, iv, err := decodeKeyIV(keyHex, nonceHex)
	if err != nil {
		t.Fatalf("decodeKeyIV: %v", err)
	}
	for i := range key {
		if key[i] != byte(i) {
			t.Fatalf("key[%d] = %#x, want %#x", i, key[i], i)
		}
	}
	for i := range iv {
		if iv[i] != byte(0x20+i) {
			t.Fatalf("iv[%d] = %#x, want %#x", i, iv[i], 0x20+i)
		}
	}
}

func TestDecodeKeyIVRandomWhenEmpty(t *testing.T) {
	key1, iv1, err := decodeKeyIV("", "")
	if err != nil {
		t.Fatalf("decodeKeyIV: %v", err)
	}
	key2, iv2, err := decodeKeyIV("", "")
	if err != nil {
		t.Fatalf("decodeKeyIV: %v", err)
	}
	if key1 == key2 && iv1 == iv2 {
		t.Error("want independently randomized key/iv across calls")
	}
}

func TestDecodeHexIntoRejectsWrongLength(t *testing.T) {
	dst := make([]byte, 4)
	if err := decodeHexInto(dst, "0011"); err == nil {
		t.Fatal("want error for a short hex string")
	}
}

func TestDecodeHexIntoRejectsInvalidHex(t *testing.T) {
	dst := make([]byte, 2)
	if err := decodeHexInto(dst, "zz"); err == nil {
		t.Fatal("want error for invalid hex")
	}
}
