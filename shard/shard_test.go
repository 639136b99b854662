package shard_test

import (
	"bytes"
	"testing"

	"github.com/Zeegomo/stream-ciphers/chacha20"
	"github.com/Zeegomo/stream-ciphers/dmabuf"
	"github.com/Zeegomo/stream-ciphers/shard"
)

func TestRunMatchesDirectEncryptSingleCore(t *testing.T) {
	var key [32]byte
	var nonce [12]byte
	for i := range key {
		key[i] = byte(i * 3)
	}
	for i := range nonce {
		nonce[i] = byte(i + 1)
	}

	bufSize := 64 * 4 // a multiple of BlockSize, single core
	sourceLen := bufSize*3 + 37

	original := make([]byte, sourceLen)
	for i := range original {
		original[i] = byte(i)
	}

	want := append([]byte(nil), original...)
	direct := chacha20.New(key, nonce)
	if err := direct.ApplyKeystream(want); err != nil {
		t.Fatalf("direct ApplyKeystream: %v", err)
	}

	source := append([]byte(nil), original...)
	l1 := make([]byte, 3*bufSize)
	barrier := dmabuf.NewBarrier(1)

	buf, err := dmabuf.New(source, l1, bufSize, nil, barrier, 0, 1)
	if err != nil {
		t.Fatalf("dmabuf.New: %v", err)
	}

	cipher := chacha20.New(key, nonce)
	if err := (shard.Dispatcher{}).Run(cipher, buf, 0, 1, sourceLen, bufSize); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !bytes.Equal(source, want) {
		t.Errorf("sharded run diverges from direct ApplyKeystream\ngot:  %x\nwant: %x", source, want)
	}
}

func TestRunRejectsBufSizeNotMultipleOfBlockSizeTimesCores(t *testing.T) {
	var key [32]byte
	var nonce [12]byte
	bufSize := 100 // not a multiple of BlockSize*cores for any cores>0 combo we pick below
	cores := 4

	source := make([]byte, bufSize*2)
	l1 := make([]byte, 3*bufSize)
	barrier := dmabuf.NewBarrier(cores)

	type result struct{ err error }
	results := make(chan result, cores)
	for c := 0; c < cores; c++ {
		c := c
		go func() {
			buf, err := dmabuf.New(source, l1, bufSize, nil, barrier, c, cores)
			if err != nil {
				results <- result{err: err}
				return
			}
			cipher := chacha20.New(key, nonce)
			results <- result{err: (shard.Dispatcher{}).Run(cipher, buf, c, cores, len(source), bufSize)}
		}()
	}

	sawInvariantErr := false
	for i := 0; i < cores; i++ {
		r := <-results
		if r.err != nil {
			sawInvariantErr = true
		}
	}
	if !sawInvariantErr {
		t.Fatal("want at least one invariant error for a bufSize not divisible by BlockSize*cores")
	}
}
