package clusterwrap_test

import (
	"bytes"
	"testing"

	"github.com/Zeegomo/stream-ciphers/chacha20"
	"github.com/Zeegomo/stream-ciphers/cluster"
	"github.com/Zeegomo/stream-ciphers/clusterwrap"
	"github.com/Zeegomo/stream-ciphers/config"
)

func openWrapper(t *testing.T, cores, bufSize int) (*clusterwrap.Wrapper, *cluster.Cluster) {
	t.Helper()
	cfg := &config.Config{Cores: cores}
	cl, err := cluster.Open(cfg, bufSize)
	if err != nil {
		t.Fatalf("cluster.Open: %v", err)
	}
	return clusterwrap.New(cl), cl
}

func TestRunMatchesDirectEncrypt(t *testing.T) {
	var key [32]byte
	var iv [12]byte
	for i := range key {
		key[i] = byte(i * 5)
	}
	for i := range iv {
		iv[i] = byte(i * 7)
	}

	cores := 4
	bufSize := 64 * cores * 3 // a multiple of BlockSize*cores
	sourceLen := bufSize*2 + 50

	original := make([]byte, sourceLen)
	for i := range original {
		original[i] = byte(i * 11)
	}

	want := append([]byte(nil), original...)
	ref := chacha20.New(key, iv)
	if err := ref.ApplyKeystream(want); err != nil {
		t.Fatalf("reference ApplyKeystream: %v", err)
	}

	w, cl := openWrapper(t, cores, bufSize)
	defer cl.Close()

	data := append([]byte(nil), original...)
	if err := w.Run(data, key, iv, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !bytes.Equal(data, want) {
		t.Errorf("cluster run diverges from direct ApplyKeystream")
	}
}
