// Package streamciphers implements the host ABI described in this
// module's external interface: cluster open/close and the Encrypt entry
// point that runs the parallel DMA-pipelined ChaCha20 engine, plus a
// serial reference implementation used only as a cross-check oracle.
package streamciphers

import (
	"github.com/Zeegomo/stream-ciphers/cluster"
	"github.com/Zeegomo/stream-ciphers/clusterwrap"
	"github.com/Zeegomo/stream-ciphers/config"
	"github.com/Zeegomo/stream-ciphers/internal/clustererr"

	refchacha20 "golang.org/x/crypto/chacha20"
)

// Cipher selects the keystream algorithm Encrypt should run. Wire values
// match the host ABI's enum exactly; only CipherChaCha20 is implemented.
type Cipher int

const (
	CipherChaCha20 Cipher = 0
	CipherRC4      Cipher = 1
	CipherRabbit   Cipher = 2
)

// ErrUnsupportedCipher is returned by Encrypt for any Cipher value other
// than CipherChaCha20.
var ErrUnsupportedCipher = &clustererr.UsageError{Msg: "unsupported cipher"}

// DefaultBufSize is the staging sub-buffer size B used by ClusterInit.
// 3072 is a multiple of BlockSize*MaxCores (64*8), satisfying the shard
// dispatcher's invariant at every supported core count.
const DefaultBufSize = 3072

// ClusterInit opens a cluster with the default core count and staging
// buffer size and returns a ready Wrapper along with its device handle.
func ClusterInit() (*clusterwrap.Wrapper, *cluster.Device, error) {
	return ClusterInitWith(config.Default())
}

// ClusterInitWith opens a cluster using cfg instead of the package default,
// letting callers pick a non-default core count.
func ClusterInitWith(cfg *config.Config) (*clusterwrap.Wrapper, *cluster.Device, error) {
	cl, err := cluster.Open(cfg, DefaultBufSize)
	if err != nil {
		return nil, nil, err
	}
	w := clusterwrap.New(cl)
	return w, cl.Device(), nil
}

// Encrypt runs the cluster over data in place. ram selects the source
// location: nil means data lives in L2, non-nil means RAM reached through
// the given device, which must be the same device w was built from. A
// zero-length data is a no-op.
func Encrypt(w *clusterwrap.Wrapper, data []byte, key [32]byte, iv [12]byte, ram *cluster.Device, c Cipher) error {
	if len(data) == 0 {
		return nil
	}
	if c != CipherChaCha20 {
		return ErrUnsupportedCipher
	}
	if ram != nil && ram != w.Device() {
		return &clustererr.UsageError{Msg: "ram device does not match the wrapper's device"}
	}
	return w.Run(data, key, iv, ram)
}

// ClusterClose tears down the wrapper's cluster.
func ClusterClose(w *clusterwrap.Wrapper) error {
	return w.Close()
}

// EncryptSerialOrig is the single-core reference implementation used by
// tests to cross-check the parallel engine. It is backed by
// golang.org/x/crypto/chacha20, an independent, already-reviewed RFC 8439
// implementation, precisely so it never shares a bug with this module's
// own chacha20 package.
func EncryptSerialOrig(data []byte, key [32]byte, iv [12]byte) error {
	if len(data) == 0 {
		return nil
	}
	c, err := refchacha20.NewUnauthenticatedCipher(key[:], iv[:])
	if err != nil {
		return err
	}
	c.XORKeyStream(data, data)
	return nil
}
