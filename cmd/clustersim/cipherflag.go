package main

import (
	"fmt"

	"github.com/spf13/pflag"

	streamciphers "github.com/Zeegomo/stream-ciphers"
)

// cipherFlag adapts streamciphers.Cipher to pflag.Value so --cipher can be
// given as a name instead of a bare wire-value integer.
type cipherFlag struct {
	value streamciphers.Cipher
}

var _ pflag.Value = (*cipherFlag)(nil)

func (c *cipherFlag) String() string {
	switch c.value {
	case streamciphers.CipherChaCha20:
		return "chacha20"
	case streamciphers.CipherRC4:
		return "rc4"
	case streamciphers.CipherRabbit:
		return "rabbit"
	default:
		return "unknown"
	}
}

func (c *cipherFlag) Set(s string) error {
	switch s {
	case "chacha20":
		c.value = streamciphers.CipherChaCha20
	case "rc4":
		c.value = streamciphers.CipherRC4
	case "rabbit":
		c.value = streamciphers.CipherRabbit
	default:
		return fmt.Errorf("unknown cipher %q, want chacha20, rc4 or rabbit", s)
	}
	return nil
}

func (c *cipherFlag) Type() string { return "cipher" }
