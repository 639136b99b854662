// Package chacha20 implements the ChaCha stream cipher family (ChaCha20,
// ChaCha12, ChaCha8) as specified in https://datatracker.ietf.org/doc/html/rfc8439,
// tuned for use as the keystream backend of a parallel DMA-pipelined cipher
// engine: callers drive an explicit block position via SetBlockPos/BlockPos
// so that independent shards of a buffer can be encrypted out of order and
// still reproduce a serial run byte-for-byte.
package chacha20

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"github.com/Zeegomo/stream-ciphers/chacha20/pulpbackend"
)

// BlockSize is the size, in bytes, of one ChaCha keystream block.
const BlockSize = 64

// ErrCounterWrap is returned when producing another block would wrap the
// 32-bit block counter past its maximum value. A single cipher instance can
// emit at most 2^32-1 blocks (~256 GiB); wrapping is a fatal condition at the
// call site, not a recoverable one.
var ErrCounterWrap = errors.New("chacha20: block counter would wrap")

// expand32ByteK is the fixed ChaCha constant, "expand 32-byte k" read as
// four little-endian words.
var expand32ByteK = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// ChaCha20 is a stateful instance of the ChaCha stream cipher. The zero
// value is not usable; construct one with New, NewWithRounds, or NewLegacy.
type ChaCha20 struct {
	// key and nonce occupy state words 4..11 and 13..15 and never change
	// after construction.
	state  [16]uint32
	rounds int
}

// New creates a ChaCha20 instance (20 rounds) with the standard RFC 8439
// 12-byte nonce and the block counter starting at zero.
func New(key [32]byte, nonce [12]byte) *ChaCha20 {
	return NewWithRounds(key, nonce, 20)
}

// NewWithRounds creates a ChaCha instance with an explicit round count.
// rounds must be 8, 12, or 20.
func NewWithRounds(key [32]byte, nonce [12]byte, rounds int) *ChaCha20 {
	if rounds != 8 && rounds != 12 && rounds != 20 {
		panic("chacha20: rounds must be 8, 12, or 20")
	}
	c := &ChaCha20{rounds: rounds}
	copy(c.state[0:4], expand32ByteK[:])
	for i := 0; i < 8; i++ {
		c.state[4+i] = binary.LittleEndian.Uint32(key[i*4 : i*4+4])
	}
	c.state[12] = 0
	for i := 0; i < 3; i++ {
		c.state[13+i] = binary.LittleEndian.Uint32(nonce[i*4 : i*4+4])
	}
	return c
}

// NewLegacy creates a ChaCha20 instance using the legacy 64-bit-nonce
// variant: counter is the initial 64-bit block position split across words
// 12 (low half) and 13 (high half), and the 8-byte nonce occupies words 14
// and 15. BlockPos, SetBlockPos and the per-block increment act on word 12
// only.
func NewLegacy(key [32]byte, nonce [8]byte, counter uint64) *ChaCha20 {
	c := &ChaCha20{rounds: 20}
	copy(c.state[0:4], expand32ByteK[:])
	for i := 0; i < 8; i++ {
		c.state[4+i] = binary.LittleEndian.Uint32(key[i*4 : i*4+4])
	}
	c.state[12] = uint32(counter)
	c.state[13] = uint32(counter >> 32)
	c.state[14] = binary.LittleEndian.Uint32(nonce[0:4])
	c.state[15] = binary.LittleEndian.Uint32(nonce[4:8])
	return c
}

// BlockPos returns the 64-byte-block index of the next block this instance
// would emit.
func (c *ChaCha20) BlockPos() uint32 {
	return c.state[12]
}

// SetBlockPos seeks to an absolute block position. It does not affect the
// constants, key, or nonce.
func (c *ChaCha20) SetBlockPos(pos uint32) {
	c.state[12] = pos
}

// RemainingBlocks reports how many more blocks this instance can emit before
// the counter would wrap. unbounded is true if that count does not fit in a
// uint32 (i.e. the counter has not moved past zero remaining headroom on a
// 32-bit platform index).
func (c *ChaCha20) RemainingBlocks() (remaining uint32, unbounded bool) {
	return 0xFFFFFFFF - c.state[12], false
}

// runRounds permutes a copy of state through c.rounds ChaCha rounds and
// adds the original state back in, producing one keystream block's worth
// of 16 words. It does not touch the counter.
func runRounds(state [16]uint32, rounds int) [16]uint32 {
	if pulpbackend.Available() {
		return pulpbackend.Block(state, rounds)
	}
	return runRoundsPortable(state, rounds)
}

func runRoundsPortable(state [16]uint32, rounds int) [16]uint32 {
	working := state

	for i := 0; i < rounds/2; i++ {
		quarterRoundInPlace(&working, 0, 4, 8, 12)
		quarterRoundInPlace(&working, 1, 5, 9, 13)
		quarterRoundInPlace(&working, 2, 6, 10, 14)
		quarterRoundInPlace(&working, 3, 7, 11, 15)

		quarterRoundInPlace(&working, 0, 5, 10, 15)
		quarterRoundInPlace(&working, 1, 6, 11, 12)
		quarterRoundInPlace(&working, 2, 7, 8, 13)
		quarterRoundInPlace(&working, 3, 4, 9, 14)
	}

	for i, v := range state {
		working[i] += v
	}
	return working
}

func quarterRoundInPlace(state *[16]uint32, x, y, z, w int) {
	a, b, c, d := quarterRound(state[x], state[y], state[z], state[w])
	state[x], state[y], state[z], state[w] = a, b, c, d
}

// quarterRound is the ChaCha quarter round primitive, QR(a,b,c,d) from
// RFC 8439 section 2.1.
func quarterRound(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	a += b
	d ^= a
	d = bits.RotateLeft32(d, 16)

	c += d
	b ^= c
	b = bits.RotateLeft32(b, 12)

	a += b
	d ^= a
	d = bits.RotateLeft32(d, 8)

	c += d
	b ^= c
	b = bits.RotateLeft32(b, 7)

	return a, b, c, d
}

// ApplyKeystreamBlock XORs one 64-byte keystream block into block, using
// and then advancing the current block position by exactly one.
func (c *ChaCha20) ApplyKeystreamBlock(block *[64]byte) error {
	if c.state[12] == 0xFFFFFFFF {
		return ErrCounterWrap
	}

	ks := runRounds(c.state, c.rounds)
	for i, word := range ks {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], word)
		block[i*4] ^= buf[0]
		block[i*4+1] ^= buf[1]
		block[i*4+2] ^= buf[2]
		block[i*4+3] ^= buf[3]
	}
	c.state[12]++
	return nil
}

// ApplyKeystream XORs buf in place with the keystream, advancing the block
// position as needed. A trailing partial block is XORed with the
// corresponding prefix of the next keystream block; the block position still
// advances past that block, so the rest of it is discarded. An empty buf is
// a no-op and does not advance the counter.
func (c *ChaCha20) ApplyKeystream(buf []byte) error {
	for len(buf) > 0 {
		var block [64]byte
		n := copy(block[:], buf)
		if err := c.ApplyKeystreamBlock(&block); err != nil {
			return err
		}
		copy(buf, block[:n])
		buf = buf[n:]
	}
	return nil
}
