// Package xchacha20 implements HChaCha20 and the XChaCha20 extended-nonce
// construction built on top of the chacha20 package, as specified in
// https://datatracker.ietf.org/doc/html/draft-irtf-cfrg-xchacha-03.
package xchacha20

import (
	"encoding/binary"

	"github.com/Zeegomo/stream-ciphers/chacha20"
)

// HChaCha20 derives a 32-byte subkey from key and a 16-byte input by
// running the full 20-round ChaCha permutation over {constants | key |
// input} and returning words 0..3 concatenated with words 12..15,
// little-endian, without the final state-addition step regular ChaCha20
// blocks use.
func HChaCha20(key [32]byte, in [16]byte) [32]byte {
	var nonce [12]byte
	copy(nonce[:4], in[0:4])
	copy(nonce[4:], in[4:16])

	// HChaCha20 has no counter of its own; it borrows chacha20's state
	// layout (built by the hchachaState helper below) and takes the
	// permuted-but-not-added-back words from hchachaRounds, which mirrors
	// exactly what the cipher does internally before the state-add step.
	state := hchachaState(key, in)
	permuted := hchachaRounds(state)

	var out [32]byte
	for i, w := range permuted[0:4] {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], w)
	}
	for i, w := range permuted[12:16] {
		binary.LittleEndian.PutUint32(out[16+i*4:16+i*4+4], w)
	}
	return out
}

var expand32ByteK = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

func hchachaState(key [32]byte, in [16]byte) [16]uint32 {
	var state [16]uint32
	copy(state[0:4], expand32ByteK[:])
	for i := 0; i < 8; i++ {
		state[4+i] = binary.LittleEndian.Uint32(key[i*4 : i*4+4])
	}
	for i := 0; i < 4; i++ {
		state[12+i] = binary.LittleEndian.Uint32(in[i*4 : i*4+4])
	}
	return state
}

// hchachaRounds runs the same 20-round permutation chacha20 runs, but
// HChaCha20 never adds the initial state back; it uses the permuted
// working state directly as the basis for subkey extraction.
func hchachaRounds(state [16]uint32) [16]uint32 {
	rotl := func(x uint32, k uint) uint32 { return x<<k | x>>(32-k) }
	qr := func(s *[16]uint32, a, b, c, d int) {
		s[a] += s[b]
		s[d] ^= s[a]
		s[d] = rotl(s[d], 16)
		s[c] += s[d]
		s[b] ^= s[c]
		s[b] = rotl(s[b], 12)
		s[a] += s[b]
		s[d] ^= s[a]
		s[d] = rotl(s[d], 8)
		s[c] += s[d]
		s[b] ^= s[c]
		s[b] = rotl(s[b], 7)
	}

	working := state
	for i := 0; i < 10; i++ {
		qr(&working, 0, 4, 8, 12)
		qr(&working, 1, 5, 9, 13)
		qr(&working, 2, 6, 10, 14)
		qr(&working, 3, 7, 11, 15)
		qr(&working, 0, 5, 10, 15)
		qr(&working, 1, 6, 11, 12)
		qr(&working, 2, 7, 8, 13)
		qr(&working, 3, 4, 9, 14)
	}
	return working
}

// New builds a *chacha20.ChaCha20 configured for the XChaCha20 extended
// (24-byte) nonce construction: it derives a subkey via HChaCha20 over the
// key and the first 16 bytes of nonce, then constructs a regular ChaCha20
// instance from that subkey and a 12-byte working nonce made of four zero
// bytes followed by the last 8 bytes of nonce. XChaCha is not a distinct
// stateful type; it is this one constructor.
func New(key [32]byte, nonce [24]byte) *chacha20.ChaCha20 {
	var hNonce [16]byte
	copy(hNonce[:], nonce[0:16])
	subKey := HChaCha20(key, hNonce)

	var workingNonce [12]byte
	copy(workingNonce[4:], nonce[16:24])

	return chacha20.New(subKey, workingNonce)
}
