// Package pulpbackend runs one ChaCha permutation entirely through the
// cluster's custom instruction encoders instead of plain Go arithmetic: it
// assembles the eight quarter rounds of one column+diagonal pass as an
// Instr program built from internal/riscv's add/xor/ror encoders, pins the
// 16 state words to a 32-entry register file the way the original inline
// assembly pins them to x16-x31, and repeats that program rounds/2 times,
// the hardware-loop count a real lp_setup would drive.
//
// This is a host-side model of what the PULP cluster's inline assembly
// does; there is no real cluster core to target from a Go binary, so
// Available reports whether the host CPU has the baseline feature this
// package's portable fallback requires, standing in for "the rotate opcode
// is present on this core" the way lucas-clemente-chacha20's useSSSE3 gate
// stands in for "the AVX path is usable here".
package pulpbackend

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/Zeegomo/stream-ciphers/internal/riscv"
)

// Available reports whether the accelerated instruction-stream path should
// be used, gated on the host's baseline SIMD feature the way
// lucas-clemente-chacha20 gates its assembly path on SSSE3.
func Available() bool {
	return cpuid.CPU.Supports(cpuid.SSE2)
}

// columnRound and diagonalRound name the register numbers the original
// assembly pins the 16 state words to: x16..x31.
var columnRound = [4][4]riscv.Reg{
	{16, 20, 24, 28},
	{17, 21, 25, 29},
	{18, 22, 26, 30},
	{19, 23, 27, 31},
}

var diagonalRound = [4][4]riscv.Reg{
	{16, 21, 26, 31},
	{17, 22, 27, 28},
	{18, 23, 24, 29},
	{19, 20, 25, 30},
}

// rotateAmounts holds the four ror-by-(32-k) immediates the cluster ISA
// uses in place of the standard rotate-left-16/12/8/7 quarter round:
// left-rotate k becomes ror(32-k).
var rotateAmounts = [4]uint32{16, 20, 24, 25}

// quarterRoundProgram assembles one quarter round QR(a,b,c,d) as the
// interleaved add/xor/ror instruction sequence the real asm macro expands
// to.
func quarterRoundProgram(a, b, c, d riscv.Reg) []riscv.Instr {
	return []riscv.Instr{
		riscv.Add(a, a, b),
		riscv.Xor(d, d, a),
		riscv.Ror(d, d, rotateAmounts[0]),

		riscv.Add(c, c, d),
		riscv.Xor(b, b, c),
		riscv.Ror(b, b, rotateAmounts[1]),

		riscv.Add(a, a, b),
		riscv.Xor(d, d, a),
		riscv.Ror(d, d, rotateAmounts[2]),

		riscv.Add(c, c, d),
		riscv.Xor(b, b, c),
		riscv.Ror(b, b, rotateAmounts[3]),
	}
}

// loopBody assembles the eight quarter rounds (four column, four diagonal)
// that make up one full ChaCha round, the body a hardware lp_setup loop
// repeats rounds/2 times.
func loopBody() []riscv.Instr {
	var prog []riscv.Instr
	for _, qr := range columnRound {
		prog = append(prog, quarterRoundProgram(qr[0], qr[1], qr[2], qr[3])...)
	}
	for _, qr := range diagonalRound {
		prog = append(prog, quarterRoundProgram(qr[0], qr[1], qr[2], qr[3])...)
	}
	return prog
}

// Block runs the ChaCha permutation for the given round count by pinning
// state to registers x16..x31, executing the hardware-loop body rounds/2
// times through internal/riscv.Exec, then adding the original state back
// in software after the loop exits.
func Block(state [16]uint32, rounds int) [16]uint32 {
	var rf riscv.RegFile
	for i, w := range state {
		rf[16+i] = w
	}

	// lp_setup(rs1=x14, uimml) sets up the loop; x14 carries the iteration
	// count, matching the original's register assignment.
	rf[14] = uint32(rounds / 2)
	riscv.Exec(riscv.LpSetup(14, 160), &rf, nil)

	body := loopBody()
	iterations := int(rf[14])
	for i := 0; i < iterations; i++ {
		for _, instr := range body {
			riscv.Exec(instr, &rf, nil)
		}
	}

	var out [16]uint32
	for i := range out {
		out[i] = rf[16+i] + state[i]
	}
	return out
}
