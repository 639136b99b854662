// Package shard implements the per-core round loop: slicing the current
// work buffer into this core's contiguous shard, seeking the cipher to the
// matching absolute keystream position, and driving the staging ring
// through to its final flush.
package shard

import (
	"strconv"

	"github.com/Zeegomo/stream-ciphers/chacha20"
	"github.com/Zeegomo/stream-ciphers/dmabuf"
	"github.com/Zeegomo/stream-ciphers/internal/clustererr"
	"github.com/Zeegomo/stream-ciphers/metrics"
)

// Keystreamer is the subset of *chacha20.ChaCha20 the dispatcher drives.
// Seeking each core's own instance to an absolute block position, rather
// than sharing one cipher across cores, is what lets the shards run with
// no synchronization beyond the staging ring's barrier.
type Keystreamer interface {
	SetBlockPos(uint32)
	ApplyKeystream(buf []byte) error
}

// Dispatcher runs the round loop for one core.
type Dispatcher struct{}

// Run drives cipher across buf's work buffers until sourceLen bytes have
// been processed, including a short tail round when sourceLen is not a
// multiple of bufSize, then flushes the ring.
func (Dispatcher) Run(cipher Keystreamer, buf *dmabuf.DmaBuf, coreID, cores, sourceLen, bufSize int) error {
	if bufSize%(chacha20.BlockSize*cores) != 0 {
		return &clustererr.InvariantError{Msg: "bufSize is not a multiple of BlockSize*cores"}
	}

	shardSize := bufSize / cores
	past := 0
	rounds := sourceLen / bufSize
	coreLabel := strconv.Itoa(coreID)

	for r := 0; r < rounds; r++ {
		shard := buf.WorkBuf()
		pos := (past + coreID*shardSize) / chacha20.BlockSize
		cipher.SetBlockPos(uint32(pos))
		if err := cipher.ApplyKeystream(shard); err != nil {
			return err
		}
		metrics.Collectors.BytesProcessed.WithLabelValues(coreLabel).Add(float64(len(shard)))
		past += bufSize
		if err := buf.Advance(); err != nil {
			return err
		}
	}

	if sourceLen > past {
		shard := buf.WorkBuf()
		pos := (past + coreID*shardSize) / chacha20.BlockSize
		cipher.SetBlockPos(uint32(pos))
		if err := cipher.ApplyKeystream(shard); err != nil {
			return err
		}
		metrics.Collectors.BytesProcessed.WithLabelValues(coreLabel).Add(float64(len(shard)))
		if err := buf.Advance(); err != nil {
			return err
		}
	}

	return buf.Flush()
}
