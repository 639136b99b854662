// Package dmabuf implements the triple-buffered DMA staging ring: the
// state machine that keeps one L1 sub-buffer being computed on while a
// second is being fetched from remote memory and a third is being written
// back, synchronized across cores by a team barrier.
package dmabuf

import (
	"github.com/Zeegomo/stream-ciphers/cluster"
	"github.com/Zeegomo/stream-ciphers/internal/clustererr"
	"github.com/Zeegomo/stream-ciphers/metrics"
)

// DmaBuf is one core's view of the staging ring. Every core in a run
// constructs its own DmaBuf over the same shared L1 region and source; the
// rotation and size bookkeeping below is a pure function of the round
// number and source length, so every core's view stays in lock-step
// without exchanging anything beyond the barrier. Only the coreID==0
// instance actually issues and waits on transfers.
type DmaBuf struct {
	source    []byte
	sourceLen int
	l1        []byte
	bufSize   int
	device    *cluster.Device
	barrier   *Barrier
	coreID    int
	cores     int

	rounds       int
	counters     [3]int
	preFetch     *transfer
	commit       *transfer
	lastTransfer int
	workBufLen   int

	coreLabel string
}

func satSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// New constructs a staging ring view for one core. ram selects the
// transfer kind: nil means the source lives in L2, non-nil means RAM
// reached through the given device. It performs the constructor's single
// priming transfer (core 0 only) and the barrier that follows it.
func New(source []byte, l1 []byte, bufSize int, ram *cluster.Device, barrier *Barrier, coreID, cores int) (*DmaBuf, error) {
	if len(l1) != 3*bufSize {
		return nil, &clustererr.InvariantError{Msg: "L1 staging region is not exactly 3*bufSize"}
	}
	if bufSize%cores != 0 {
		return nil, &clustererr.InvariantError{Msg: "bufSize is not divisible by core count"}
	}

	kind := transferL2
	if ram != nil {
		kind = transferRAM
	}

	sourceLen := len(source)
	d := &DmaBuf{
		source:    source,
		sourceLen: sourceLen,
		l1:        l1,
		bufSize:   bufSize,
		device:    ram,
		barrier:   barrier,
		coreID:    coreID,
		cores:     cores,
		counters:  [3]int{0, bufSize, 2 * bufSize},
		coreLabel: coreLabel(coreID),
	}

	if coreID == 0 {
		n := minInt(2*bufSize, sourceLen)
		prime := newTransfer(kind, ram)
		prime.issue(d.l1[0:2*bufSize], source, n)
		prime.wait()
	}
	barrier.Wait()

	d.workBufLen = minInt(bufSize, sourceLen)
	d.lastTransfer = minInt(bufSize, satSub(sourceLen, bufSize))

	return d, nil
}

func coreLabel(coreID int) string {
	// small fixed table avoids strconv for the handful of core ids this
	// module supports (MaxCores==8).
	labels := [8]string{"0", "1", "2", "3", "4", "5", "6", "7"}
	if coreID >= 0 && coreID < len(labels) {
		return labels[coreID]
	}
	return "?"
}

// Advance rotates the ring one round: the old work buffer becomes the new
// commit, the old prefetch becomes the new work, the old commit becomes
// the new prefetch; core 0 waits on the previous round's transfers, all
// cores synchronize on the barrier, then core 0 issues the next pair of
// transfers.
func (d *DmaBuf) Advance() error {
	d.rounds++
	d.counters[0], d.counters[1], d.counters[2] = d.counters[1], d.counters[2], d.counters[0]

	nextPrefetchOffset := (d.rounds + 1) * d.bufSize
	nextPrefetchSize := minInt(satSub(d.sourceLen, nextPrefetchOffset), d.bufSize)

	if d.coreID == 0 && d.rounds > 1 {
		d.commit.wait()
		if d.preFetch != nil {
			d.preFetch.wait()
		}
	}

	d.barrier.Wait()

	if d.coreID == 0 {
		kind := transferL2
		if d.device != nil {
			kind = transferRAM
		}

		remoteCommitOffset := (d.rounds - 1) * d.bufSize
		commitL1 := d.l1[d.counters[2] : d.counters[2]+d.bufSize]
		d.commit = newTransfer(kind, d.device)
		d.commit.issue(d.source[remoteCommitOffset:], commitL1, d.workBufLen)

		if nextPrefetchOffset < d.sourceLen {
			prefetchL1 := d.l1[d.counters[1] : d.counters[1]+d.bufSize]
			d.preFetch = newTransfer(kind, d.device)
			d.preFetch.issue(prefetchL1, d.source[nextPrefetchOffset:], nextPrefetchSize)
		} else {
			d.preFetch = nil
		}

		metrics.Collectors.RoundsTotal.WithLabelValues(d.coreLabel).Inc()
	}

	d.workBufLen = d.lastTransfer
	d.lastTransfer = nextPrefetchSize

	return nil
}

// Flush waits for the final commit to land and releases every core at the
// barrier. Must be called after the dispatcher's last Advance so the last
// commit is durable before the host resumes.
func (d *DmaBuf) Flush() error {
	if d.coreID == 0 && d.commit != nil {
		d.commit.wait()
	}
	d.barrier.Wait()
	return nil
}

// WorkBuf returns this core's shard of the current work buffer: B/N bytes
// at offset coreID*(B/N), clipped to the work buffer's actual length.
func (d *DmaBuf) WorkBuf() []byte {
	shardSize := d.bufSize / d.cores
	offset := d.coreID * shardSize
	work := d.l1[d.counters[0] : d.counters[0]+d.bufSize]

	avail := minInt(satSub(d.workBufLen, offset), shardSize)
	if offset > len(work) {
		return work[len(work):len(work)]
	}
	return work[offset : offset+avail]
}

// Counters exposes the current ring offsets, used by tests to assert the
// {0,B,2B} permutation invariant.
func (d *DmaBuf) Counters() [3]int { return d.counters }

// WorkBufLen returns the length of the current work buffer.
func (d *DmaBuf) WorkBufLen() int { return d.workBufLen }
