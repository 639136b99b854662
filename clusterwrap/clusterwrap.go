// Package clusterwrap owns the cluster device and L1 allocation across
// calls, marshals each call's key/IV/source into a shared CoreData, forks
// the N-core team, and joins.
package clusterwrap

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Zeegomo/stream-ciphers/chacha20"
	"github.com/Zeegomo/stream-ciphers/cluster"
	"github.com/Zeegomo/stream-ciphers/dmabuf"
	"github.com/Zeegomo/stream-ciphers/metrics"
	"github.com/Zeegomo/stream-ciphers/shard"
)

// CoreData is the read-only control block every core goroutine sees: built
// once per Run call before fork, never mutated during execution.
type CoreData struct {
	Source []byte
	Key    [32]byte
	IV     [12]byte
	RAM    *cluster.Device
}

// abort is the Go analogue of the SDK's "abort all" call: it is fatal by
// default (terminates the process via zap, after which nothing runs, the
// closest match for "tears down the cluster and FC, then spins"), but is a
// package-level var so tests can intercept it instead of killing the test
// binary, the same indirection cobra and caddy use for their os.Exit hooks.
var abort = func(logger *zap.Logger, format string, args ...any) {
	metrics.Collectors.AbortsTotal.Inc()
	logger.Fatal(fmt.Sprintf(format, args...))
}

// Wrapper holds the cluster across Run calls.
type Wrapper struct {
	cl *cluster.Cluster
}

// New builds a Wrapper around an already-open Cluster.
func New(cl *cluster.Cluster) *Wrapper {
	return &Wrapper{cl: cl}
}

// Device returns the wrapper's cluster device, used by callers to check a
// RAM request was issued against the device this wrapper was built from.
func (w *Wrapper) Device() *cluster.Device {
	return w.cl.Device()
}

// Run forks cores goroutines, each running the shard dispatcher over its
// own view of the staging ring, and joins them. Any per-core error aborts
// the whole cluster: there is no recoverable failure path once inside the
// cluster, per the runtime-exhaustion and internal-invariant error
// categories this system distinguishes from ordinary usage errors.
func (w *Wrapper) Run(source []byte, key [32]byte, iv [12]byte, ram *cluster.Device) error {
	cores := w.cl.Cores()
	bufSize := w.cl.Allocator().BufSize()
	l1 := w.cl.Allocator().StagingRegion()
	barrier := dmabuf.NewBarrier(cores)

	data := CoreData{Source: source, Key: key, IV: iv, RAM: ram}

	var g errgroup.Group
	for coreID := 0; coreID < cores; coreID++ {
		coreID := coreID
		g.Go(func() error {
			cipher := chacha20.New(data.Key, data.IV)

			buf, err := dmabuf.New(data.Source, l1, bufSize, data.RAM, barrier, coreID, cores)
			if err != nil {
				abort(w.cl.Logger(), "dmabuf construction failed on core %d: %v", coreID, err)
				return err
			}

			if err := (shard.Dispatcher{}).Run(cipher, buf, coreID, cores, len(data.Source), bufSize); err != nil {
				abort(w.cl.Logger(), "shard dispatch failed on core %d: %v", coreID, err)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		abort(w.cl.Logger(), "cluster run failed: %v", err)
		return err
	}
	return nil
}

// Close tears down the underlying cluster through Cluster.Close, which
// frees the L1 allocation; the simulated device is not closed.
func (w *Wrapper) Close() error {
	return w.cl.Close()
}
