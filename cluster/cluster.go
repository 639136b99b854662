// Package cluster models the lifetime of the accelerator's cluster device:
// opening the SDK handle, owning the L1 staging allocation, and closing
// both in reverse order of acquisition.
package cluster

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Zeegomo/stream-ciphers/clusterl1"
	"github.com/Zeegomo/stream-ciphers/config"
)

// ErrDeviceOpenFailed is returned by Open when the simulated SDK device
// open reports failure.
var ErrDeviceOpenFailed = errors.New("cluster: device open failed")

// Device is the pinned cluster device handle: its address is captured by
// the L1 allocator and by every DMA transfer issued against RAM, and must
// not move for the cluster's lifetime. Go's garbage collector never moves
// a heap object referenced by a live pointer outside a stack-copy window,
// so a plain *Device already gives that guarantee without a pinning API.
type Device struct {
	id int
}

// openDevice is a package-level var so tests can simulate SDK open failure
// without touching real hardware, the same indirection clusterwrap uses
// for abort.
var openDevice = func() (*Device, error) {
	return &Device{id: 1}, nil
}

// Cluster owns the device handle and the L1 staging allocation for one
// accelerator lifetime.
type Cluster struct {
	cfg    *config.Config
	device *Device
	alloc  *clusterl1.Allocator
	logger *zap.Logger
}

// Open validates cfg, opens the device, and allocates the L1 staging
// region sized for bufSize. Failures are returned in acquisition order: a
// bad config is reported before any device is opened.
func Open(cfg *config.Config, bufSize int) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dev, err := openDevice()
	if err != nil {
		return nil, ErrDeviceOpenFailed
	}

	alloc, err := clusterl1.New(bufSize)
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}

	return &Cluster{cfg: cfg, device: dev, alloc: alloc, logger: logger}, nil
}

// Device returns the pinned device handle.
func (c *Cluster) Device() *Device { return c.device }

// Cores returns the fork width this cluster was opened with.
func (c *Cluster) Cores() int { return c.cfg.Cores }

// Allocator returns the L1 staging allocator.
func (c *Cluster) Allocator() *clusterl1.Allocator { return c.alloc }

// Logger returns the cluster's structured logger.
func (c *Cluster) Logger() *zap.Logger { return c.logger }

// Close frees the L1 allocation and syncs the logger. The simulated Device
// holds no resource and is not closed: Device keeps returning the same
// handle after Close.
func (c *Cluster) Close() error {
	c.alloc.Close()
	_ = c.logger.Sync()
	return nil
}
