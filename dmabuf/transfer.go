package dmabuf

import "github.com/Zeegomo/stream-ciphers/cluster"

// transferKind tags which memory a transfer moves bytes to or from. A
// closed two-case tag is used instead of an interface: only two cases
// exist, dispatch is on a hot per-round path, and the DMA engine's real
// analogue needs the request to sit in a fixed, non-relocatable slot.
type transferKind int

const (
	transferL2 transferKind = iota
	transferRAM
)

// transfer models one outstanding DMA command. Issuing it starts a
// goroutine that performs the copy and closes done when finished; wait
// blocks until that happens. Calling wait on a transfer that was never
// issued is undefined by construction; callers gate on rounds>1 and on
// whether a prefetch was actually issued this round.
type transfer struct {
	kind   transferKind
	device *cluster.Device
	done   chan struct{}
}

func newTransfer(kind transferKind, device *cluster.Device) *transfer {
	return &transfer{kind: kind, device: device}
}

// issue starts the transfer of the first n bytes from src into dst,
// running the copy on a separate goroutine so wait is meaningful even
// though the "DMA engine" here is just memcpy.
func (t *transfer) issue(dst, src []byte, n int) {
	t.done = make(chan struct{})
	go func() {
		copy(dst[:n], src[:n])
		close(t.done)
	}()
}

// wait blocks until the transfer completes.
func (t *transfer) wait() {
	<-t.done
}
