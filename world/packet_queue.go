package world

import (
	"sync"

	jp "github.com/go-mclib/bot/java_protocol"
)

// PacketQueue is a thread-safe FIFO of decoded packets. The read loop pushes
// to World.Inbound without holding the world lock, since packet receipt
// never mutates the world directly, it only enqueues packets that a handler
// system later drains; the write loop pops from World.Outbound the same way.
// It has its own mutex, independent of World's, precisely so I/O tasks never
// need the world lock to hand off a packet.
type PacketQueue struct {
	mu      sync.Mutex
	packets []*jp.Packet
}

func NewPacketQueue() *PacketQueue {
	return &PacketQueue{}
}

// Push appends a packet to the tail of the queue.
func (q *PacketQueue) Push(p *jp.Packet) {
	q.mu.Lock()
	q.packets = append(q.packets, p)
	q.mu.Unlock()
}

// Drain removes and returns every packet currently queued, in FIFO order.
func (q *PacketQueue) Drain() []*jp.Packet {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.packets) == 0 {
		return nil
	}
	out := q.packets
	q.packets = nil
	return out
}
