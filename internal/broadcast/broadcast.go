// package broadcast implements same-process publish/subscribe between "tabs".
//
// A [Broker] plays the role the browser's BroadcastChannel plays for a web
// app: any number of handles may join a named channel and every message sent
// through one handle is delivered, asynchronously, to every other handle on
// the same channel. The broker is constructed once at application startup and
// passed to consumers; it is not ambient global state.
package broadcast

import (
	"fmt"
	"sync"
	"time"

	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// Broker is the process-wide registry of broadcast channels.
type Broker struct {
	mu       sync.Mutex
	channels map[string][]*Handle
	closed   bool
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{channels: make(map[string][]*Handle)}
}

// Open joins the named channel and returns a fresh [Handle].
//
// Each handle gets its own tab identifier combining the current time in
// milliseconds with a random suffix, so collisions between handles opened in
// the same millisecond are negligible. Open fails fast when the broker is
// unavailable rather than returning a handle that silently drops messages.
func (b *Broker) Open(channelName string) (*Handle, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: broadcast broker not available", shared.ErrServiceUnavailable)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("%w: %s", shared.ErrChannelClosed, channelName)
	}

	h := &Handle{
		broker:  b,
		channel: channelName,
		tabID:   generateTabID(),
		inbox:   make(chan Message, inboxSize),
		done:    make(chan struct{}),
	}

	b.channels[channelName] = append(b.channels[channelName], h)

	go h.dispatch()

	return h, nil
}

// Close tears down the broker and every open handle.
func (b *Broker) Close() {
	b.mu.Lock()
	handles := []*Handle{}
	for _, hs := range b.channels {
		handles = append(handles, hs...)
	}
	b.channels = make(map[string][]*Handle)
	b.closed = true
	b.mu.Unlock()

	for _, h := range handles {
		h.shutdown()
	}
}

// publish fans msg out to every handle on the channel except the sender.
//
// Delivery is fire-and-forget: a receiver whose inbox is full misses the
// message, matching the no-guarantee contract for busy or closing tabs.
func (b *Broker) publish(channelName string, msg Message) {
	b.mu.Lock()
	handles := make([]*Handle, len(b.channels[channelName]))
	copy(handles, b.channels[channelName])
	b.mu.Unlock()

	for _, h := range handles {
		if h.tabID == msg.TabID {
			continue
		}
		select {
		case h.inbox <- msg:
		default:
			// Receiver's inbox is full; drop rather than block the sender.
		}
	}
}

// remove detaches a handle from its channel.
func (b *Broker) remove(h *Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handles := b.channels[h.channel]
	for i, other := range handles {
		if other == h {
			b.channels[h.channel] = append(handles[:i], handles[i+1:]...)
			break
		}
	}
}

const inboxSize = 64

// Handle is one tab's membership in a broadcast channel.
type Handle struct {
	broker  *Broker
	channel string
	tabID   string

	inbox chan Message
	done  chan struct{}

	mu       sync.Mutex
	callback func(Message)
	closed   bool
}

// TabID returns the handle's unique tab identifier.
func (h *Handle) TabID() string {
	return h.tabID
}

// Send stamps the message with the handle's tab ID and send time, then
// publishes it to every other handle on the channel.
//
// Sending through a closed handle is a silent no-op.
func (h *Handle) Send(msg Message) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return
	}

	msg.TabID = h.tabID
	msg.Timestamp = time.Now()
	h.broker.publish(h.channel, msg)
}

// OnMessage registers the callback invoked for each inbound message.
//
// Only one callback is active per handle; registering again replaces the
// previous one. The callback never sees messages originated by this handle.
func (h *Handle) OnMessage(fn func(Message)) {
	h.mu.Lock()
	h.callback = fn
	h.mu.Unlock()
}

// Close detaches the handle from the channel and stops delivery.
func (h *Handle) Close() {
	h.broker.remove(h)
	h.shutdown()
}

func (h *Handle) shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.done)
}

// dispatch delivers inbox messages to the registered callback, preserving
// per-sender arrival order.
func (h *Handle) dispatch() {
	for {
		select {
		case msg := <-h.inbox:
			h.mu.Lock()
			cb := h.callback
			h.mu.Unlock()

			if cb != nil && msg.TabID != h.tabID {
				cb(msg)
			}
		case <-h.done:
			return
		}
	}
}

// generateTabID builds an identifier unique to one transport handle.
func generateTabID() string {
	suffix := shared.GenerateID()[:8]
	return fmt.Sprintf("tab_%d_%s", time.Now().UnixMilli(), suffix)
}
