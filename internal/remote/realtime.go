// Websocket change-feed client.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// EventType identifies a row-change notification kind.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent is one row-change notification from the feed.
//
// New carries the row after the change (INSERT, UPDATE); Old carries the row
// before it (UPDATE, DELETE). Absent sides are empty.
type ChangeEvent struct {
	Event EventType       `json:"event"`
	Table string          `json:"table"`
	Old   json.RawMessage `json:"old,omitempty"`
	New   json.RawMessage `json:"new,omitempty"`
}

// DecodeNew unmarshals the post-change row into out.
func (e ChangeEvent) DecodeNew(out any) error {
	if len(e.New) == 0 {
		return fmt.Errorf("change event carries no new row")
	}
	return json.Unmarshal(e.New, out)
}

// DecodeOld unmarshals the pre-change row into out.
func (e ChangeEvent) DecodeOld(out any) error {
	if len(e.Old) == 0 {
		return fmt.Errorf("change event carries no old row")
	}
	return json.Unmarshal(e.Old, out)
}

// frame is the wire envelope exchanged with the realtime endpoint.
type frame struct {
	Event  string          `json:"event"`
	Topic  string          `json:"topic"`
	Filter string          `json:"filter,omitempty"`
	Status string          `json:"status,omitempty"`
	Table  string          `json:"table,omitempty"`
	Old    json.RawMessage `json:"old,omitempty"`
	New    json.RawMessage `json:"new,omitempty"`
}

const statusSubscribed = "SUBSCRIBED"

// ackTimeout bounds the wait for the subscription acknowledgment.
const ackTimeout = 10 * time.Second

// RealtimeClient dials the realtime endpoint and opens subscriptions.
type RealtimeClient struct {
	endpoint string
	apiKey   string
	dialer   *websocket.Dialer
}

// NewRealtimeClient creates a RealtimeClient for the websocket endpoint at
// endpoint (ws:// or wss://).
func NewRealtimeClient(endpoint, apiKey string, dialer *websocket.Dialer) *RealtimeClient {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	return &RealtimeClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		dialer:   dialer,
	}
}

// Subscribe opens a change feed for rows of topic (schema:table) matching
// filter, e.g. Subscribe(ctx, "public:books", "user_id=eq.42").
//
// The server must acknowledge the subscription with a SUBSCRIBED status;
// any other acknowledgment fails the call. One websocket connection backs
// each subscription.
func (c *RealtimeClient) Subscribe(ctx context.Context, topic, filter string) (*Subscription, error) {
	endpoint := c.endpoint
	if c.apiKey != "" {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid realtime endpoint: %v", shared.ErrInvalidConfig, err)
		}
		q := u.Query()
		q.Set("apikey", c.apiKey)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", shared.ErrSubscribeFailed, c.endpoint, err)
	}

	join := frame{Event: "subscribe", Topic: topic, Filter: filter}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: join: %v", shared.ErrSubscribeFailed, err)
	}

	conn.SetReadDeadline(time.Now().Add(ackTimeout))
	var ack frame
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: no acknowledgment: %v", shared.ErrSubscribeFailed, err)
	}
	if ack.Status != statusSubscribed {
		conn.Close()
		return nil, fmt.Errorf("%w: status %q", shared.ErrSubscribeFailed, ack.Status)
	}
	conn.SetReadDeadline(time.Time{})

	sub := &Subscription{
		conn:   conn,
		topic:  topic,
		events: make(chan ChangeEvent, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}

	go sub.readLoop()

	return sub, nil
}

// Subscription is one open change feed.
type Subscription struct {
	conn  *websocket.Conn
	topic string

	events chan ChangeEvent
	errs   chan error

	once sync.Once
	done chan struct{}
}

// Events returns the channel of row-change notifications.
//
// The channel is closed when the subscription ends.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

// Errors returns a channel reporting a terminal read failure, if any.
func (s *Subscription) Errors() <-chan error {
	return s.errs
}

// Unsubscribe leaves the topic and closes the underlying connection.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		// Best effort; the connection is closed regardless.
		s.conn.WriteJSON(frame{Event: "unsubscribe", Topic: s.topic})
		close(s.done)
		s.conn.Close()
	})
}

// readLoop decodes frames into change events until the connection ends.
func (s *Subscription) readLoop() {
	defer close(s.events)

	for {
		var f frame
		if err := s.conn.ReadJSON(&f); err != nil {
			select {
			case <-s.done:
			default:
				s.errs <- fmt.Errorf("realtime read failed: %w", err)
			}
			return
		}

		switch EventType(f.Event) {
		case EventInsert, EventUpdate, EventDelete:
			event := ChangeEvent{
				Event: EventType(f.Event),
				Table: f.Table,
				Old:   f.Old,
				New:   f.New,
			}
			select {
			case s.events <- event:
			case <-s.done:
				return
			}
		default:
			// Heartbeats and server notices are ignored.
		}
	}
}
