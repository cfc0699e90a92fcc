package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/r3labs/sse/v2"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/desk"
)

// RoomsStream is the SSE stream id that carries desk events.
const RoomsStream = "rooms"

// EventStream republishes desk events as server-sent events.
type EventStream struct {
	server      *sse.Server
	unsubscribe func()
	logger      *zap.Logger
}

// NewEventStream subscribes to m and publishes every event on RoomsStream.
// With replay set, new subscribers first receive the events already sent.
//
// Postcondition: The caller must call Close to stop publishing.
func NewEventStream(m *desk.Manager, replay bool, logger *zap.Logger) *EventStream {
	srv := sse.New()
	srv.AutoStream = false
	srv.AutoReplay = replay
	srv.CreateStream(RoomsStream)

	es := &EventStream{server: srv, logger: logger}
	es.unsubscribe = m.Subscribe(es.publish)
	return es
}

func (es *EventStream) publish(evt desk.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		es.logger.Error("encoding desk event", zap.String("kind", string(evt.Kind)), zap.Error(err))
		return
	}
	es.server.Publish(RoomsStream, &sse.Event{
		Event: []byte(evt.Kind),
		Data:  data,
	})
}

// ServeHTTP streams events for the stream named by the "stream" query
// parameter.
func (es *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stream") == "" {
		q := r.URL.Query()
		q.Set("stream", RoomsStream)
		r.URL.RawQuery = q.Encode()
	}
	es.server.ServeHTTP(w, r)
}

// Close stops publishing and disconnects every subscriber.
func (es *EventStream) Close() {
	es.unsubscribe()
	es.server.Close()
}
