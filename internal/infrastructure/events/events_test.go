package events

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logipro/internal/domain/tracking"
)

type recordingClient struct {
	topic string
	qos   byte
	body  interface{}
	err   error
}

func (r *recordingClient) PublishJSON(_ context.Context, topic string, qos byte, v interface{}) error {
	r.topic, r.qos, r.body = topic, qos, v
	return r.err
}

func TestMQTTPublisherTopic(t *testing.T) {
	rec := &recordingClient{}
	p := NewMQTTPublisher(rec, "/logipro/", 1)

	event := tracking.StatusEvent{JobNumber: 1001, Status: "IN_TRANSIT"}
	require.NoError(t, p.PublishStatus(context.Background(), event))

	assert.Equal(t, "logipro/jobs/1001/status", rec.topic)
	assert.Equal(t, byte(1), rec.qos)
	assert.Equal(t, event, rec.body)
}

func TestFanoutJoinsErrors(t *testing.T) {
	failing := &recordingClient{err: errors.New("broker down")}
	ok := &recordingClient{}
	f := Fanout{NewMQTTPublisher(failing, "a", 0), NewMQTTPublisher(ok, "b", 0)}

	err := f.PublishStatus(context.Background(), tracking.StatusEvent{JobNumber: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, "b/jobs/7/status", ok.topic)
}

func TestHubDeliversToSubscribedJobOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, 1001)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers(1001) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.PublishStatus(ctx, tracking.StatusEvent{JobNumber: 1002, Status: "DELIVERED"}))
	require.NoError(t, hub.PublishStatus(ctx, tracking.StatusEvent{JobNumber: 1001, Status: "IN_TRANSIT"}))

	var got tracking.StatusEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, int64(1001), got.JobNumber)
	assert.Equal(t, "IN_TRANSIT", got.Status)
}

func TestHubStopDoesNotStrandSockets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)
	cancel()

	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	left := make(chan struct{})
	go func() {
		// More leaves than the unregister buffer holds.
		for i := 0; i < 64; i++ {
			hub.leave(&client{topic: "1001", send: make(chan []byte, 1)})
		}
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after shutdown")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, 1001)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Zero(t, hub.Subscribers(1001))
}
