package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/luhtfiimanal/go-radar-station/station"
)

func newTestServer(t *testing.T) (*Server, *station.Snapshot, *station.Stats) {
	t.Helper()
	snapshot := station.NewSnapshot()
	stats := station.NewStats(time.Now())
	return New(snapshot, stats, NewHub()), snapshot, stats
}

func TestHandleData_InitialZeroReading(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/data", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t,
		`{"angle":0,"distance":0,"humidity":0,"temperatureC":0,"temperatureF":0}`,
		rec.Body.String())
}

func TestHandleData_LatestReading(t *testing.T) {
	srv, snapshot, _ := newTestServer(t)
	snapshot.Publish(station.Reading{Angle: 45, Distance: 12.5, Humidity: 60.2, TemperatureC: 22.1, TemperatureF: 71.8})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/data", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got station.Reading
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, station.Reading{Angle: 45, Distance: 12.5, Humidity: 60.2, TemperatureC: 22.1, TemperatureF: 71.8}, got)
}

func TestHandleStats(t *testing.T) {
	srv, _, stats := newTestServer(t)
	stats.LineReceived()
	stats.MalformedLine()

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got station.StatsSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, uint64(1), got.LinesTotal)
	require.Equal(t, uint64(1), got.MalformedLines)
	require.Equal(t, uint64(0), got.ReadingsPublished)
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleIndex(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Radar Station")
}

func TestHub_BroadcastsToWebsocketClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	snapshot := station.NewSnapshot()
	srv := New(snapshot, station.NewStats(time.Now()), hub)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	// The hub registers the client inside the handler goroutine; wait for it.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, time.Second, 10*time.Millisecond)

	want := station.Reading{Angle: 45, Distance: 12.5, Humidity: 60.2, TemperatureC: 22.1, TemperatureF: 71.8}
	hub.Notify(want)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var got station.Reading
	require.NoError(t, json.Unmarshal(payload, &got))
	require.Equal(t, want, got)
}

func TestHub_NotifyNeverBlocks(t *testing.T) {
	hub := NewHub() // Run not started, buffer will fill

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.Notify(station.Reading{Angle: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full broadcast buffer")
	}
}
