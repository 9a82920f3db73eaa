/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package srv

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

func TestMonitor(t *testing.T) {
	stats := thinkgear.Stats{Frames: 7}
	now := time.Unix(1600000000, 0)
	m := NewMonitor(func() thinkgear.Stats { return stats })
	m.Now = func() time.Time { return now }

	for _, r := range []thinkgear.Record{
		thinkgear.HeadsetConnected{ID: 0xA26C},
		thinkgear.PoorSignal{Quality: 26},
		thinkgear.Attention{Value: 48},
		thinkgear.Meditation{Value: 61},
		thinkgear.RawValue{Value: -12},
		thinkgear.AsicEeg{Delta: 1, MidGamma: 8},
		thinkgear.PacketUndefined{Value: 0x55},
	} {
		m.Handle(r)
	}

	s := m.Snapshot()
	if !s.Connected || s.HeadsetID != "a26c" {
		t.Errorf("Expected connected headset a26c, got %+v", s)
	}
	if s.ESense.PoorSignal == nil || *s.ESense.PoorSignal != 26 {
		t.Errorf("Expected poor signal 26, got %v", s.ESense.PoorSignal)
	}
	if s.ESense.Attention == nil || *s.ESense.Attention != 48 {
		t.Errorf("Expected attention 48, got %v", s.ESense.Attention)
	}
	if s.ESense.Meditation == nil || *s.ESense.Meditation != 61 {
		t.Errorf("Expected meditation 61, got %v", s.ESense.Meditation)
	}
	if s.ESense.Raw == nil || *s.ESense.Raw != -12 {
		t.Errorf("Expected raw -12, got %v", s.ESense.Raw)
	}
	if s.ESense.Bands == nil || s.ESense.Bands.MidGamma != 8 {
		t.Errorf("Expected band power, got %v", s.ESense.Bands)
	}
	if s.ESense.Blink != nil {
		t.Errorf("Expected no blink, got %v", *s.ESense.Blink)
	}
	if s.Stats.Frames != 7 || !s.Updated.Equal(now) {
		t.Errorf("Unexpected stats or time %+v %v", s.Stats, s.Updated)
	}

	stats.ChecksumFailures = 2
	m.SyncStats()
	if got := m.Snapshot().Stats.ChecksumFailures; got != 2 {
		t.Errorf("Expected 2 checksum failures, got %d", got)
	}

	m.Handle(thinkgear.HeadsetDisconnected{ID: 0xA26C})
	s = m.Snapshot()
	if s.Connected || s.ESense.Attention != nil {
		t.Errorf("Expected values cleared on disconnect, got %+v", s)
	}
}

func newTestState(t *testing.T) *HeadsetState {
	t.Helper()
	state, err := NewHeadsetState(filepath.Join(t.TempDir(), "headsets.db"))
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

func TestHeadsetState(t *testing.T) {
	state := newTestState(t)
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	state.Now = func() time.Time { return now }

	state.Handle(thinkgear.HeadsetConnected{ID: 0xA26C})
	state.Handle(thinkgear.Attention{Value: 1})
	now = now.Add(time.Hour)
	state.Handle(thinkgear.HeadsetConnected{ID: 0x1234})
	now = now.Add(time.Hour)
	state.Handle(thinkgear.HeadsetConnected{ID: 0xA26C})

	h, err := state.GetHeadset(0xA26C)
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	if h == nil || h.Connects != 2 {
		t.Fatalf("Expected 2 connects, got %+v", h)
	}
	if !h.FirstSeen.Equal(now.Add(-2*time.Hour)) || !h.LastSeen.Equal(now) {
		t.Errorf("Unexpected first/last seen %v %v", h.FirstSeen, h.LastSeen)
	}

	missing, err := state.GetHeadset(0xFFFF)
	if err != nil || missing != nil {
		t.Errorf("Expected no headset, got %+v %v", missing, err)
	}

	all, err := state.GetAllHeadsets()
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	if len(all) != 2 || all[0].ID != "a26c" || all[1].ID != "1234" {
		t.Errorf("Expected a26c then 1234, got %+v", all)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.Handle(thinkgear.HeadsetConnected{ID: 1})
	m.Handle(thinkgear.Attention{Value: 40})
	m.Handle(thinkgear.Attention{Value: 42})
	m.Handle(thinkgear.AsicEeg{Theta: 900})

	if got := testutil.ToFloat64(m.Records.WithLabelValues("attention")); got != 2 {
		t.Errorf("Expected 2 attention records, got %v", got)
	}
	if got := testutil.ToFloat64(m.Attention); got != 42 {
		t.Errorf("Expected attention 42, got %v", got)
	}
	if got := testutil.ToFloat64(m.Connected); got != 1 {
		t.Errorf("Expected connected gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.BandPower.WithLabelValues("theta")); got != 900 {
		t.Errorf("Expected theta 900, got %v", got)
	}

	m.ObserveStats(thinkgear.Stats{Frames: 3, ChecksumFailures: 1})
	m.ObserveStats(thinkgear.Stats{Frames: 5, ChecksumFailures: 1, LengthViolations: 2})
	if got := testutil.ToFloat64(m.Frames); got != 5 {
		t.Errorf("Expected 5 frames, got %v", got)
	}
	if got := testutil.ToFloat64(m.ChecksumFailures); got != 1 {
		t.Errorf("Expected 1 checksum failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.LengthViolations); got != 2 {
		t.Errorf("Expected 2 length violations, got %v", got)
	}
}

type fakeConn struct {
	subjects []string
	data     [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.data = append(f.data, data)
	return nil
}

func TestPublisher(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "rustymind")
	p.Skip["raw_value"] = true

	p.Handle(thinkgear.Attention{Value: 40})
	p.Handle(thinkgear.RawValue{Value: 3})
	p.Handle(thinkgear.HeadsetConnected{ID: 0xA26C})

	expected := []string{"rustymind.attention", "rustymind.headset_connected"}
	if strings.Join(conn.subjects, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected subjects %v, got %v", expected, conn.subjects)
	}
	if string(conn.data[0]) != `{"type":"attention","data":{"value":40}}` {
		t.Errorf("Unexpected payload %s", conn.data[0])
	}

	boom := errors.New("boom")
	conn.err = boom
	err := p.Publish(thinkgear.Meditation{Value: 1})
	var pubErr ErrPublish
	if !errors.As(err, &pubErr) || !errors.Is(err, boom) || pubErr.Subject != "rustymind.meditation" {
		t.Errorf("Expected ErrPublish wrapping boom, got %v", err)
	}
}

func TestApiServer(t *testing.T) {
	monitor := NewMonitor(nil)
	monitor.Handle(thinkgear.HeadsetConnected{ID: 0xA26C})
	monitor.Handle(thinkgear.Attention{Value: 40})
	state := newTestState(t)
	state.Handle(thinkgear.HeadsetConnected{ID: 0xA26C})
	metrics := NewMetrics()
	metrics.Handle(thinkgear.Attention{Value: 40})

	s := NewApiServer(context.Background(), "127.0.0.1:0", monitor, state, metrics)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{path: "/api/status", status: http.StatusOK, contains: `"headset_id":"a26c"`},
		{path: "/api/esense", status: http.StatusOK, contains: `"attention":40`},
		{path: "/api/headsets", status: http.StatusOK, contains: `"connects":1`},
		{path: "/api/headsets/a26c", status: http.StatusOK, contains: `"id":"a26c"`},
		{path: "/api/headsets/0001", status: http.StatusNotFound},
		{path: "/api/unknown", status: http.StatusNotFound},
		{path: "/metrics", status: http.StatusOK, contains: `rustymind_attention 40`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.contains == "" {
				return
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("Expected body to contain %s, got %s", tt.contains, body)
			}
		})
	}
}

func TestApiServerWithoutState(t *testing.T) {
	s := NewApiServer(context.Background(), "127.0.0.1:0", NewMonitor(nil), nil, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/headsets", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/status", nil))
	var snapshot Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snapshot); err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	if snapshot.Connected {
		t.Errorf("Expected disconnected snapshot")
	}
}
