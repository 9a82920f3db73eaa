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

package device

import (
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

type fakePort struct {
	written [][]byte
	reads   [][]byte
	closed  bool
}

func (f *fakePort) Write(buf []byte) (int, error) {
	f.written = append(f.written, append([]byte(nil), buf...))
	return len(buf), nil
}

func (f *fakePort) Read(buf []byte) (int, error) {
	if len(f.reads) == 0 {
		return 0, nil
	}
	n := copy(buf, f.reads[0])
	f.reads = f.reads[1:]
	return n, nil
}

func (f *fakePort) Close() error {
	f.closed = true
	return nil
}

func TestParseHeadsetID(t *testing.T) {
	tests := []struct {
		input       string
		expected    []byte
		expectError bool
	}{
		{input: "", expected: []byte{0xC2}},
		{input: "c2", expected: []byte{0xC2}},
		{input: "a26c", expected: []byte{0xA2, 0x6C}},
		{input: "0xA26C", expected: []byte{0xA2, 0x6C}},
		{input: " f64f ", expected: []byte{0xF6, 0x4F}},
		{input: "a2", expectError: true},
		{input: "a26c01", expectError: true},
		{input: "zz", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseHeadsetID(tt.input)
			if tt.expectError {
				var bad ErrBadHeadsetID
				if !errors.As(err, &bad) {
					t.Errorf("Expected ErrBadHeadsetID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected % x, got % x", tt.expected, result)
			}
		})
	}
}

func TestConnectHandshake(t *testing.T) {
	tests := []struct {
		name     string
		headset  []byte
		expected [][]byte
	}{
		{
			name:     "explicit headset",
			headset:  []byte{0xA2, 0x6C},
			expected: [][]byte{{0xC1}, {0xC0}, {0xA2, 0x6C}},
		},
		{
			name:     "auto-connect",
			headset:  []byte{0xC2},
			expected: [][]byte{{0xC1}, {0xC2}},
		},
		{
			name:     "empty headset is auto-connect",
			headset:  nil,
			expected: [][]byte{{0xC1}, {0xC2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &fakePort{reads: [][]byte{{0xAA}}}
			d := NewDongle("fake", port)
			if err := d.Connect(tt.headset); err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !reflect.DeepEqual(port.written, tt.expected) {
				t.Errorf("Expected writes % x, got % x", tt.expected, port.written)
			}
		})
	}
}

func TestConnectSilentDongle(t *testing.T) {
	port := &fakePort{}
	d := NewDongle("fake", port)
	err := d.Connect([]byte{0xA2, 0x6C})
	var handshake ErrHandshake
	if !errors.As(err, &handshake) {
		t.Fatalf("Expected ErrHandshake, got %v", err)
	}
	if len(port.written) != 1 {
		t.Errorf("Expected only the disconnect command, got % x", port.written)
	}
}

func TestConnectBadHeadsetLength(t *testing.T) {
	port := &fakePort{reads: [][]byte{{0xAA}}}
	d := NewDongle("fake", port)
	var bad ErrBadHeadsetID
	if err := d.Connect([]byte{0x01, 0x02, 0x03}); !errors.As(err, &bad) {
		t.Errorf("Expected ErrBadHeadsetID, got %v", err)
	}
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time           { return c.now }
func (c *fakeClock) Sleep(time.Duration)      {}
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMock() (*MockDongle, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1600000000, 0)}
	m := NewMockDongle()
	m.Now = clock.Now
	m.Sleep = clock.Sleep
	return m, clock
}

func drain(t *testing.T, r io.Reader) []thinkgear.Record {
	t.Helper()
	p := thinkgear.NewParser()
	var records []thinkgear.Record
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if err != nil {
			t.Fatalf("Expected no error but got: %v", err)
		}
		if n == 0 {
			break
		}
		for _, b := range buf[:n] {
			if rs, ok := p.Feed(b); ok {
				records = append(records, rs...)
			}
		}
	}
	if p.Stats().ChecksumFailures != 0 || p.Stats().TruncatedFrames != 0 {
		t.Errorf("Unexpected parser anomalies %+v", p.Stats())
	}
	return records
}

func TestMockDongleHandshake(t *testing.T) {
	m, _ := newTestMock()
	d := NewDongle(PortMock, m)
	if err := d.Connect([]byte{0x12, 0x34}); err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	// the handshake consumed the first sync byte of the standby frame
	records := drain(t, d)
	expected := []thinkgear.Record{thinkgear.HeadsetConnected{ID: 0x1234}}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Expected records %#v, got %#v", expected, records)
	}
}

func TestMockDongleGeneratesOneSecond(t *testing.T) {
	m, clock := newTestMock()
	if _, err := m.Write([]byte{CommandAutoConnect}); err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	drain(t, m)

	clock.Advance(time.Second)
	records := drain(t, m)

	counts := map[string]int{}
	for _, r := range records {
		counts[r.Kind()]++
	}
	if counts["raw_value"] != RawSampleRate {
		t.Errorf("Expected %d raw values, got %d", RawSampleRate, counts["raw_value"])
	}
	for _, kind := range []string{"poor_signal", "asic_eeg", "attention", "meditation"} {
		if counts[kind] != 1 {
			t.Errorf("Expected 1 %s record, got %d", kind, counts[kind])
		}
	}
}

func TestMockDongleDisconnect(t *testing.T) {
	m, clock := newTestMock()
	m.Write([]byte{CommandAutoConnect})
	drain(t, m)
	m.Write([]byte{CommandDisconnect})
	records := drain(t, m)
	expected := []thinkgear.Record{thinkgear.HeadsetDisconnected{ID: MockHeadsetID}, thinkgear.Standby{}}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Expected records %#v, got %#v", expected, records)
	}

	clock.Advance(time.Second)
	if records := drain(t, m); len(records) != 0 {
		t.Errorf("Expected no data while disconnected, got %d records", len(records))
	}
}

func TestMockDongleClose(t *testing.T) {
	m, _ := newTestMock()
	m.Close()
	if _, err := m.Read(make([]byte, 8)); err != io.EOF {
		t.Errorf("Expected io.EOF after close, got %v", err)
	}
}
