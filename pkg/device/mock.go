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
	"io"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/junjunjd/rustymind/pkg/log"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

const (
	// RawSampleRate is the number of raw wave samples per second
	RawSampleRate = 512
	// MockHeadsetID is reported by the mock dongle on auto-connect
	MockHeadsetID = 0xA26C

	mockAlphaFreqHz   = 10.0
	mockAlphaAmp      = 180.0
	mockNoiseAmp      = 25.0
	mockESenseFreqHz  = 0.02
	mockReadInterval  = time.Second / RawSampleRate
	mockMaxCatchUpSec = 1
)

// MockDongle generates the byte stream of a dongle connected to a headset:
// RawSampleRate raw samples per second and one eSense frame per second.
// It answers connection commands like the real dongle.
type MockDongle struct {
	mu        sync.Mutex
	pending   []byte
	connected bool
	pendingID []byte
	headsetID uint16
	start     time.Time
	samples   int
	closed    bool
	rand      *rand.Rand

	// Now and Sleep can be replaced to drive the generator from a fake clock
	Now   func() time.Time
	Sleep func(time.Duration)
}

var _ io.ReadWriteCloser = &MockDongle{}

func NewMockDongle() *MockDongle {
	return &MockDongle{
		rand:  rand.New(rand.NewSource(1)),
		Now:   time.Now,
		Sleep: time.Sleep,
	}
}

// Write accepts dongle commands
func (m *MockDongle) Write(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	for _, b := range buf {
		if m.pendingID != nil {
			m.pendingID = append(m.pendingID, b)
			if len(m.pendingID) == HeadsetIDLength {
				m.connect(uint16(m.pendingID[0])<<8 | uint16(m.pendingID[1]))
				m.pendingID = nil
			}
			continue
		}
		switch b {
		case CommandDisconnect:
			if m.connected {
				m.queue(thinkgear.HeadsetDisconnected{ID: m.headsetID})
			}
			m.connected = false
			m.queue(thinkgear.Standby{})
		case CommandAutoConnect:
			m.queue(thinkgear.FindHeadset{})
			m.connect(MockHeadsetID)
		case CommandConnect:
			m.pendingID = make([]byte, 0, HeadsetIDLength)
		default:
			log.Debug("Mock dongle ignores command 0x%02x", b)
		}
	}
	return len(buf), nil
}

// Read returns generated frames. Like a serial port with a read timeout it
// returns no data when nothing is due.
func (m *MockDongle) Read(buf []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, io.EOF
	}
	if len(m.pending) == 0 {
		m.mu.Unlock()
		m.Sleep(mockReadInterval)
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return 0, io.EOF
		}
		m.generate()
	}
	n := copy(buf, m.pending)
	m.pending = m.pending[n:]
	m.mu.Unlock()
	return n, nil
}

func (m *MockDongle) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.pending = nil
	return nil
}

func (m *MockDongle) connect(id uint16) {
	m.connected = true
	m.headsetID = id
	m.start = m.Now()
	m.samples = 0
	m.queue(thinkgear.HeadsetConnected{ID: id})
}

func (m *MockDongle) queue(records ...thinkgear.Record) {
	var payload []byte
	for _, r := range records {
		payload = thinkgear.Encode(payload, r)
	}
	frame, err := thinkgear.EncodeFrame(payload)
	if err != nil {
		log.Error("Mock dongle can not encode frame: %s", err)
		return
	}
	m.pending = append(m.pending, frame...)
}

// generate queues every frame that is due since the headset was connected
func (m *MockDongle) generate() {
	if !m.connected {
		return
	}
	due := int(m.Now().Sub(m.start) * RawSampleRate / time.Second)
	if due-m.samples > mockMaxCatchUpSec*RawSampleRate {
		m.samples = due - mockMaxCatchUpSec*RawSampleRate
	}
	for m.samples < due {
		m.samples++
		m.queue(thinkgear.RawValue{Value: m.rawSample(m.samples)})
		if m.samples%RawSampleRate == 0 {
			m.queue(m.eSense(m.samples / RawSampleRate)...)
		}
	}
}

func (m *MockDongle) rawSample(n int) int16 {
	t := float64(n) / RawSampleRate
	v := mockAlphaAmp*math.Sin(2*math.Pi*mockAlphaFreqHz*t) + mockNoiseAmp*(m.rand.Float64()*2-1)
	return int16(v)
}

func (m *MockDongle) eSense(second int) []thinkgear.Record {
	t := float64(second)
	band := func(base float64) uint32 {
		return uint32(base * (0.5 + m.rand.Float64()))
	}
	return []thinkgear.Record{
		thinkgear.PoorSignal{Quality: 0},
		thinkgear.AsicEeg{
			Delta:     band(400000),
			Theta:     band(90000),
			LowAlpha:  band(30000),
			HighAlpha: band(25000),
			LowBeta:   band(15000),
			HighBeta:  band(12000),
			LowGamma:  band(5000),
			MidGamma:  band(3000),
		},
		thinkgear.Attention{Value: uint8(50 + 40*math.Sin(2*math.Pi*mockESenseFreqHz*t))},
		thinkgear.Meditation{Value: uint8(50 + 40*math.Cos(2*math.Pi*mockESenseFreqHz*t))},
	}
}
