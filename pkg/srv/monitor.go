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
	"sync"
	"time"

	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

// ESense is the latest eSense and band power reading
type ESense struct {
	PoorSignal *uint8             `json:"poor_signal,omitempty"`
	Attention  *uint8             `json:"attention,omitempty"`
	Meditation *uint8             `json:"meditation,omitempty"`
	Blink      *uint8             `json:"blink,omitempty"`
	Bands      *thinkgear.AsicEeg `json:"bands,omitempty"`
	Raw        *int16             `json:"raw,omitempty"`
}

// Snapshot is the state of the session at one moment
type Snapshot struct {
	Connected bool            `json:"connected"`
	HeadsetID string          `json:"headset_id,omitempty"`
	Standby   bool            `json:"standby"`
	ESense    ESense          `json:"esense"`
	Stats     thinkgear.Stats `json:"stats"`
	Updated   time.Time       `json:"updated"`
}

// Monitor keeps the latest value of each record kind. Handle and
// SyncStats must run on the goroutine feeding the parser, Snapshot can be
// called from any goroutine.
type Monitor struct {
	mu    sync.RWMutex
	state Snapshot
	stats func() thinkgear.Stats
	Now   func() time.Time
}

// NewMonitor creates a monitor. stats may be nil.
func NewMonitor(stats func() thinkgear.Stats) *Monitor {
	return &Monitor{
		stats: stats,
		Now:   time.Now,
	}
}

func u8(v uint8) *uint8 { return &v }

func (m *Monitor) Handle(r thinkgear.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &m.state
	if m.stats != nil {
		s.Stats = m.stats()
	}
	switch r := r.(type) {
	case thinkgear.HeadsetConnected:
		s.Connected = true
		s.Standby = false
		s.HeadsetID = HeadsetKey(r.ID)
	case thinkgear.HeadsetDisconnected:
		s.Connected = false
		s.ESense = ESense{}
	case thinkgear.Standby:
		s.Standby = true
	case thinkgear.PoorSignal:
		s.ESense.PoorSignal = u8(r.Quality)
	case thinkgear.Attention:
		s.ESense.Attention = u8(r.Value)
	case thinkgear.Meditation:
		s.ESense.Meditation = u8(r.Value)
	case thinkgear.Blink:
		s.ESense.Blink = u8(r.Strength)
	case thinkgear.AsicEeg:
		bands := r
		s.ESense.Bands = &bands
	case thinkgear.RawValue:
		raw := r.Value
		s.ESense.Raw = &raw
	default:
		return
	}
	s.Updated = m.Now()
}

// SyncStats copies the parser counters, used when a frame is dropped and
// no record reaches Handle
func (m *Monitor) SyncStats() {
	if m.stats == nil {
		return
	}
	m.mu.Lock()
	m.state.Stats = m.stats()
	m.mu.Unlock()
}

// Snapshot returns a copy of the current state
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// ESense returns a copy of the latest eSense values
func (m *Monitor) ESense() ESense {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ESense
}
