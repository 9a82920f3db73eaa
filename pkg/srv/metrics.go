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
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

const MetricsNamespace = "rustymind"

// Metrics contains the Prometheus metrics of a session
type Metrics struct {
	Registry *prometheus.Registry

	// parser metrics
	Records          *prometheus.CounterVec
	Frames           prometheus.Counter
	ChecksumFailures prometheus.Counter
	LengthViolations prometheus.Counter
	TruncatedFrames  prometheus.Counter
	Resyncs          prometheus.Counter

	// headset metrics
	Connected  prometheus.Gauge
	PoorSignal prometheus.Gauge
	Attention  prometheus.Gauge
	Meditation prometheus.Gauge
	BandPower  *prometheus.GaugeVec

	mu   sync.Mutex
	last thinkgear.Stats
}

// NewMetrics creates the metrics on their own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "records_total",
			Help:      "Total number of decoded records by kind",
		}, []string{"kind"}),
		Frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "frames_total",
			Help:      "Total number of frames with a valid checksum",
		}),
		ChecksumFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "checksum_failures_total",
			Help:      "Total number of frames dropped because of a checksum mismatch",
		}),
		LengthViolations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "length_violations_total",
			Help:      "Total number of frames dropped because of an invalid payload length",
		}),
		TruncatedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "truncated_frames_total",
			Help:      "Total number of frames whose last record was cut short",
		}),
		Resyncs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "resyncs_total",
			Help:      "Total number of times the parser lost frame sync",
		}),
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "headset_connected",
			Help:      "1 when the dongle reports a connected headset",
		}),
		PoorSignal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "poor_signal",
			Help:      "Latest poor signal quality, 0 is good and 200 is no skin contact",
		}),
		Attention: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "attention",
			Help:      "Latest eSense attention value",
		}),
		Meditation: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "meditation",
			Help:      "Latest eSense meditation value",
		}),
		BandPower: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "band_power",
			Help:      "Latest ASIC EEG band power",
		}, []string{"band"}),
	}
}

var bandNames = [thinkgear.AsicEegBands]string{
	"delta", "theta", "low_alpha", "high_alpha", "low_beta", "high_beta", "low_gamma", "mid_gamma",
}

// Handle updates the metrics for one record
func (m *Metrics) Handle(r thinkgear.Record) {
	m.Records.WithLabelValues(r.Kind()).Inc()
	switch r := r.(type) {
	case thinkgear.HeadsetConnected:
		m.Connected.Set(1)
	case thinkgear.HeadsetDisconnected, thinkgear.Standby:
		m.Connected.Set(0)
	case thinkgear.PoorSignal:
		m.PoorSignal.Set(float64(r.Quality))
	case thinkgear.Attention:
		m.Attention.Set(float64(r.Value))
	case thinkgear.Meditation:
		m.Meditation.Set(float64(r.Value))
	case thinkgear.AsicEeg:
		for i, v := range r.Bands() {
			m.BandPower.WithLabelValues(bandNames[i]).Set(float64(v))
		}
	}
}

// ObserveStats adds the parser counters accumulated since the previous call
func (m *Metrics) ObserveStats(s thinkgear.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	add := func(c prometheus.Counter, cur, prev uint64) {
		if cur > prev {
			c.Add(float64(cur - prev))
		}
	}
	add(m.Frames, s.Frames, m.last.Frames)
	add(m.ChecksumFailures, s.ChecksumFailures, m.last.ChecksumFailures)
	add(m.LengthViolations, s.LengthViolations, m.last.LengthViolations)
	add(m.TruncatedFrames, s.TruncatedFrames, m.last.TruncatedFrames)
	add(m.Resyncs, s.Resyncs, m.last.Resyncs)
	m.last = s
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
