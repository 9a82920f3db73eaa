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

package command

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/junjunjd/rustymind/pkg/config"
	"github.com/junjunjd/rustymind/pkg/device"
	"github.com/junjunjd/rustymind/pkg/log"
	"github.com/junjunjd/rustymind/pkg/srv"
	"github.com/junjunjd/rustymind/pkg/stream"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

// Session wires a dongle to the parser and the session services
type Session struct {
	*config.Config
	Dongle    *device.Dongle
	Parser    *thinkgear.Parser
	Reader    *stream.Reader
	Monitor   *srv.Monitor
	Metrics   *srv.Metrics
	State     *srv.HeadsetState
	Publisher *srv.Publisher
	Api       *srv.ApiServer

	closers []func() error
}

// NewSession builds the pipeline around an opened and connected dongle.
// The headset registry and the publisher are optional: failing to open them
// is logged and the session goes on without them.
func NewSession(ctx context.Context, cfg *config.Config, dongle *device.Dongle, out io.Writer) *Session {
	s := &Session{
		Config: cfg,
		Dongle: dongle,
		Parser: thinkgear.NewParser(),
	}
	s.Reader = stream.NewReader(dongle, s.Parser, cfg.ReadBufferSize)
	s.Monitor = srv.NewMonitor(s.Parser.Stats)
	s.Metrics = srv.NewMetrics()

	s.Parser.OnError = func(err error) {
		log.Debug("Frame error: %s", err)
		s.Monitor.SyncStats()
		s.Metrics.ObserveStats(s.Parser.Stats())
	}

	s.Reader.Handle(s.Monitor.Handle)
	s.Reader.Handle(s.Metrics.Handle)
	s.Reader.Handle(func(thinkgear.Record) {
		s.Metrics.ObserveStats(s.Parser.Stats())
	})

	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			log.Warning("Can not create headset database directory: %s", err)
		} else if state, err := srv.NewHeadsetState(cfg.DBPath); err != nil {
			log.Warning("Headset registry disabled: %s", err)
		} else {
			s.State = state
			s.Reader.Handle(state.Handle)
			s.closers = append(s.closers, state.Close)
		}
	}

	if cfg.NatsConfig != nil && cfg.NatsConfig.URL != "" {
		nc, err := srv.ConnectNats(cfg.NatsConfig.URL)
		if err != nil {
			log.Warning("Publishing disabled: %s", err)
		} else {
			s.Publisher = srv.NewPublisher(nc, cfg.SubjectPrefix)
			s.Reader.Handle(s.Publisher.Handle)
			s.closers = append(s.closers, func() error {
				return nc.Drain()
			})
		}
	}

	if cfg.Echo && out != nil {
		s.Reader.Handle(Echo(out))
	}

	if cfg.ApiConfig != nil && !cfg.ApiConfig.Disabled {
		s.Api = srv.NewApiServer(ctx, cfg.ApiAddr(), s.Monitor, s.State, s.Metrics)
	}
	return s
}

// Run streams until the dongle is exhausted or ctx is done
func (s *Session) Run(ctx context.Context) error {
	if s.Api != nil {
		go func() {
			if err := s.Api.Run(); err != nil {
				log.Error("API server stopped: %s", err)
			}
		}()
	}
	err := s.Reader.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close disconnects the headset and releases the dongle and the services
func (s *Session) Close() error {
	if err := s.Dongle.Disconnect(); err != nil {
		log.Warning("Error while disconnecting headset: %s", err)
	}
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	if err := s.Dongle.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// StartSession opens the dongle from the config, connects the headset and
// streams until ctx is cancelled
func StartSession(ctx context.Context, cfg *config.Config, out io.Writer) error {
	headset, err := device.ParseHeadsetID(cfg.HeadsetID)
	if err != nil {
		return err
	}
	dongle, err := device.Open(cfg.DongleConfig.Path, cfg.BaudRate, cfg.ReadTimeout())
	if err != nil {
		return err
	}
	if err := dongle.Connect(headset); err != nil {
		dongle.Close()
		return err
	}
	log.Info("Connected to dongle %s", dongle.Path)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s := NewSession(ctx, cfg, dongle, out)
	defer s.Close()
	return s.Run(ctx)
}
