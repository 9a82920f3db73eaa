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
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/junjunjd/rustymind/pkg/log"
)

// ApiServer exposes the session state over HTTP
type ApiServer struct {
	context.Context
	*mux.Router
	Addr    string
	monitor *Monitor
	state   *HeadsetState
	metrics *Metrics
}

// NewApiServer creates the API server. state and metrics may be nil, the
// corresponding routes then answer 503 and 404.
func NewApiServer(ctx context.Context, addr string, monitor *Monitor, state *HeadsetState, metrics *Metrics) *ApiServer {
	log.Info("Initializing API server with address: %s", addr)
	s := &ApiServer{
		Context: ctx,
		Addr:    addr,
		monitor: monitor,
		state:   state,
		metrics: metrics,
	}
	s.configureRouter()
	return s
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/status", s.handleStatus()).Methods("GET")
	subRouter.HandleFunc("/esense", s.handleESense()).Methods("GET")
	subRouter.HandleFunc("/headsets", s.handleHeadsets()).Methods("GET")
	subRouter.HandleFunc("/headsets/{id:[0-9a-fA-F]{4}}", s.handleHeadset()).Methods("GET")
	if s.metrics != nil {
		s.Router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}

// Handler returns the router wrapped in the access log
func (s *ApiServer) Handler() http.Handler {
	return handlers.LoggingHandler(log.Writer(), s.Router)
}

// Run serves until the context is done
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s", s.Addr)
	httpServer := &http.Server{
		Handler:           s.Handler(),
		Addr:              s.Addr,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-s.Context.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("Error while shutting down API server: %s", err)
		}
	}()
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling status request")
		writeJSON(w, s.monitor.Snapshot())
	}
}

func (s *ApiServer) handleESense() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling esense request")
		writeJSON(w, s.monitor.ESense())
	}
}

func (s *ApiServer) handleHeadsets() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling headsets request")
		if s.state == nil {
			http.Error(w, "Headset registry is not available", http.StatusServiceUnavailable)
			return
		}
		headsets, err := s.state.GetAllHeadsets()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, headsets)
	}
}

func (s *ApiServer) handleHeadset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		if s.state == nil {
			http.Error(w, "Headset registry is not available", http.StatusServiceUnavailable)
			return
		}
		id, err := parseHeadsetKey(vars["id"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h, err := s.state.GetHeadset(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if h == nil {
			http.Error(w, "Headset "+vars["id"]+" not found", http.StatusNotFound)
			return
		}
		writeJSON(w, h)
	}
}
