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
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"github.com/junjunjd/rustymind/pkg/log"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

const (
	HeadsetBucket = "headsets"
)

// Headset describes a headset the dongle has connected to
type Headset struct {
	ID        string    `json:"id"`
	FirstSeen time.Time `json:"firstSeen"`
	LastSeen  time.Time `json:"lastSeen"`
	Connects  uint64    `json:"connects"`
}

// HeadsetState is the registry of headsets seen by the dongle
type HeadsetState struct {
	DB  *bbolt.DB
	Now func() time.Time
}

func NewHeadsetState(path string) (*HeadsetState, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("error opening headset database %s: %w", path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(HeadsetBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &HeadsetState{
		DB:  db,
		Now: time.Now,
	}, nil
}

// Close ...
func (s *HeadsetState) Close() error {
	return s.DB.Close()
}

// HeadsetKey formats a headset ID the way it is passed to the dongle
func HeadsetKey(id uint16) string {
	return fmt.Sprintf("%04x", id)
}

func parseHeadsetKey(key string) (uint16, error) {
	id, err := strconv.ParseUint(key, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(id), nil
}

// Handle records HeadsetConnected events and ignores everything else
func (s *HeadsetState) Handle(r thinkgear.Record) {
	connected, ok := r.(thinkgear.HeadsetConnected)
	if !ok {
		return
	}
	if err := s.Seen(connected.ID); err != nil {
		log.Error("Error while saving headset %s: %s", HeadsetKey(connected.ID), err)
	}
}

// Seen registers a connection to the headset
func (s *HeadsetState) Seen(id uint16) error {
	key := HeadsetKey(id)
	log.Debug("Registering headset: %s", key)
	now := s.Now().UTC()
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(HeadsetBucket))
		if b == nil {
			return ErrBucketNotFound{Name: HeadsetBucket}
		}
		h := &Headset{ID: key, FirstSeen: now}
		if data := b.Get([]byte(key)); data != nil {
			if err := yaml.Unmarshal(data, h); err != nil {
				return err
			}
		}
		h.LastSeen = now
		h.Connects++
		data, err := yaml.Marshal(h)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

// GetHeadset returns nil when the headset has never been seen
func (s *HeadsetState) GetHeadset(id uint16) (*Headset, error) {
	var h *Headset
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(HeadsetBucket))
		if b == nil {
			return ErrBucketNotFound{Name: HeadsetBucket}
		}
		data := b.Get([]byte(HeadsetKey(id)))
		if data == nil {
			return nil
		}
		h = &Headset{}
		return yaml.Unmarshal(data, h)
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetAllHeadsets returns the headsets most recently seen first
func (s *HeadsetState) GetAllHeadsets() ([]*Headset, error) {
	log.Debug("Getting all headsets")
	headsets := []*Headset{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(HeadsetBucket))
		if b == nil {
			return ErrBucketNotFound{Name: HeadsetBucket}
		}
		return b.ForEach(func(k, v []byte) error {
			h := &Headset{}
			if err := yaml.Unmarshal(v, h); err != nil {
				log.Error("Error while unmarshalling headset %s: %s", k, err)
				return err
			}
			headsets = append(headsets, h)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	sort.SliceStable(headsets, func(i, j int) bool {
		return headsets[i].LastSeen.After(headsets[j].LastSeen)
	})
	return headsets, nil
}
