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
	"errors"
	"fmt"

	"github.com/imroc/req"

	"github.com/junjunjd/rustymind/pkg/srv"
)

// ApiClient talks to the API server of a running session
type ApiClient struct {
	ApiPrefix string
}

func NewApiClient(addr string) *ApiClient {
	return &ApiClient{
		ApiPrefix: fmt.Sprintf("http://%s/api", addr),
	}
}

func (c *ApiClient) get(path string, v interface{}) error {
	r, err := req.Get(fmt.Sprintf("%s/%s", c.ApiPrefix, path))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return r.ToJSON(v)
}

// Status returns the session snapshot
func (c *ApiClient) Status() (*srv.Snapshot, error) {
	snapshot := &srv.Snapshot{}
	if err := c.get("status", snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ESense returns the latest eSense values
func (c *ApiClient) ESense() (*srv.ESense, error) {
	esense := &srv.ESense{}
	if err := c.get("esense", esense); err != nil {
		return nil, err
	}
	return esense, nil
}

// Headsets returns every headset the dongle has connected to
func (c *ApiClient) Headsets() ([]*srv.Headset, error) {
	var headsets []*srv.Headset
	if err := c.get("headsets", &headsets); err != nil {
		return nil, err
	}
	return headsets, nil
}
