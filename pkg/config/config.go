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

package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"
)

type DongleConfig struct {
	// Path is the serial device of the dongle, MOCK starts the built-in generator
	Path     string `json:"path"`
	BaudRate int    `json:"baudRate"`
	// HeadsetID is a hex encoded 2 byte headset ID, or c2 for auto-connect
	HeadsetID      string `json:"headsetID"`
	ReadTimeoutMs  int    `json:"readTimeoutMs"`
	ReadBufferSize int    `json:"readBufferSize"`
}

// ReadTimeout ...
func (d *DongleConfig) ReadTimeout() time.Duration {
	return time.Duration(d.ReadTimeoutMs) * time.Millisecond
}

type ApiConfig struct {
	Address  string `json:"address"`
	Port     int    `json:"port"`
	Disabled bool   `json:"disabled,omitempty"`
}

// NatsConfig is optional, records are published only when URL is set
type NatsConfig struct {
	URL           string `json:"url,omitempty"`
	SubjectPrefix string `json:"subjectPrefix,omitempty"`
}

type Config struct {
	*DongleConfig `json:"dongle"`
	*ApiConfig    `json:"api"`
	*NatsConfig   `json:"nats,omitempty"`

	LogLevel string `json:"logLevel"`
	DBPath   string `json:"dbPath"`
	// Echo prints every record as a JSON line while streaming
	Echo     bool `json:"echo,omitempty"`
	filepath string
}

// Path returns the path of the config file
func (c *Config) Path() string {
	return c.filepath
}

// SetPath ...
func (c *Config) SetPath(path string) {
	c.filepath = path
}

// ApiAddr returns host:port of the API server
func (c *Config) ApiAddr() string {
	return fmt.Sprintf("%s:%d", c.ApiConfig.Address, c.ApiConfig.Port)
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

// Load reads the config file over the current values. A missing file is not an error.
func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return ErrConfigParse{Path: c.filepath, Err: err}
	}
	return nil
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, DBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		DongleConfig: &DongleConfig{
			Path:           DefaultDonglePath,
			BaudRate:       DefaultBaudRate,
			HeadsetID:      DefaultHeadsetID,
			ReadTimeoutMs:  DefaultReadTimeout,
			ReadBufferSize: DefaultReadBuffer,
		},
		ApiConfig: &ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		NatsConfig: &NatsConfig{
			SubjectPrefix: DefaultSubjectPrefix,
		},
		LogLevel: DefaultLogLevel,
		DBPath:   DefaultDBPath(),
		filepath: DefaultConfigPath(),
	}
}
