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
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/junjunjd/rustymind/pkg/log"
)

// Dongle commands
const (
	CommandConnect     = 0xC0
	CommandDisconnect  = 0xC1
	CommandAutoConnect = 0xC2
)

const (
	// PortMock is a special port name that starts the built-in generator
	PortMock = "MOCK"
	// HeadsetIDLength is the number of bytes of a headset ID
	HeadsetIDLength = 2
)

// Dongle is a ThinkGear USB dongle. It reads the byte stream of the
// connected headset and accepts connection commands.
type Dongle struct {
	Path string
	port io.ReadWriteCloser
}

// NewDongle wraps an already opened port
func NewDongle(path string, port io.ReadWriteCloser) *Dongle {
	return &Dongle{
		Path: path,
		port: port,
	}
}

// Open opens the serial port of the dongle. Reads return no data after
// timeout if the dongle is silent, so callers can check for cancellation.
func Open(path string, baudRate int, timeout time.Duration) (*Dongle, error) {
	if path == PortMock {
		log.Info("Using mock dongle")
		return NewDongle(path, NewMockDongle()), nil
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", path, err)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on port %s: %w", path, err)
	}
	log.Info("Serial connected: %s @ %d baud", path, baudRate)
	return NewDongle(path, port), nil
}

// ListPorts returns the serial ports available on the system
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// ParseHeadsetID decodes a hex headset ID such as "a26c". An empty string
// or "c2" selects auto-connect and yields []byte{CommandAutoConnect}.
func ParseHeadsetID(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if s == "" {
		return []byte{CommandAutoConnect}, nil
	}
	id, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrBadHeadsetID{ID: s, What: err.Error()}
	}
	if len(id) == 1 && id[0] == CommandAutoConnect {
		return id, nil
	}
	if len(id) != HeadsetIDLength {
		return nil, ErrBadHeadsetID{ID: s, What: fmt.Sprintf("must be %d bytes", HeadsetIDLength)}
	}
	return id, nil
}

// Connect runs the dongle handshake: disconnect from any headset, wait for the
// dongle to talk, then either connect to the given headset or auto-connect.
func (d *Dongle) Connect(headset []byte) error {
	if _, err := d.port.Write([]byte{CommandDisconnect}); err != nil {
		return ErrHandshake{What: "write disconnect", Err: err}
	}

	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	if err != nil {
		return ErrHandshake{What: "read after disconnect", Err: err}
	}
	if n == 0 {
		return ErrHandshake{What: "dongle sent no data after disconnect"}
	}

	if len(headset) == 0 || (len(headset) == 1 && headset[0] == CommandAutoConnect) {
		log.Info("Auto-connecting to any headset")
		if _, err := d.port.Write([]byte{CommandAutoConnect}); err != nil {
			return ErrHandshake{What: "write auto-connect", Err: err}
		}
		return nil
	}

	if len(headset) != HeadsetIDLength {
		return ErrBadHeadsetID{ID: hex.EncodeToString(headset), What: fmt.Sprintf("must be %d bytes", HeadsetIDLength)}
	}
	log.Info("Connecting to headset 0x%s", hex.EncodeToString(headset))
	if _, err := d.port.Write([]byte{CommandConnect}); err != nil {
		return ErrHandshake{What: "write connect", Err: err}
	}
	if _, err := d.port.Write(headset); err != nil {
		return ErrHandshake{What: "write headset ID", Err: err}
	}
	return nil
}

// Disconnect asks the dongle to drop the headset connection
func (d *Dongle) Disconnect() error {
	_, err := d.port.Write([]byte{CommandDisconnect})
	return err
}

func (d *Dongle) Read(buf []byte) (int, error) {
	return d.port.Read(buf)
}

func (d *Dongle) Close() error {
	log.Debug("Closing dongle %s", d.Path)
	return d.port.Close()
}
