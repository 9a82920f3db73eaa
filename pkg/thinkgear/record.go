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

package thinkgear

import (
	"encoding/json"
)

// Record is a single decoded data row of a ThinkGear payload.
// The set of implementations is closed, use a type switch to consume it.
type Record interface {
	// Kind is a stable snake_case name of the record
	Kind() string
	// Code is the payload CODE the record was decoded from
	Code() byte
	isRecord()
}

// HeadsetConnected is reported by the dongle after it connected to a headset
type HeadsetConnected struct {
	ID uint16 `json:"id"`
}

// HeadsetConnectedUndefined is a 0xD0 row with an unexpected VLENGTH
type HeadsetConnectedUndefined struct{}

// HeadsetNotFound is reported when the requested headset could not be found
type HeadsetNotFound struct {
	ID uint16 `json:"id"`
}

// NoHeadsetFound is reported when no headset was found during auto-connect
type NoHeadsetFound struct{}

// NotFoundUndefined is a 0xD1 row with an unexpected VLENGTH
type NotFoundUndefined struct{}

// HeadsetDisconnected is reported after the dongle disconnected from a headset
type HeadsetDisconnected struct {
	ID uint16 `json:"id"`
}

// HeadsetDisconnectedUndefined is a 0xD2 or 0xD3 row with an unexpected VLENGTH
type HeadsetDisconnectedUndefined struct{}

// RequestDenied means the last command sent to the dongle was denied
type RequestDenied struct{}

// Standby means the dongle is idle and waits for a command
type Standby struct{}

// FindHeadset means the dongle is trying to connect to a headset
type FindHeadset struct{}

// StandbyPacketUndefined is a 0xD4 row with an unknown status byte
type StandbyPacketUndefined struct{}

// StandbyLengthUndefined is a 0xD4 row with an unexpected VLENGTH
type StandbyLengthUndefined struct{}

// PoorSignal is the signal quality, 0 is the best
type PoorSignal struct {
	Quality uint8 `json:"quality"`
}

// NotTouchingSkin reports whether the electrodes are off the skin
func (p PoorSignal) NotTouchingSkin() bool {
	return p.Quality == PoorSignalNoContact
}

// Attention is the eSense attention level
type Attention struct {
	Value uint8 `json:"value"`
}

// Meditation is the eSense meditation level
type Meditation struct {
	Value uint8 `json:"value"`
}

// Blink is the strength of a detected blink
type Blink struct {
	Strength uint8 `json:"strength"`
}

// RawValue is a single raw wave sample
type RawValue struct {
	Value int16 `json:"value"`
}

// AsicEeg holds the eight EEG band power values of an ASIC_EEG_POWER row
type AsicEeg struct {
	Delta     uint32 `json:"delta"`
	Theta     uint32 `json:"theta"`
	LowAlpha  uint32 `json:"low_alpha"`
	HighAlpha uint32 `json:"high_alpha"`
	LowBeta   uint32 `json:"low_beta"`
	HighBeta  uint32 `json:"high_beta"`
	LowGamma  uint32 `json:"low_gamma"`
	MidGamma  uint32 `json:"mid_gamma"`
}

// Bands returns band power values in wire order
func (a AsicEeg) Bands() [AsicEegBands]uint32 {
	return [AsicEegBands]uint32{
		a.Delta, a.Theta, a.LowAlpha, a.HighAlpha,
		a.LowBeta, a.HighBeta, a.LowGamma, a.MidGamma,
	}
}

// PacketUndefined carries a CODE byte the decoder does not know
type PacketUndefined struct {
	Value byte `json:"code"`
}

// TruncatedRecord is emitted when a row needs more bytes than are left in the
// payload. It is always the last record of a payload.
type TruncatedRecord struct {
	Value byte `json:"code"`
	Need  int  `json:"need"`
	Have  int  `json:"have"`
}

func (HeadsetConnected) Kind() string             { return "headset_connected" }
func (HeadsetConnectedUndefined) Kind() string    { return "headset_connected_undefined" }
func (HeadsetNotFound) Kind() string              { return "headset_not_found" }
func (NoHeadsetFound) Kind() string               { return "no_headset_found" }
func (NotFoundUndefined) Kind() string            { return "not_found_undefined" }
func (HeadsetDisconnected) Kind() string          { return "headset_disconnected" }
func (HeadsetDisconnectedUndefined) Kind() string { return "headset_disconnected_undefined" }
func (RequestDenied) Kind() string                { return "request_denied" }
func (Standby) Kind() string                      { return "standby" }
func (FindHeadset) Kind() string                  { return "find_headset" }
func (StandbyPacketUndefined) Kind() string       { return "standby_packet_undefined" }
func (StandbyLengthUndefined) Kind() string       { return "standby_length_undefined" }
func (PoorSignal) Kind() string                   { return "poor_signal" }
func (Attention) Kind() string                    { return "attention" }
func (Meditation) Kind() string                   { return "meditation" }
func (Blink) Kind() string                        { return "blink" }
func (RawValue) Kind() string                     { return "raw_value" }
func (AsicEeg) Kind() string                      { return "asic_eeg" }
func (PacketUndefined) Kind() string              { return "packet_undefined" }
func (TruncatedRecord) Kind() string              { return "truncated_record" }

func (HeadsetConnected) Code() byte             { return CodeHeadsetConnected }
func (HeadsetConnectedUndefined) Code() byte    { return CodeHeadsetConnected }
func (HeadsetNotFound) Code() byte              { return CodeHeadsetNotFound }
func (NoHeadsetFound) Code() byte               { return CodeHeadsetNotFound }
func (NotFoundUndefined) Code() byte            { return CodeHeadsetNotFound }
func (HeadsetDisconnected) Code() byte          { return CodeHeadsetDisconnected }
func (HeadsetDisconnectedUndefined) Code() byte { return CodeHeadsetDisconnected }
func (RequestDenied) Code() byte                { return CodeRequestDenied }
func (Standby) Code() byte                      { return CodeStandby }
func (FindHeadset) Code() byte                  { return CodeStandby }
func (StandbyPacketUndefined) Code() byte       { return CodeStandby }
func (StandbyLengthUndefined) Code() byte       { return CodeStandby }
func (PoorSignal) Code() byte                   { return CodePoorSignal }
func (Attention) Code() byte                    { return CodeAttention }
func (Meditation) Code() byte                   { return CodeMeditation }
func (Blink) Code() byte                        { return CodeBlinkStrength }
func (RawValue) Code() byte                     { return CodeRawValue }
func (AsicEeg) Code() byte                      { return CodeAsicEegPower }
func (p PacketUndefined) Code() byte            { return p.Value }
func (t TruncatedRecord) Code() byte            { return t.Value }

func (HeadsetConnected) isRecord()             {}
func (HeadsetConnectedUndefined) isRecord()    {}
func (HeadsetNotFound) isRecord()              {}
func (NoHeadsetFound) isRecord()               {}
func (NotFoundUndefined) isRecord()            {}
func (HeadsetDisconnected) isRecord()          {}
func (HeadsetDisconnectedUndefined) isRecord() {}
func (RequestDenied) isRecord()                {}
func (Standby) isRecord()                      {}
func (FindHeadset) isRecord()                  {}
func (StandbyPacketUndefined) isRecord()       {}
func (StandbyLengthUndefined) isRecord()       {}
func (PoorSignal) isRecord()                   {}
func (Attention) isRecord()                    {}
func (Meditation) isRecord()                   {}
func (Blink) isRecord()                        {}
func (RawValue) isRecord()                     {}
func (AsicEeg) isRecord()                      {}
func (PacketUndefined) isRecord()              {}
func (TruncatedRecord) isRecord()              {}

// Envelope wraps a record with its kind for JSON consumers
type Envelope struct {
	Type   string `json:"type"`
	Record Record `json:"data"`
}

// NewEnvelope ...
func NewEnvelope(r Record) Envelope {
	return Envelope{Type: r.Kind(), Record: r}
}

// MarshalRecord encodes a record as {"type": ..., "data": ...}
func MarshalRecord(r Record) ([]byte, error) {
	return json.Marshal(NewEnvelope(r))
}
