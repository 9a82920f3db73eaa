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
	"errors"
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected []Record
	}{
		{
			name:     "empty payload",
			payload:  []byte{},
			expected: []Record{},
		},
		{
			name:     "headset connected",
			payload:  []byte{0xD0, 0x02, 0xA2, 0x6C},
			expected: []Record{HeadsetConnected{ID: 0xA26C}},
		},
		{
			name:     "headset connected with bad vlength",
			payload:  []byte{0xD0, 0x03, 0x00, 0x00},
			expected: []Record{HeadsetConnectedUndefined{}},
		},
		{
			name:     "headset not found",
			payload:  []byte{0xD1, 0x02, 0x12, 0x34},
			expected: []Record{HeadsetNotFound{ID: 0x1234}},
		},
		{
			name:     "no headset found",
			payload:  []byte{0xD1, 0x00, 0x04, 0x10},
			expected: []Record{NoHeadsetFound{}, Attention{Value: 0x10}},
		},
		{
			name:     "not found with unknown vlength moves forward",
			payload:  []byte{0xD1, 0x07, 0x05, 0x20},
			expected: []Record{NotFoundUndefined{}, Meditation{Value: 0x20}},
		},
		{
			name:     "headset disconnected",
			payload:  []byte{0xD2, 0x02, 0xA2, 0x6C},
			expected: []Record{HeadsetDisconnected{ID: 0xA26C}},
		},
		{
			name:     "headset disconnected with bad vlength",
			payload:  []byte{0xD2, 0x01, 0x00, 0x00},
			expected: []Record{HeadsetDisconnectedUndefined{}},
		},
		{
			name:     "request denied",
			payload:  []byte{0xD3, 0x00},
			expected: []Record{RequestDenied{}},
		},
		{
			name:     "request denied with bad vlength",
			payload:  []byte{0xD3, 0x01},
			expected: []Record{HeadsetDisconnectedUndefined{}},
		},
		{
			name:     "standby",
			payload:  []byte{0xD4, 0x01, 0x00},
			expected: []Record{Standby{}},
		},
		{
			name:     "find headset",
			payload:  []byte{0xD4, 0x01, 0x01},
			expected: []Record{FindHeadset{}},
		},
		{
			name:     "standby with unknown status",
			payload:  []byte{0xD4, 0x01, 0x09},
			expected: []Record{StandbyPacketUndefined{}},
		},
		{
			name:     "standby with bad vlength",
			payload:  []byte{0xD4, 0x02, 0x00},
			expected: []Record{StandbyLengthUndefined{}},
		},
		{
			name:     "poor signal not touching skin",
			payload:  []byte{0x02, 0xC8},
			expected: []Record{PoorSignal{Quality: 200}},
		},
		{
			name:     "blink",
			payload:  []byte{0x16, 0x7F},
			expected: []Record{Blink{Strength: 0x7F}},
		},
		{
			name:     "raw value minimum",
			payload:  []byte{0x80, 0x02, 0x80, 0x00},
			expected: []Record{RawValue{Value: -32768}},
		},
		{
			name:     "raw value minus one",
			payload:  []byte{0x80, 0x02, 0xFF, 0xFF},
			expected: []Record{RawValue{Value: -1}},
		},
		{
			name:     "raw value positive",
			payload:  []byte{0x80, 0x02, 0x01, 0x02},
			expected: []Record{RawValue{Value: 0x0102}},
		},
		{
			name: "asic eeg delta only",
			payload: []byte{
				0x83, 0x18,
				0x00, 0x00, 0x94,
				0x00, 0x00, 0x00,
				0x00, 0x00, 0x00,
				0x00, 0x00, 0x00,
				0x00, 0x00, 0x00,
				0x00, 0x00, 0x00,
				0x00, 0x00, 0x00,
				0x00, 0x00, 0x00,
			},
			expected: []Record{AsicEeg{Delta: 0x94}},
		},
		{
			name: "asic eeg uses all three bytes",
			payload: []byte{
				0x83, 0x18,
				0xFF, 0xFF, 0xFF,
				0x01, 0x00, 0x00,
				0x00, 0x01, 0x00,
				0x00, 0x00, 0x01,
				0x12, 0x34, 0x56,
				0x00, 0x00, 0x00,
				0x00, 0x00, 0x00,
				0x80, 0x00, 0x00,
			},
			expected: []Record{AsicEeg{
				Delta:     0xFFFFFF,
				Theta:     0x010000,
				LowAlpha:  0x000100,
				HighAlpha: 0x000001,
				LowBeta:   0x123456,
				MidGamma:  0x800000,
			}},
		},
		{
			name:     "unknown code",
			payload:  []byte{0x55, 0x04, 0x30},
			expected: []Record{PacketUndefined{Value: 0x55}, Attention{Value: 0x30}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.payload)
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected records %#v, got %#v", tt.expected, result)
			}
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		expected []Record
		offset   int
	}{
		{
			name:     "attention without value",
			payload:  []byte{0x04},
			expected: []Record{TruncatedRecord{Value: 0x04, Need: 2, Have: 1}},
		},
		{
			name:     "raw value after poor signal",
			payload:  []byte{0x02, 0x00, 0x80, 0x02, 0x01},
			expected: []Record{PoorSignal{Quality: 0}, TruncatedRecord{Value: 0x80, Need: 4, Have: 3}},
			offset:   2,
		},
		{
			name:     "asic eeg short",
			payload:  []byte{0x83, 0x18, 0x00, 0x00, 0x94},
			expected: []Record{TruncatedRecord{Value: 0x83, Need: 26, Have: 5}},
		},
		{
			name:     "headset not found without vlength",
			payload:  []byte{0xD1},
			expected: []Record{TruncatedRecord{Value: 0xD1, Need: 2, Have: 1}},
		},
		{
			name:     "headset not found without id",
			payload:  []byte{0xD1, 0x02, 0xA2},
			expected: []Record{TruncatedRecord{Value: 0xD1, Need: 4, Have: 3}},
		},
		{
			name:     "standby short",
			payload:  []byte{0xD4, 0x01},
			expected: []Record{TruncatedRecord{Value: 0xD4, Need: 3, Have: 2}},
		},
		{
			name:     "records after truncation are not decoded",
			payload:  []byte{0x05, 0x10, 0xD0, 0x02, 0x04},
			expected: []Record{Meditation{Value: 0x10}, TruncatedRecord{Value: 0xD0, Need: 4, Have: 3}},
			offset:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.payload)
			var truncated ErrTruncatedRecord
			if !errors.As(err, &truncated) {
				t.Fatalf("Expected ErrTruncatedRecord, got %v", err)
			}
			if truncated.Offset != tt.offset {
				t.Errorf("Expected offset %d, got %d", tt.offset, truncated.Offset)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Expected records %#v, got %#v", tt.expected, result)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	records := []Record{
		HeadsetConnected{ID: 0xA26C},
		NoHeadsetFound{},
		RequestDenied{},
		FindHeadset{},
		PoorSignal{Quality: 26},
		RawValue{Value: -1234},
		AsicEeg{Delta: 1, Theta: 2, LowAlpha: 3, HighAlpha: 4, LowBeta: 5, HighBeta: 6, LowGamma: 7, MidGamma: 0xABCDEF},
		Attention{Value: 55},
		Meditation{Value: 66},
		Blink{Strength: 77},
	}
	var payload []byte
	for _, r := range records {
		payload = Encode(payload, r)
	}
	result, err := Decode(payload)
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	if !reflect.DeepEqual(result, records) {
		t.Errorf("Expected records %#v, got %#v", records, result)
	}
}

func TestMarshalRecord(t *testing.T) {
	data, err := MarshalRecord(Attention{Value: 13})
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}
	expected := `{"type":"attention","data":{"value":13}}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}
}

func TestEncodeRecord(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		expected []byte
		err      bool
	}{
		{name: "attention", record: Attention{Value: 9}, expected: []byte{0x04, 0x09}},
		{name: "packet undefined", record: PacketUndefined{Value: 0x99}, expected: []byte{0x99}},
		{name: "headset connected undefined", record: HeadsetConnectedUndefined{}, err: true},
		{name: "not found undefined", record: NotFoundUndefined{}, err: true},
		{name: "headset disconnected undefined", record: HeadsetDisconnectedUndefined{}, err: true},
		{name: "standby packet undefined", record: StandbyPacketUndefined{}, err: true},
		{name: "standby length undefined", record: StandbyLengthUndefined{}, err: true},
		{name: "truncated record", record: TruncatedRecord{Value: CodeRawValue, Need: 4, Have: 1}, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefix := []byte{0x02, 0x00}
			out, err := EncodeRecord(prefix, tt.record)
			if tt.err {
				var e ErrUnencodableRecord
				if !errors.As(err, &e) || e.Kind != tt.record.Kind() || e.Code != tt.record.Code() {
					t.Fatalf("Expected ErrUnencodableRecord, got %v", err)
				}
				if !reflect.DeepEqual(out, prefix) {
					t.Errorf("Expected buffer left as % x, got % x", prefix, out)
				}
				if got := Encode(prefix, tt.record); !reflect.DeepEqual(got, prefix) {
					t.Errorf("Expected Encode to skip the record, got % x", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !reflect.DeepEqual(out, append([]byte{0x02, 0x00}, tt.expected...)) {
				t.Errorf("Expected % x, got % x", tt.expected, out)
			}
		})
	}
}
