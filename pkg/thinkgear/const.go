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

const (
	// Sync is the value of both bytes that open every ThinkGear frame.
	// It is also the upper bound of the payload length byte.
	Sync = 0xAA
	// MaxPayloadLength is the largest payload length accepted by the parser.
	// A length byte equal to Sync is not a terminal value, see Parser.Feed.
	MaxPayloadLength = 0xAA
	// MaxEncodedPayloadLength is the largest payload EncodeFrame will produce,
	// since a length byte of 0xAA would be read as another sync byte.
	MaxEncodedPayloadLength = MaxPayloadLength - 1
)

// Payload CODE values
const (
	CodeHeadsetConnected    = 0xD0
	CodeHeadsetNotFound     = 0xD1
	CodeHeadsetDisconnected = 0xD2
	CodeRequestDenied       = 0xD3
	CodeStandby             = 0xD4
	CodePoorSignal          = 0x02 // (0-255, 200 == no skin contact)
	CodeAttention           = 0x04 // (0-100)
	CodeMeditation          = 0x05 // (0-100)
	CodeBlinkStrength       = 0x16 // (1-255)
	CodeRawValue            = 0x80 // 2 byte big-endian signed sample
	CodeAsicEegPower        = 0x83 // 8 3-byte unsigned ints
)

// Widths of the data rows, including the CODE byte.
const (
	widthSingleByte  = 2
	widthHeadsetID   = 4
	widthShortStatus = 2
	widthStandby     = 3
	widthRawValue    = 4
	widthAsicEeg     = 26 // the CODE, the VLENGTH and 24 bytes
)

const (
	// PoorSignalNoContact is the poor signal value reported when the
	// electrodes are not touching the skin.
	PoorSignalNoContact = 200
	// AsicEegBands is the number of band power values in an ASIC_EEG_POWER row.
	AsicEegBands = 8
)
