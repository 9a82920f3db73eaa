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
	"encoding/binary"

	"github.com/junjunjd/rustymind/pkg/log"
)

// VLENGTH and status values used by the headset management rows
const (
	vlengthHeadsetID = 0x02
	vlengthNone      = 0x00
	vlengthStandby   = 0x01
	statusStandby    = 0x00
	statusFind       = 0x01
)

// Decode walks a checksum-verified payload and returns one record per data row.
// It never reads past the end of the payload: a row that needs more bytes than are
// left ends the walk with a TruncatedRecord and an ErrTruncatedRecord error, and the
// records decoded before it are still returned.
func Decode(payload []byte) ([]Record, error) {
	records := make([]Record, 0, 4)
	n := 0
	for n < len(payload) {
		row := payload[n:]
		record, width := decodeRow(row)
		if width > len(row) {
			log.Warning("Truncated data row 0x%02x at offset %d: need %d bytes, have %d", row[0], n, width, len(row))
			records = append(records, TruncatedRecord{Value: row[0], Need: width, Have: len(row)})
			return records, ErrTruncatedRecord{Code: row[0], Offset: n, Need: width, Have: len(row)}
		}
		records = append(records, record)
		n += width
	}
	return records, nil
}

// decodeRow decodes the data row at the beginning of row and returns the record and
// the number of bytes it occupies. If the returned width exceeds len(row) the record
// is nil and the row is truncated.
func decodeRow(row []byte) (Record, int) {
	code := row[0]
	switch code {
	case CodeHeadsetConnected:
		if len(row) < widthHeadsetID {
			return nil, widthHeadsetID
		}
		if row[1] != vlengthHeadsetID {
			log.Warning("Undefined data row length 0x%02x while headset connected", row[1])
			return HeadsetConnectedUndefined{}, widthHeadsetID
		}
		id := binary.BigEndian.Uint16(row[2:4])
		log.Debug("Headset connected: ID 0x%04x", id)
		return HeadsetConnected{ID: id}, widthHeadsetID

	case CodeHeadsetNotFound:
		if len(row) < widthShortStatus {
			return nil, widthShortStatus
		}
		switch row[1] {
		case vlengthHeadsetID:
			if len(row) < widthHeadsetID {
				return nil, widthHeadsetID
			}
			id := binary.BigEndian.Uint16(row[2:4])
			log.Debug("Headset ID 0x%04x could not be found", id)
			return HeadsetNotFound{ID: id}, widthHeadsetID
		case vlengthNone:
			log.Debug("No headset could be found during auto-connect")
			return NoHeadsetFound{}, widthShortStatus
		default:
			// skip the CODE and the VLENGTH so the walk always moves forward
			log.Warning("Undefined data row length 0x%02x while headset not found", row[1])
			return NotFoundUndefined{}, widthShortStatus
		}

	case CodeHeadsetDisconnected:
		if len(row) < widthHeadsetID {
			return nil, widthHeadsetID
		}
		if row[1] != vlengthHeadsetID {
			log.Warning("Undefined data row length 0x%02x while headset disconnected", row[1])
			return HeadsetDisconnectedUndefined{}, widthHeadsetID
		}
		id := binary.BigEndian.Uint16(row[2:4])
		log.Debug("Disconnected from headset: ID 0x%04x", id)
		return HeadsetDisconnected{ID: id}, widthHeadsetID

	case CodeRequestDenied:
		if len(row) < widthShortStatus {
			return nil, widthShortStatus
		}
		if row[1] != vlengthNone {
			log.Warning("Undefined data row length 0x%02x while request denied", row[1])
			return HeadsetDisconnectedUndefined{}, widthShortStatus
		}
		log.Debug("The last command request was denied")
		return RequestDenied{}, widthShortStatus

	case CodeStandby:
		if len(row) < widthStandby {
			return nil, widthStandby
		}
		if row[1] != vlengthStandby {
			log.Warning("Undefined data row length 0x%02x while standby", row[1])
			return StandbyLengthUndefined{}, widthStandby
		}
		switch row[2] {
		case statusStandby:
			log.Debug("Dongle is in standby mode awaiting a command")
			return Standby{}, widthStandby
		case statusFind:
			log.Debug("Dongle is trying to connect to a headset")
			return FindHeadset{}, widthStandby
		default:
			log.Warning("Undefined standby status 0x%02x", row[2])
			return StandbyPacketUndefined{}, widthStandby
		}

	case CodePoorSignal:
		if len(row) < widthSingleByte {
			return nil, widthSingleByte
		}
		if row[1] == PoorSignalNoContact {
			log.Debug("Poor signal: electrodes are not touching the skin")
		} else {
			log.Debug("Poor signal: quality %d", row[1])
		}
		return PoorSignal{Quality: row[1]}, widthSingleByte

	case CodeAttention:
		if len(row) < widthSingleByte {
			return nil, widthSingleByte
		}
		log.Debug("Attention: eSense %d", row[1])
		return Attention{Value: row[1]}, widthSingleByte

	case CodeMeditation:
		if len(row) < widthSingleByte {
			return nil, widthSingleByte
		}
		log.Debug("Meditation: eSense %d", row[1])
		return Meditation{Value: row[1]}, widthSingleByte

	case CodeBlinkStrength:
		if len(row) < widthSingleByte {
			return nil, widthSingleByte
		}
		log.Debug("Blink: strength %d", row[1])
		return Blink{Strength: row[1]}, widthSingleByte

	case CodeRawValue:
		if len(row) < widthRawValue {
			return nil, widthRawValue
		}
		// row[1] is the VLENGTH, always 2 for this CODE
		return RawValue{Value: int16(binary.BigEndian.Uint16(row[2:4]))}, widthRawValue

	case CodeAsicEegPower:
		if len(row) < widthAsicEeg {
			return nil, widthAsicEeg
		}
		var bands [AsicEegBands]uint32
		for i := range bands {
			p := 2 + 3*i
			bands[i] = uint32(row[p])<<16 | uint32(row[p+1])<<8 | uint32(row[p+2])
		}
		log.Debug("EEG power: %v", bands)
		return AsicEeg{
			Delta:     bands[0],
			Theta:     bands[1],
			LowAlpha:  bands[2],
			HighAlpha: bands[3],
			LowBeta:   bands[4],
			HighBeta:  bands[5],
			LowGamma:  bands[6],
			MidGamma:  bands[7],
		}, widthAsicEeg

	default:
		log.Warning("Undefined data row code 0x%02x", code)
		return PacketUndefined{Value: code}, 1
	}
}
