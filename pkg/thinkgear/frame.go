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

// Checksum returns the one's complement of the 8-bit sum of the payload
func Checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return ^sum
}

// EncodeFrame wraps a payload into a frame: SYNC SYNC PLENGTH PAYLOAD... CHKSUM
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > MaxEncodedPayloadLength {
		return nil, ErrPayloadTooLong{Length: len(payload)}
	}
	frame := make([]byte, 0, len(payload)+4)
	frame = append(frame, Sync, Sync, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, Checksum(payload))
	return frame, nil
}

// Encode appends the wire form of a record to a payload buffer. Records that
// EncodeRecord rejects are skipped.
func Encode(buf []byte, r Record) []byte {
	out, err := EncodeRecord(buf, r)
	if err != nil {
		return buf
	}
	return out
}

// EncodeRecord appends the wire form of a record to a payload buffer. The
// *Undefined headset variants and TruncatedRecord carry no row bytes and
// return ErrUnencodableRecord.
func EncodeRecord(buf []byte, r Record) ([]byte, error) {
	switch v := r.(type) {
	case HeadsetConnected:
		return append(buf, CodeHeadsetConnected, vlengthHeadsetID, byte(v.ID>>8), byte(v.ID)), nil
	case HeadsetNotFound:
		return append(buf, CodeHeadsetNotFound, vlengthHeadsetID, byte(v.ID>>8), byte(v.ID)), nil
	case NoHeadsetFound:
		return append(buf, CodeHeadsetNotFound, vlengthNone), nil
	case HeadsetDisconnected:
		return append(buf, CodeHeadsetDisconnected, vlengthHeadsetID, byte(v.ID>>8), byte(v.ID)), nil
	case RequestDenied:
		return append(buf, CodeRequestDenied, vlengthNone), nil
	case Standby:
		return append(buf, CodeStandby, vlengthStandby, statusStandby), nil
	case FindHeadset:
		return append(buf, CodeStandby, vlengthStandby, statusFind), nil
	case PoorSignal:
		return append(buf, CodePoorSignal, v.Quality), nil
	case Attention:
		return append(buf, CodeAttention, v.Value), nil
	case Meditation:
		return append(buf, CodeMeditation, v.Value), nil
	case Blink:
		return append(buf, CodeBlinkStrength, v.Strength), nil
	case RawValue:
		return append(buf, CodeRawValue, 0x02, byte(uint16(v.Value)>>8), byte(v.Value)), nil
	case AsicEeg:
		buf = append(buf, CodeAsicEegPower, 3*AsicEegBands)
		for _, band := range v.Bands() {
			buf = append(buf, byte(band>>16), byte(band>>8), byte(band))
		}
		return buf, nil
	case PacketUndefined:
		return append(buf, v.Value), nil
	}
	return buf, ErrUnencodableRecord{Kind: r.Kind(), Code: r.Code()}
}
