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
	"fmt"
)

// ErrPayloadLength returned when the PLENGTH byte of a frame exceeds MaxPayloadLength
type ErrPayloadLength struct {
	Length byte
}

func (e ErrPayloadLength) Error() string {
	return fmt.Sprintf("Payload length %d exceeds maximum %d", e.Length, MaxPayloadLength)
}

// ErrChecksum returned when the checksum of a frame does not match its payload
type ErrChecksum struct {
	Expected byte
	Received byte
}

func (e ErrChecksum) Error() string {
	return fmt.Sprintf("Checksum mismatch: expected 0x%02x received 0x%02x", e.Expected, e.Received)
}

// ErrTruncatedRecord returned when a data row needs more bytes than the payload has left
type ErrTruncatedRecord struct {
	Code   byte
	Offset int
	Need   int
	Have   int
}

func (e ErrTruncatedRecord) Error() string {
	return fmt.Sprintf("Truncated data row 0x%02x at offset %d: need %d bytes, have %d", e.Code, e.Offset, e.Need, e.Have)
}

// ErrPayloadTooLong returned by EncodeFrame for payloads that do not fit into a frame
type ErrPayloadTooLong struct {
	Length int
}

func (e ErrPayloadTooLong) Error() string {
	return fmt.Sprintf("Payload of %d bytes does not fit into a frame, maximum is %d", e.Length, MaxEncodedPayloadLength)
}

// ErrUnencodableRecord returned for records that do not keep the bytes of their data row
type ErrUnencodableRecord struct {
	Kind string
	Code byte
}

func (e ErrUnencodableRecord) Error() string {
	return fmt.Sprintf("Record %s (code 0x%02x) has no wire form", e.Kind, e.Code)
}

// ErrFrameTruncated returned when a buffer ends before the frame it starts
type ErrFrameTruncated struct {
	Need int
	Have int
}

func (e ErrFrameTruncated) Error() string {
	return fmt.Sprintf("Frame truncated: need %d bytes, have %d", e.Need, e.Have)
}

// ErrSync returned when a buffer does not start with SYNC SYNC
type ErrSync struct {
	Received [2]byte
}

func (e ErrSync) Error() string {
	return fmt.Sprintf("Wrong sync 0x%02x 0x%02x, must be 0x%02x 0x%02x", e.Received[0], e.Received[1], Sync, Sync)
}
