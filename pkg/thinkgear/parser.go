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
	"github.com/junjunjd/rustymind/pkg/log"
)

// Phase is the state of the frame synchronizer
type Phase int

const (
	AwaitingFirstSync Phase = iota
	AwaitingSecondSync
	AwaitingLength
	AccumulatingPayload
)

func (p Phase) String() string {
	switch p {
	case AwaitingFirstSync:
		return "AwaitingFirstSync"
	case AwaitingSecondSync:
		return "AwaitingSecondSync"
	case AwaitingLength:
		return "AwaitingLength"
	case AccumulatingPayload:
		return "AccumulatingPayload"
	}
	return "Unknown"
}

// Stats counts frames and anomalies seen by a Parser
type Stats struct {
	Frames           uint64 `json:"frames"`
	Records          uint64 `json:"records"`
	ChecksumFailures uint64 `json:"checksum_failures"`
	LengthViolations uint64 `json:"length_violations"`
	TruncatedFrames  uint64 `json:"truncated_frames"`
	Resyncs          uint64 `json:"resyncs"`
}

// Parser is an incremental ThinkGear frame synchronizer. It is fed one byte at
// a time and decodes the payload of every frame whose checksum matches.
//
// A Parser is not safe for concurrent use; every byte stream needs its own.
type Parser struct {
	// OnError, if set, is called for every discarded or truncated frame
	// with ErrPayloadLength, ErrChecksum or ErrTruncatedRecord.
	OnError func(error)

	phase     Phase
	remaining byte
	payload   []byte
	checksum  byte
	stats     Stats
}

func NewParser() *Parser {
	return &Parser{
		phase:   AwaitingFirstSync,
		payload: make([]byte, 0, MaxPayloadLength),
	}
}

// Phase returns the current state of the synchronizer
func (p *Parser) Phase() Phase {
	return p.phase
}

// Stats returns a copy of the frame counters
func (p *Parser) Stats() Stats {
	return p.stats
}

// Reset drops any partial frame and waits for the next sync sequence.
// Counters are kept.
func (p *Parser) Reset() {
	p.phase = AwaitingFirstSync
	p.remaining = 0
	p.payload = p.payload[:0]
	p.checksum = 0
}

// Feed consumes one byte of the stream. It returns the decoded records and true
// only for the byte that completes a frame with a valid checksum, in any other
// case it returns nil and false. The returned slice is owned by the caller.
func (p *Parser) Feed(b byte) ([]Record, bool) {
	switch p.phase {
	case AwaitingFirstSync:
		if b == Sync {
			p.phase = AwaitingSecondSync
		}
	case AwaitingSecondSync:
		if b == Sync {
			log.Debug("Packet synced")
			p.phase = AwaitingLength
		} else {
			p.stats.Resyncs++
			p.phase = AwaitingFirstSync
		}
	case AwaitingLength:
		p.handleLength(b)
	case AccumulatingPayload:
		if p.remaining > 0 {
			p.payload = append(p.payload, b)
			p.checksum += b
			p.remaining--
			return nil, false
		}
		return p.handleChecksum(b)
	}
	return nil, false
}

func (p *Parser) handleLength(b byte) {
	switch {
	case b > MaxPayloadLength:
		p.stats.LengthViolations++
		log.Warning("Payload length %d larger than %d, dropping frame", b, MaxPayloadLength)
		p.report(ErrPayloadLength{Length: b})
		p.Reset()
	case b == MaxPayloadLength:
		// another sync byte, keep waiting for the length
	default:
		log.Debug("Valid packet available, length %d", b)
		p.remaining = b
		p.phase = AccumulatingPayload
	}
}

func (p *Parser) handleChecksum(b byte) ([]Record, bool) {
	defer p.Reset()

	expected := ^p.checksum
	if b != expected {
		p.stats.ChecksumFailures++
		log.Warning("Checksum failed: expected 0x%02x received 0x%02x (skipping)", expected, b)
		p.report(ErrChecksum{Expected: expected, Received: b})
		return nil, false
	}

	records, err := Decode(p.payload)
	if err != nil {
		p.stats.TruncatedFrames++
		p.report(err)
	}
	p.stats.Frames++
	p.stats.Records += uint64(len(records))
	return records, true
}

func (p *Parser) report(err error) {
	if p.OnError != nil {
		p.OnError(err)
	}
}
