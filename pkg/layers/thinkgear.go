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

package layers

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/junjunjd/rustymind/pkg/log"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

const (
	// ThinkGearLayerNum identifies the layer
	ThinkGearLayerNum = 2000
	// ThinkGearHeaderSize is SYNC SYNC PLENGTH
	ThinkGearHeaderSize = 3
	// ThinkGearTailSize is CHKSUM
	ThinkGearTailSize = 1
)

// ThinkGearLayer is a single complete ThinkGear frame. Bytes that follow the
// frame in the buffer are decoded as the next ThinkGear frame.
type ThinkGearLayer struct {
	layers.BaseLayer
	Length   uint8
	Checksum uint8
	// Records decoded from the frame payload. The last one is a
	// thinkgear.TruncatedRecord if the payload ends in the middle of a row.
	Records []thinkgear.Record
}

// ThinkGearLayerType is registered in init: the decoder refers back to it
// through NextLayerType.
var ThinkGearLayerType gopacket.LayerType

func init() {
	ThinkGearLayerType = gopacket.RegisterLayerType(ThinkGearLayerNum,
		gopacket.LayerTypeMetadata{Name: "ThinkGearLayerType", Decoder: gopacket.DecodeFunc(DecodeThinkGearLayer)})
}

// LayerType returns the type of the ThinkGear layer in the layer catalog
func (tg *ThinkGearLayer) LayerType() gopacket.LayerType {
	return ThinkGearLayerType
}

// CanDecode returns the set of layer types that this DecodingLayer can decode
func (tg *ThinkGearLayer) CanDecode() gopacket.LayerClass {
	return ThinkGearLayerType
}

// NextLayerType is another ThinkGear frame if there are bytes left after this one
func (tg *ThinkGearLayer) NextLayerType() gopacket.LayerType {
	if len(tg.Payload) > 0 {
		return ThinkGearLayerType
	}
	return gopacket.LayerTypeZero
}

// SerializeTo encodes Records into a frame and writes it to the SerializeBuffer.
// Length and Checksum are updated when opts.FixLengths or opts.ComputeChecksums is set.
// Records without a wire form fail with thinkgear.ErrUnencodableRecord.
func (tg *ThinkGearLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	var payload []byte
	for _, record := range tg.Records {
		var err error
		if payload, err = thinkgear.EncodeRecord(payload, record); err != nil {
			return err
		}
	}
	frame, err := thinkgear.EncodeFrame(payload)
	if err != nil {
		return err
	}
	if !opts.FixLengths {
		frame[2] = tg.Length
	}
	if !opts.ComputeChecksums {
		frame[len(frame)-1] = tg.Checksum
	}
	bytes, err := b.PrependBytes(len(frame))
	if err != nil {
		return err
	}
	copy(bytes, frame)
	if opts.FixLengths {
		tg.Length = frame[2]
	}
	if opts.ComputeChecksums {
		tg.Checksum = frame[len(frame)-1]
	}
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as a ThinkGear frame
func (tg *ThinkGearLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < ThinkGearHeaderSize+ThinkGearTailSize {
		df.SetTruncated()
		return thinkgear.ErrFrameTruncated{Need: ThinkGearHeaderSize + ThinkGearTailSize, Have: len(data)}
	}
	if data[0] != thinkgear.Sync || data[1] != thinkgear.Sync {
		return thinkgear.ErrSync{Received: [2]byte{data[0], data[1]}}
	}

	length := data[2]
	if length >= thinkgear.MaxPayloadLength {
		return thinkgear.ErrPayloadLength{Length: length}
	}
	end := ThinkGearHeaderSize + int(length) + ThinkGearTailSize
	if len(data) < end {
		df.SetTruncated()
		return thinkgear.ErrFrameTruncated{Need: end, Have: len(data)}
	}

	payload := data[ThinkGearHeaderSize : end-ThinkGearTailSize]
	checksum := data[end-1]
	if expected := thinkgear.Checksum(payload); expected != checksum {
		return thinkgear.ErrChecksum{Expected: expected, Received: checksum}
	}

	tg.BaseLayer = layers.BaseLayer{
		Contents: data[:end],
		Payload:  data[end:],
	}
	tg.Length = length
	tg.Checksum = checksum

	records, err := thinkgear.Decode(payload)
	if err != nil {
		log.Warning("ThinkGear frame decoded partially: %s", err)
	}
	tg.Records = records
	return nil
}

func DecodeThinkGearLayer(data []byte, p gopacket.PacketBuilder) error {
	tg := &ThinkGearLayer{}
	err := tg.DecodeFromBytes(data, p)
	if err != nil {
		log.Error("Error while decoding ThinkGear layer: %s", err)
		return err
	}
	p.AddLayer(tg)
	next := tg.NextLayerType()
	if next == gopacket.LayerTypeZero {
		return nil
	}
	return p.NextDecoder(next)
}

// DecodeFrames decodes a buffer of back to back ThinkGear frames. The frames decoded
// before an invalid one are returned together with the error.
func DecodeFrames(data []byte) ([]*ThinkGearLayer, error) {
	packet := gopacket.NewPacket(data, ThinkGearLayerType, gopacket.Default)
	var frames []*ThinkGearLayer
	for _, layer := range packet.Layers() {
		if tg, ok := layer.(*ThinkGearLayer); ok {
			frames = append(frames, tg)
		}
	}
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return frames, errLayer.Error()
	}
	return frames, nil
}
