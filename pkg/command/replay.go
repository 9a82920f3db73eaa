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

package command

import (
	"context"
	"io"

	"github.com/junjunjd/rustymind/pkg/log"
	"github.com/junjunjd/rustymind/pkg/stream"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

// Echo returns a handler writing every record to out as a JSON line
func Echo(out io.Writer) stream.Handler {
	return func(r thinkgear.Record) {
		data, err := thinkgear.MarshalRecord(r)
		if err != nil {
			log.Error("Error while marshalling %s record: %s", r.Kind(), err)
			return
		}
		data = append(data, '\n')
		if _, err := out.Write(data); err != nil {
			log.Error("Error while writing record: %s", err)
		}
	}
}

// Replay decodes a captured byte stream and writes the records to out as
// JSON lines. It returns the parser counters at the end of the stream.
func Replay(ctx context.Context, src io.Reader, out io.Writer) (thinkgear.Stats, error) {
	parser := thinkgear.NewParser()
	reader := stream.NewReader(src, parser, stream.DefaultBufferSize)
	reader.Handle(Echo(out))
	err := reader.Run(ctx)
	stats := parser.Stats()
	log.Info("Replay done: frames: %d records: %d checksum failures: %d length violations: %d",
		stats.Frames, stats.Records, stats.ChecksumFailures, stats.LengthViolations)
	return stats, err
}
