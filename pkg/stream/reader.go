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

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/junjunjd/rustymind/pkg/log"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

const DefaultBufferSize = 2048

// Handler receives every decoded record in stream order
type Handler func(thinkgear.Record)

// Reader pumps bytes from a source into a thinkgear.Parser and dispatches
// decoded records to handlers. Handlers run on the goroutine calling Run.
type Reader struct {
	src      io.Reader
	parser   *thinkgear.Parser
	buf      []byte
	handlers []Handler
}

func NewReader(src io.Reader, parser *thinkgear.Parser, bufSize int) *Reader {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Reader{
		src:    src,
		parser: parser,
		buf:    make([]byte, bufSize),
	}
}

// Handle registers a record handler. It must be called before Run.
func (r *Reader) Handle(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Parser returns the parser fed by the reader
func (r *Reader) Parser() *thinkgear.Parser {
	return r.parser
}

// Run reads the source until it is exhausted or ctx is done. A clean end of
// the source returns nil, cancellation returns ctx.Err().
func (r *Reader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.src.Read(r.buf)
		r.feed(r.buf[:n])
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Stream ended: %+v", r.parser.Stats())
				return nil
			}
			return fmt.Errorf("error reading stream: %w", err)
		}
	}
}

func (r *Reader) feed(data []byte) {
	for _, b := range data {
		records, ok := r.parser.Feed(b)
		if !ok {
			continue
		}
		for _, record := range records {
			for _, h := range r.handlers {
				h(record)
			}
		}
	}
}
