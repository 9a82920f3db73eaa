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

package srv

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/junjunjd/rustymind/pkg/log"
	"github.com/junjunjd/rustymind/pkg/thinkgear"
)

// Conn is the part of *nats.Conn used by the publisher
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher fans out every record as a JSON envelope on <prefix>.<kind>
type Publisher struct {
	conn   Conn
	prefix string
	// Skip lists record kinds that are not published
	Skip map[string]bool
}

func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		Skip:   map[string]bool{},
	}
}

// ConnectNats connects to the NATS server at url
func ConnectNats(url string) (*nats.Conn, error) {
	log.Info("Connecting to NATS server: %s", url)
	nc, err := nats.Connect(url,
		nats.Name("rustymind"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warning("Disconnected from NATS: %s", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("Reconnected to NATS: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("error connecting to NATS server %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns the subject a record is published on
func (p *Publisher) Subject(r thinkgear.Record) string {
	return fmt.Sprintf("%s.%s", p.prefix, r.Kind())
}

// Publish sends one record
func (p *Publisher) Publish(r thinkgear.Record) error {
	if p.Skip[r.Kind()] {
		return nil
	}
	data, err := thinkgear.MarshalRecord(r)
	if err != nil {
		return err
	}
	subject := p.Subject(r)
	if err := p.conn.Publish(subject, data); err != nil {
		return ErrPublish{Subject: subject, Err: err}
	}
	return nil
}

// Handle publishes the record and logs failures, the stream is never stopped
// by the broker
func (p *Publisher) Handle(r thinkgear.Record) {
	if err := p.Publish(r); err != nil {
		log.Warning("%s", err)
	}
}
