package mqtt

import (
	"context"
	"io"

	"github.com/robotalks/maqueen.go/pkg/l1"
)

// ReadWriter implements comm.PacketReadWriter on a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	done     chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector subscribes <type>/<id>/msg and publishes <type>/<id>/cmd.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+"/msg", prefix+"/cmd")
}

// ForController subscribes <type>/<id>/cmd and publishes <type>/<id>/msg.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	prefix := ref.Name()
	return p.WithTopics(prefix+"/cmd", prefix+"/msg")
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, Handler(p.handleMsg))
	defer sub.Close()
	defer close(p.done)
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
