package comm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1/msgs"
)

// ErrWrongKind indicates a command was sent as an event or the reverse.
var ErrWrongKind = errors.New("wrong message kind")

// Pipe is a bi-directional message pipe over a PacketReadWriter.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendCommandMsg sends a command or a reply with seq.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsCommand() {
		return fmt.Errorf("%w: %x is not a command", ErrWrongKind, typed.TypeId)
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendEventMsg sends an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsEvent() {
		return fmt.Errorf("%w: %x is not an event", ErrWrongKind, typed.TypeId)
	}
	return p.SendTyped(typed)
}

// SendTyped sends an envelope.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable. It reads until the transport fails and closes
// the transport when ctx is done. A command
// of unknown type is answered with CommandErr; other undecodable packets
// are dropped.
func (p *Pipe) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { p.Close() })
	defer stop()
	defer p.Close()
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		typed, err := msgs.DecodeTyped(pkt)
		if err != nil {
			glog.Warningf("pipe: drop packet: %v", err)
			continue
		}
		msg, err := typed.Decode()
		if err != nil {
			if typed.IsCommand() && !typed.IsReply() {
				if err = p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence); err != nil {
					return err
				}
			} else {
				glog.V(2).Infof("pipe: drop %x: %v", typed.TypeId, err)
			}
			continue
		}
		if h := p.Handler; h != nil {
			if err = h.HandleTypedMsg(ctx, msg, typed); err != nil {
				return err
			}
		}
	}
}

// Close implements io.Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	if adder, ok := p.ReadWriter.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := p.ReadWriter.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(p)
}
