package comm

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	"github.com/robotalks/maqueen.go/pkg/l1/msgs"
)

// DefaultCommandExpiration is how long a command waits for its reply.
const DefaultCommandExpiration = 1 * time.Second

// ControllerConn implements l1.ControllerConn over a Pipe. Replies are
// matched by sequence; unanswered commands fail with DeadlineExceeded.
type ControllerConn struct {
	Expiration time.Duration
	Clock      clock.Clock

	pipe     Pipe
	seq      uint32
	commands list.List
	seqMap   map[uint32]*commandFuture
	lock     sync.Mutex
}

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.Clock = clock.New()
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.seqMap = make(map[uint32]*commandFuture)
}

// DoCommand implements l1.ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: c.Clock.Now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.result <- l1.Result{Err: err}
		close(f.result)
		return f
	}
	f.elem = c.commands.PushBack(f)
	c.seqMap[f.seq] = f
	return f
}

// Pending returns the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.commands.Len()
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.seqMap[typed.Sequence]
	if f == nil {
		return nil
	}
	c.commands.Remove(f.elem)
	delete(c.seqMap, typed.Sequence)
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.result <- result
	close(f.result)
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	now := c.Clock.Now()
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.commands.Len() > 0 {
		elem := c.commands.Front()
		f := elem.Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		c.commands.Remove(elem)
		delete(c.seqMap, f.seq)
		f.result <- l1.Result{Err: context.DeadlineExceeded}
		close(f.result)
	}
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan l1.Result
}

func (c *commandFuture) ResultChan() <-chan l1.Result {
	return c.result
}
