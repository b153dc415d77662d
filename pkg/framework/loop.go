package framework

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
)

// DefaultInterval is the loop period when Interval is zero.
const DefaultInterval = 100 * time.Millisecond

// Loop runs controllers by priority level every Interval.
type Loop struct {
	Interval time.Duration
	// Clock drives the ticker and the iteration time, the wall clock if nil.
	Clock clock.Clock

	controllers [PriorityLevels]controllerList
	runners     []Runnable

	messages messageList
	lock     sync.Mutex

	wakeOnce sync.Once
	wakeUpCh chan struct{}
}

// LoopAdder adds itself to a loop, as controllers, runners or both.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtl struct {
	*Loop
}

type loopIteration struct {
	loopCtl
	ctx           context.Context
	time          time.Time
	priorityLevel int
	messages      messageList
}

type messageList struct {
	head *messageItem
	tail *messageItem
}

type messageItem struct {
	msg  Message
	next *messageItem
}

func (l *messageList) append(item *messageItem) {
	if l.head == nil {
		l.head = item
	} else {
		l.tail.next = item
	}
	l.tail = item
}

func (l *messageList) len() (n int) {
	for item := l.head; item != nil; item = item.next {
		n++
	}
	return
}

// splice moves all of src into l.
func (l *messageList) splice(src *messageList) {
	l.head, l.tail = src.head, src.tail
	src.head, src.tail = nil, nil
}

func (l *messageList) concat(lst *messageList) {
	if lst.head == nil {
		return
	}
	if l.head == nil {
		l.head = lst.head
	} else {
		l.tail.next = lst.head
	}
	l.tail = lst.tail
}

type controllerList struct {
	preHooks    []Controller
	controllers []Controller
	postHooks   []Controller
	lock        sync.Mutex
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets the LoopControl from a runner context.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// CtlCtxFrom gets the ControlContext from an iteration context.
func CtlCtxFrom(ctx context.Context) ControlContext {
	return ctx.Value(loopCtxKey).(ControlContext)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at a priority level. Controllers
// that are also Runnable are started with the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lst := &l.controllers[priorityLevel]
	lst.controllers = append(lst.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background workers started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

func (l *Loop) clock() clock.Clock {
	if l.Clock == nil {
		return clock.New()
	}
	return l.Clock
}

func (l *Loop) wakeUp() chan struct{} {
	l.wakeOnce.Do(func() {
		l.wakeUpCh = make(chan struct{}, 1)
	})
	return l.wakeUpCh
}

// Run implements Runnable. Runners get a context carrying the
// LoopControl; Run returns after all of them exit. A runner failing with
// anything but cancellation stops the loop and Run returns that error.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, &loopCtl{l}))
	for _, r := range l.runners {
		runner.Go(stopOnError(r, cancel))
	}
	defer func() {
		if err := runner.Wait(); err != nil {
			glog.Errorf("loop runners: %v", err)
		}
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := l.clock().Ticker(interval)
	defer ticker.Stop()
	wakeUp := l.wakeUp()
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-ticker.C:
			l.RunIteration(ctx)
		case <-wakeUp:
			l.RunIteration(ctx)
		}
	}
}

func stopOnError(r Runnable, cancel context.CancelCauseFunc) Runnable {
	run := RunFunc(func(ctx context.Context) error {
		err := r.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			cancel(err)
		}
		return err
	})
	if named, ok := r.(Named); ok {
		return NamedRun(named.Name(), run)
	}
	return run
}

// RunOrFail runs the loop and exits the process on failure.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.Background()); err != nil {
		glog.Exit(err)
	}
}

// PreRunAt implements LoopControl.
func (l *Loop) PreRunAt(priorityLevel int, hooks ...Controller) {
	lst := &l.controllers[priorityLevel]
	lst.lock.Lock()
	lst.preHooks = append(lst.preHooks, hooks...)
	lst.lock.Unlock()
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(priorityLevel int, hooks ...Controller) {
	lst := &l.controllers[priorityLevel]
	lst.lock.Lock()
	lst.postHooks = append(lst.postHooks, hooks...)
	lst.lock.Unlock()
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.messages.append(&messageItem{msg: msg})
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUp() <- struct{}{}:
	default:
	}
}

// RunIteration runs every priority level once with the messages posted so
// far.
func (l *Loop) RunIteration(ctx context.Context) {
	iter := &loopIteration{loopCtl: loopCtl{l}, time: l.clock().Now()}
	l.lock.Lock()
	iter.messages.splice(&l.messages)
	l.lock.Unlock()
	iter.ctx = context.WithValue(ctx, loopCtxKey, iter)
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		l.controllers[i].run(iter)
	}
	if glog.V(4) {
		if n := iter.messages.len(); n > 0 {
			glog.Infof("loop: %d messages not taken", n)
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

func (t *loopIteration) Messages() MessageStore {
	return t
}

func (t *loopIteration) PostRun(hooks ...Controller) {
	t.PostRunAt(t.priorityLevel, hooks...)
}

type messageContext struct {
	iter  *loopIteration
	item  *messageItem
	taken bool
	stop  bool
}

func (c *messageContext) CurrentMessage() Message     { return c.item.msg }
func (c *messageContext) MessageTaken()               { c.taken = true }
func (c *messageContext) StopProcessing()             { c.stop = true }
func (c *messageContext) AddMessages(msgs ...Message) { c.iter.AddMessages(msgs...) }

func (t *loopIteration) ProcessMessages(proc MessageProcessor) {
	var msgs, remains messageList
	msgs.splice(&t.messages)
	for msgs.head != nil {
		mctx := &messageContext{iter: t, item: msgs.head}
		msgs.head = msgs.head.next
		mctx.item.next = nil
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains.append(mctx.item)
		}
		if mctx.stop {
			if msgs.head != nil {
				remains.concat(&msgs)
			}
			break
		}
	}
	// Messages added while processing go after the remaining ones.
	remains.concat(&t.messages)
	t.messages = remains
}

func (t *loopIteration) AddMessages(msgs ...Message) {
	for _, msg := range msgs {
		t.messages.append(&messageItem{msg: msg})
	}
}

func (c *controllerList) run(iter *loopIteration) {
	c.lock.Lock()
	ctls := c.preHooks
	c.preHooks = nil
	c.lock.Unlock()
	runControllers(iter, ctls)
	runControllers(iter, c.controllers)
	c.lock.Lock()
	ctls, c.postHooks = c.postHooks, nil
	c.lock.Unlock()
	runControllers(iter, ctls)
}

func runControllers(iter *loopIteration, ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(iter); err != nil {
			name := "controller"
			if named, ok := ctl.(Named); ok {
				name = named.Name()
			}
			glog.Errorf("%s at level %d: %v", name, iter.priorityLevel, err)
		}
	}
}
