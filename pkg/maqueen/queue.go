package maqueen

import "sync"

// CommandQueue buffers frames between the application and the poll loop.
// Enqueue never blocks on bus activity; the lock only covers append and
// drain.
type CommandQueue struct {
	head *frameItem
	tail *frameItem
	size int
	lock sync.Mutex
}

type frameItem struct {
	frame Frame
	next  *frameItem
}

// Enqueue appends a copy of f.
func (q *CommandQueue) Enqueue(f Frame) {
	item := &frameItem{frame: append(Frame(nil), f...)}
	q.lock.Lock()
	if q.head == nil {
		q.head = item
	} else {
		q.tail.next = item
	}
	q.tail = item
	q.size++
	q.lock.Unlock()
}

// Drain removes and returns every queued frame in FIFO order.
func (q *CommandQueue) Drain() []Frame {
	q.lock.Lock()
	head, size := q.head, q.size
	q.head, q.tail, q.size = nil, nil, 0
	q.lock.Unlock()

	frames := make([]Frame, 0, size)
	for item := head; item != nil; item = item.next {
		frames = append(frames, item.frame)
	}
	return frames
}

// Len returns the number of queued frames.
func (q *CommandQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.size
}
