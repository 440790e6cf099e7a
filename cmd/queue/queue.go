package queue

import (
	"errors"
	"strings"
)

var (
	ErrSizeMismatch = errors.New("size does not match the number of linked nodes")
	ErrTailMismatch = errors.New("tail does not point to the last node")
	ErrDangling     = errors.New("head and tail disagree about emptiness")
)

type node struct {
	value string
	next  *node
}

type Queue struct {
	head     *node
	tail     *node
	size     int
	alloc    Allocator
	strategy SortStrategy
}

type Option func(q *Queue)

func WithAllocator(a Allocator) Option {
	return func(q *Queue) {
		if a != nil {
			q.alloc = a
		}
	}
}

func WithSortStrategy(s SortStrategy) Option {
	return func(q *Queue) {
		q.strategy = s
	}
}

// New returns an empty queue, or nil if the allocator refuses it.
func New(opts ...Option) *Queue {
	q := &Queue{alloc: Heap{}, strategy: MergeSort}
	for _, opt := range opts {
		opt(q)
	}

	if !q.alloc.Reserve(BlockQueue, queueSize) {
		return nil
	}
	return q
}

// Free releases every value and node, then the queue itself.
func (q *Queue) Free() {
	if q == nil || q.alloc == nil {
		return
	}

	for curr := q.head; curr != nil; {
		next := curr.next
		q.release(curr)
		curr = next
	}
	q.head, q.tail, q.size = nil, nil, 0
	q.alloc.Release(BlockQueue, queueSize)
	q.alloc = nil
}

func (q *Queue) InsertHead(s string) bool {
	n := q.newNode(s)
	if n == nil {
		return false
	}

	n.next = q.head
	q.head = n
	if q.size == 0 {
		q.tail = n
	}
	q.size++
	return true
}

func (q *Queue) InsertTail(s string) bool {
	n := q.newNode(s)
	if n == nil {
		return false
	}

	if q.size == 0 {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.size++
	return true
}

// RemoveHead detaches the first node. When buf is non-empty the value is
// copied into it, truncated to len(buf)-1 bytes and followed by a zero byte.
func (q *Queue) RemoveHead(buf []byte) bool {
	n := q.detachHead()
	if n == nil {
		return false
	}

	if len(buf) > 0 {
		end := copy(buf[:len(buf)-1], n.value)
		buf[end] = 0
	}
	q.release(n)
	return true
}

func (q *Queue) PopHead() (string, bool) {
	n := q.detachHead()
	if n == nil {
		return "", false
	}

	value := n.value
	q.release(n)
	return value, true
}

func (q *Queue) Size() int {
	if q == nil {
		return 0
	}
	return q.size
}

func (q *Queue) Values() []string {
	if q == nil {
		return nil
	}

	values := make([]string, 0, q.size)
	for curr := q.head; curr != nil; curr = curr.next {
		values = append(values, curr.value)
	}
	return values
}

// Reverse flips every link in place; the old head becomes the tail.
func (q *Queue) Reverse() {
	if q == nil || q.head == nil {
		return
	}

	var prev *node
	curr := q.head
	q.tail = q.head
	for curr != nil {
		next := curr.next
		curr.next = prev
		prev = curr
		curr = next
	}
	q.head = prev
}

// Validate walks the chain and reports the first broken invariant.
func (q *Queue) Validate() error {
	if q == nil {
		return nil
	}
	if (q.head == nil) != (q.tail == nil) || (q.head == nil) != (q.size == 0) {
		return ErrDangling
	}

	count := 0
	var last *node
	for curr := q.head; curr != nil; curr = curr.next {
		count++
		if count > q.size {
			return ErrSizeMismatch
		}
		last = curr
	}

	if count != q.size {
		return ErrSizeMismatch
	}
	if last != q.tail {
		return ErrTailMismatch
	}
	return nil
}

func (q *Queue) newNode(s string) *node {
	if q == nil || q.alloc == nil {
		return nil
	}

	if !q.alloc.Reserve(BlockNode, nodeSize) {
		return nil
	}
	if !q.alloc.Reserve(BlockValue, valueSize(s)) {
		q.alloc.Release(BlockNode, nodeSize)
		return nil
	}
	return &node{value: strings.Clone(s)}
}

func (q *Queue) detachHead() *node {
	if q == nil || q.head == nil {
		return nil
	}

	n := q.head
	q.head = n.next
	n.next = nil
	q.size--
	if q.size == 0 {
		q.tail = nil
	}
	return n
}

func (q *Queue) release(n *node) {
	q.alloc.Release(BlockValue, valueSize(n.value))
	q.alloc.Release(BlockNode, nodeSize)
}
