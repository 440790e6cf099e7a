package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, q *Queue, values ...string) {
	t.Helper()
	for _, v := range values {
		require.True(t, q.InsertTail(v))
	}
}

func TestQueue(t *testing.T) {
	q := New()
	q.InsertTail("5")
	q.InsertTail("7")
	q.InsertTail("9")

	assert.Equal(t, 3, q.Size())
	v, ok := q.PopHead()
	assert.True(t, ok)
	assert.Equal(t, "5", v)
	v, ok = q.PopHead()
	assert.True(t, ok)
	assert.Equal(t, "7", v)
	assert.Equal(t, 1, q.Size())

	q.InsertHead("3")
	assert.Equal(t, []string{"3", "9"}, q.Values())

	v, _ = q.PopHead()
	assert.Equal(t, "3", v)
	v, _ = q.PopHead()
	assert.Equal(t, "9", v)
	assert.Equal(t, 0, q.Size())
	assert.Nil(t, q.head)
	assert.Nil(t, q.tail)

	v, ok = q.PopHead()
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.NoError(t, q.Validate())
}

func TestInsertHeadOnEmpty(t *testing.T) {
	q := New()
	require.True(t, q.InsertHead("x"))
	assert.Equal(t, 1, q.Size())
	assert.Same(t, q.head, q.tail)
	assert.Nil(t, q.head.next)
	assert.NoError(t, q.Validate())
}

func TestInsertTailLinksTail(t *testing.T) {
	q := New()
	fill(t, q, "a", "b")
	first := q.tail
	require.True(t, q.InsertTail("c"))
	assert.Same(t, first.next, q.tail)
	assert.Equal(t, "c", q.tail.value)
	assert.NoError(t, q.Validate())
}

func TestRemoveHeadTruncates(t *testing.T) {
	q := New()
	fill(t, q, "hello")

	buf := []byte{'x', 'x', 'x', 'x'}
	require.True(t, q.RemoveHead(buf[:3]))
	assert.Equal(t, []byte{'h', 'e', 0, 'x'}, buf)
	assert.Equal(t, 0, q.Size())
}

func TestRemoveHeadBuffers(t *testing.T) {
	tests := []struct {
		name  string
		value string
		buf   []byte
		want  []byte
	}{
		{"nil buffer", "hello", nil, nil},
		{"zero capacity", "hello", []byte{}, []byte{}},
		{"capacity one", "hello", []byte{'x'}, []byte{0}},
		{"exact fit", "abc", make([]byte, 4), []byte{'a', 'b', 'c', 0}},
		{"roomy", "ab", []byte{'x', 'x', 'x', 'x'}, []byte{'a', 'b', 0, 'x'}},
		{"empty value", "", []byte{'x', 'x'}, []byte{0, 'x'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New()
			fill(t, q, tt.value, "next")
			require.True(t, q.RemoveHead(tt.buf))
			assert.Equal(t, tt.want, tt.buf)
			assert.Equal(t, 1, q.Size())
			assert.Equal(t, "next", q.head.value)
		})
	}
}

func TestRemoveHeadEmpty(t *testing.T) {
	q := New()
	buf := []byte{'x'}
	assert.False(t, q.RemoveHead(buf))
	assert.Equal(t, []byte{'x'}, buf)
}

func TestValuesAreCopied(t *testing.T) {
	b := []byte("mutable")
	s := string(b)
	q := New()
	fill(t, q, s)
	b[0] = 'M'
	assert.Equal(t, "mutable", q.head.value)
}

func TestNilQueue(t *testing.T) {
	var q *Queue
	assert.False(t, q.InsertHead("a"))
	assert.False(t, q.InsertTail("a"))
	assert.False(t, q.RemoveHead(make([]byte, 8)))
	_, ok := q.PopHead()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Size())
	assert.Nil(t, q.Values())
	assert.NoError(t, q.Validate())
	assert.True(t, q.Sorted())

	assert.NotPanics(t, func() {
		q.Reverse()
		q.Sort()
		q.MergeSort()
		q.SelectionSort()
		q.Free()
	})
}

func TestSizeTracksOperations(t *testing.T) {
	q := New()
	inserted, removed := 0, 0
	for i := 0; i < 50; i++ {
		switch i % 5 {
		case 0, 1:
			if q.InsertTail("t") {
				inserted++
			}
		case 2:
			if q.InsertHead("h") {
				inserted++
			}
		default:
			if q.RemoveHead(nil) {
				removed++
			}
		}
		require.Equal(t, inserted-removed, q.Size())
		require.NoError(t, q.Validate())
	}
}

func TestReverse(t *testing.T) {
	q := New()
	fill(t, q, "a", "b", "c", "d")
	var nodes []*node
	for n := q.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}

	q.Reverse()
	assert.Equal(t, []string{"d", "c", "b", "a"}, q.Values())
	assert.Same(t, nodes[3], q.head)
	assert.Same(t, nodes[0], q.tail)
	assert.NoError(t, q.Validate())

	i := len(nodes) - 1
	for n := q.head; n != nil; n = n.next {
		assert.Same(t, nodes[i], n)
		i--
	}

	q.Reverse()
	assert.Equal(t, []string{"a", "b", "c", "d"}, q.Values())
	assert.Same(t, nodes[0], q.head)
	assert.Same(t, nodes[3], q.tail)
}

func TestReverseSmall(t *testing.T) {
	q := New()
	q.Reverse()
	assert.Equal(t, 0, q.Size())
	assert.NoError(t, q.Validate())

	fill(t, q, "only")
	q.Reverse()
	assert.Same(t, q.head, q.tail)
	assert.NoError(t, q.Validate())
}

func TestReverseDoesNotAllocate(t *testing.T) {
	acct := NewAccountant(1)
	q := New(WithAllocator(acct))
	fill(t, q, "a", "b", "c")
	reserved, released := acct.Reserved(), acct.Released()

	q.Reverse()
	assert.Equal(t, reserved, acct.Reserved())
	assert.Equal(t, released, acct.Released())
}

func TestValidateDetectsCorruption(t *testing.T) {
	q := New()
	fill(t, q, "a", "b", "c")

	q.size = 2
	assert.ErrorIs(t, q.Validate(), ErrSizeMismatch)
	q.size = 3

	q.tail = q.head
	assert.ErrorIs(t, q.Validate(), ErrTailMismatch)
	q.tail = q.head.next.next

	q.head.next.next.next = q.head
	assert.ErrorIs(t, q.Validate(), ErrSizeMismatch)
	q.head.next.next.next = nil

	tail := q.tail
	q.tail = nil
	assert.ErrorIs(t, q.Validate(), ErrDangling)
	q.tail = tail
	assert.NoError(t, q.Validate())
}

func TestFreeReleasesEverything(t *testing.T) {
	acct := NewAccountant(1)
	q := New(WithAllocator(acct))
	require.NotNil(t, q)
	fill(t, q, "apple", "banana", "cherry")
	q.RemoveHead(nil)
	q.InsertHead("date")
	q.Reverse()
	q.Sort()

	q.Free()
	blocks, bytes := acct.Outstanding()
	assert.Equal(t, 0, blocks)
	assert.Equal(t, 0, bytes)
	assert.Equal(t, acct.Reserved(), acct.Released())
	assert.Empty(t, acct.Faults())

	q.Free()
	assert.Empty(t, acct.Faults())
	assert.False(t, q.InsertTail("late"))
	assert.Equal(t, 0, q.Size())
}

func TestFreeEmpty(t *testing.T) {
	acct := NewAccountant(1)
	q := New(WithAllocator(acct))
	q.Free()
	blocks, _ := acct.Outstanding()
	assert.Equal(t, 0, blocks)
	assert.Equal(t, 1, acct.Released())
}
