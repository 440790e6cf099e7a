package queue

type SortStrategy = byte

const (
	MergeSort SortStrategy = iota
	SelectionSort
)

func (q *Queue) Sort() {
	if q == nil {
		return
	}

	switch q.strategy {
	case SelectionSort:
		q.SelectionSort()
	default:
		q.MergeSort()
	}
}

func (q *Queue) MergeSort() {
	if q == nil || q.size < 2 {
		return
	}

	q.head = mergeSort(q.head)
	q.tail = q.head
	for q.tail.next != nil {
		q.tail = q.tail.next
	}
}

func mergeSort(head *node) *node {
	if head == nil || head.next == nil {
		return head
	}

	slow, fast := head, head.next
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
	}
	right := slow.next
	slow.next = nil

	return merge(mergeSort(head), mergeSort(right))
}

// Ties take from left, which keeps equal values in their original order.
func merge(left, right *node) *node {
	var dummy node
	tail := &dummy
	for left != nil && right != nil {
		if NatCaseCompare(left.value, right.value) <= 0 {
			tail.next, left = left, left.next
		} else {
			tail.next, right = right, right.next
		}
		tail = tail.next
	}

	if left != nil {
		tail.next = left
	} else {
		tail.next = right
	}
	return dummy.next
}

// SelectionSort repeatedly splices the smallest remaining node to the front
// of the unsorted suffix.
func (q *Queue) SelectionSort() {
	if q == nil || q.size < 2 {
		return
	}

	for front := &q.head; (*front).next != nil; front = &(*front).next {
		minLink := front
		for link := &(*front).next; *link != nil; link = &(*link).next {
			if NatCaseCompare((*link).value, (*minLink).value) < 0 {
				minLink = link
			}
		}
		if minLink == front {
			continue
		}

		smallest := *minLink
		*minLink = smallest.next
		smallest.next = *front
		*front = smallest
	}

	q.tail = q.head
	for q.tail.next != nil {
		q.tail = q.tail.next
	}
}

// Sorted reports whether no adjacent pair is out of order.
func (q *Queue) Sorted() bool {
	if q == nil {
		return true
	}

	for curr := q.head; curr != nil && curr.next != nil; curr = curr.next {
		if NatCaseCompare(curr.value, curr.next.value) > 0 {
			return false
		}
	}
	return true
}
