package queue

import (
	"fmt"
	"math/rand"
	"unsafe"
)

type Block = byte

const (
	BlockQueue Block = iota
	BlockNode
	BlockValue
	blockKinds
)

var blockNames = [blockKinds]string{"queue", "node", "value"}

func BlockName(kind Block) string {
	if kind >= blockKinds {
		return "unknown"
	}
	return blockNames[kind]
}

var (
	queueSize = int(unsafe.Sizeof(Queue{}))
	nodeSize  = int(unsafe.Sizeof(node{}))
)

// Values are accounted with room for a terminator, the way the buffer
// handed to RemoveHead is.
func valueSize(s string) int {
	return len(s) + 1
}

// Allocator accounts for the memory a queue owns. Reserve returning false
// is treated as an allocation failure.
type Allocator interface {
	Reserve(kind Block, size int) bool
	Release(kind Block, size int)
}

// Heap never refuses and keeps no books.
type Heap struct{}

func (Heap) Reserve(Block, int) bool { return true }
func (Heap) Release(Block, int)      {}

// Accountant counts outstanding blocks per kind and can refuse a share of
// reservations while armed.
type Accountant struct {
	// FailRate is the percentage (0-100) of reservations refused while armed.
	FailRate int

	armed    bool
	rnd      *rand.Rand
	blocks   [blockKinds]int
	bytes    [blockKinds]int
	reserved int
	released int
	refused  int
	faults   []string
}

func NewAccountant(seed int64) *Accountant {
	return &Accountant{rnd: rand.New(rand.NewSource(seed))}
}

func (a *Accountant) Arm()    { a.armed = true }
func (a *Accountant) Disarm() { a.armed = false }

func (a *Accountant) Reserve(kind Block, size int) bool {
	if a.armed && a.FailRate > 0 && a.rnd.Intn(100) < a.FailRate {
		a.refused++
		return false
	}

	a.blocks[kind]++
	a.bytes[kind] += size
	a.reserved++
	return true
}

func (a *Accountant) Release(kind Block, size int) {
	if a.blocks[kind] == 0 {
		a.faults = append(a.faults, fmt.Sprintf("release of unreserved %s block (%d bytes)", BlockName(kind), size))
		return
	}
	if a.bytes[kind] < size {
		a.faults = append(a.faults, fmt.Sprintf("release of %d bytes exceeds %d outstanding in %s blocks", size, a.bytes[kind], BlockName(kind)))
		return
	}

	a.blocks[kind]--
	a.bytes[kind] -= size
	a.released++
}

func (a *Accountant) Blocks(kind Block) int {
	return a.blocks[kind]
}

func (a *Accountant) Outstanding() (blocks int, bytes int) {
	for kind := Block(0); kind < blockKinds; kind++ {
		blocks += a.blocks[kind]
		bytes += a.bytes[kind]
	}
	return blocks, bytes
}

func (a *Accountant) Reserved() int { return a.reserved }
func (a *Accountant) Released() int { return a.released }
func (a *Accountant) Refused() int  { return a.refused }

// Faults returns the invalid releases recorded so far and clears them.
func (a *Accountant) Faults() []string {
	faults := a.faults
	a.faults = nil
	return faults
}
