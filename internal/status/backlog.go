package status

// BacklogSize is how many status blocks are kept while the console is
// unwritable.
const BacklogSize = 10

// backlog is a fixed-capacity FIFO of status blocks awaiting a working
// console. When full, the oldest block is dropped.
// Not safe for concurrent use.
type backlog struct {
	buf      []string
	capacity int
	head     int // next write position
	count    int
	dropped  int
}

func newBacklog(capacity int) *backlog {
	return &backlog{
		buf:      make([]string, capacity),
		capacity: capacity,
	}
}

func (b *backlog) push(block string) {
	if b.count == b.capacity {
		// Overwrite oldest: head is already pointing at it
		b.buf[b.head] = block
		b.head = (b.head + 1) % b.capacity
		b.dropped++
		return
	}
	b.buf[b.head] = block
	b.head = (b.head + 1) % b.capacity
	b.count++
}

func (b *backlog) drainAll() []string {
	if b.count == 0 {
		return nil
	}

	result := make([]string, b.count)
	// Oldest item is at (head - count) mod capacity
	start := (b.head - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		result[i] = b.buf[(start+i)%b.capacity]
	}

	b.count = 0
	b.head = 0
	return result
}

func (b *backlog) len() int {
	return b.count
}
