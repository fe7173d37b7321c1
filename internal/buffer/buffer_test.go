package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behrlich/go-mtrace/internal/constants"
)

func TestNewCursorStartsAtHeaderLen(t *testing.T) {
	b := New(1024)
	assert.Equal(t, constants.HeaderLen, b.PublishedLen())
}

func TestReserveAdvancesCursorByExactlyN(t *testing.T) {
	b := New(1024)
	off, ok := b.Reserve(10)
	require.True(t, ok)
	assert.Equal(t, constants.HeaderLen, off)
	assert.Equal(t, constants.HeaderLen+10, b.PublishedLen())

	off2, ok := b.Reserve(10)
	require.True(t, ok)
	assert.Equal(t, constants.HeaderLen+10, off2)
}

func TestReserveFailsAndSetsOverflowPastCapacity(t *testing.T) {
	b := New(constants.HeaderLen + 5)
	_, ok := b.Reserve(10)
	assert.False(t, ok)
	assert.True(t, b.Overflowed())
	// cursor must not move on a failed reservation
	assert.Equal(t, constants.HeaderLen, b.PublishedLen())
}

func TestReserveNeverExceedsCapacity(t *testing.T) {
	size := constants.HeaderLen + 42
	b := New(size)
	for {
		_, ok := b.Reserve(10)
		if !ok {
			break
		}
	}
	assert.LessOrEqual(t, b.PublishedLen(), size)
	assert.True(t, b.Overflowed())
}

func TestOverflowAtBufferSize42WithOneWallOnlyRecord(t *testing.T) {
	// buffer_size=42: header(32) + one 10-byte record fits exactly (42),
	// a second reservation must overflow.
	b := New(42)
	off, ok := b.Reserve(10)
	require.True(t, ok)
	assert.Equal(t, 32, off)
	assert.Equal(t, 42, b.PublishedLen())
	assert.False(t, b.Overflowed())

	_, ok = b.Reserve(10)
	assert.False(t, ok)
	assert.True(t, b.Overflowed())
	assert.Equal(t, 42, b.PublishedLen(), "cursor must stay at capacity, not overshoot")
}

func TestConcurrentReserveNeverOverlapsEightWritersTenThousandEventsEach(t *testing.T) {
	const writers = 8
	const eventsPerWriter = 10000
	const recordSize = 10

	b := New(constants.HeaderLen + writers*eventsPerWriter*recordSize)

	offsets := make(chan int, writers*eventsPerWriter)
	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < eventsPerWriter; i++ {
				off, ok := b.Reserve(recordSize)
				require.True(t, ok)
				offsets <- off
			}
		}()
	}
	wg.Wait()
	close(offsets)

	seen := make(map[int]bool, writers*eventsPerWriter)
	for off := range offsets {
		assert.Falsef(t, seen[off], "offset %d reserved twice", off)
		seen[off] = true
	}
	assert.Len(t, seen, writers*eventsPerWriter)
	assert.False(t, b.Overflowed())
	assert.Equal(t, constants.HeaderLen+writers*eventsPerWriter*recordSize, b.PublishedLen())
}
