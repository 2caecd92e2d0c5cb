package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ID:      fmt.Sprintf("doc_slide_%03d", i+1),
			Content: fmt.Sprintf("Summary: slide %d", i+1),
			Type:    RecordTypeSlide,
		}
	}
	return records
}

// TestBatchRecords_Boundary tests the 97-records/96-max boundary: exactly
// two batches of 96 and 1.
func TestBatchRecords_Boundary(t *testing.T) {
	batches, err := BatchRecords(makeRecords(97), 96)

	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 96)
	assert.Len(t, batches[1], 1)
}

// TestBatchRecords_Exact tests a record count that divides evenly.
func TestBatchRecords_Exact(t *testing.T) {
	batches, err := BatchRecords(makeRecords(40), 20)

	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 20)
	assert.Len(t, batches[1], 20)
}

// TestBatchRecords_OrderPreserving tests concat(batches) == records.
func TestBatchRecords_OrderPreserving(t *testing.T) {
	records := makeRecords(25)
	batches, err := BatchRecords(records, 7)
	require.NoError(t, err)

	var flat []Record
	for _, b := range batches {
		assert.LessOrEqual(t, len(b), 7)
		flat = append(flat, b...)
	}

	assert.Equal(t, records, flat)
}

// TestBatchRecords_Empty tests that no records yields no batches.
func TestBatchRecords_Empty(t *testing.T) {
	batches, err := BatchRecords(nil, 96)

	require.NoError(t, err)
	assert.Empty(t, batches)
}

// TestBatchRecords_InvalidSize tests size <= 0 is a configuration error.
func TestBatchRecords_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := BatchRecords(makeRecords(3), size)
		assert.ErrorIs(t, err, ErrConfiguration)
	}
}

// TestBatchRecords_SingleBatch tests fewer records than max.
func TestBatchRecords_SingleBatch(t *testing.T) {
	batches, err := BatchRecords(makeRecords(5), 96)

	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 5)
}
