package domain

import "fmt"

// Batch-size defaults. The index batch limit is a hard cap imposed by the
// managed index's integrated embedding; the sub-batch size keeps individual
// upload request bodies small.
const (
	// DefaultMaxBatchSize is the managed index's per-upsert record limit.
	DefaultMaxBatchSize = 96

	// DefaultSubBatchSize is the network-upload sub-batch size.
	DefaultSubBatchSize = 20
)

// BatchRecords partitions records into contiguous groups of at most maxSize.
// Order is preserved inside and across batches - slide ordering can be
// semantically relevant downstream, so nothing reshuffles. The last batch
// may be smaller. maxSize must be positive.
func BatchRecords(records []Record, maxSize int) ([][]Record, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", ErrConfiguration, maxSize)
	}

	if len(records) == 0 {
		return nil, nil
	}

	batches := make([][]Record, 0, (len(records)+maxSize-1)/maxSize)
	for start := 0; start < len(records); start += maxSize {
		end := start + maxSize
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches, nil
}
