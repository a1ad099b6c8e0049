package services

import "time"

// TransferOptions parameterizes a catalog transfer. The admin "full clone"
// uses the defaults; the fast path sets Batched (which disables image
// duplication) and copies product rows in batches with their original image
// references.
type TransferOptions struct {
	CopyCategories bool
	CopyProducts   bool
	// CopyImages physically duplicates image blobs into the target's own
	// storage namespace. Ignored when Batched is set.
	CopyImages bool
	// Batched inserts products in fixed-size batches with a small delay
	// between batches as backpressure against the store.
	Batched    bool
	BatchSize  int
	BatchDelay time.Duration
}

// DefaultTransferOptions is the full-clone configuration.
func DefaultTransferOptions() TransferOptions {
	return TransferOptions{
		CopyCategories: true,
		CopyProducts:   true,
		CopyImages:     true,
		BatchSize:      DefaultBatchSize,
		BatchDelay:     DefaultBatchDelay,
	}
}

// FastTransferOptions is the reference-only configuration: batched product
// inserts, no image duplication.
func FastTransferOptions() TransferOptions {
	return TransferOptions{
		CopyCategories: true,
		CopyProducts:   true,
		Batched:        true,
		BatchSize:      DefaultBatchSize,
		BatchDelay:     DefaultBatchDelay,
	}
}

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 300 * time.Millisecond

	// elevatedItemLimit is the sentinel the target's quota is raised to for
	// the duration of a transfer.
	elevatedItemLimit = 100000
)

// ProgressFunc receives transfer milestones. current is monotonically
// non-decreasing and reaches total on completion. Purely observational.
type ProgressFunc func(current, total int, message string)
