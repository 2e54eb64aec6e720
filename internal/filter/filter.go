package filter

import "context"

// Filter is a single step in the text processing pipeline.
type Filter interface {
	// Name returns the filter name for logging.
	Name() string

	// Process processes the filter context. It may set the verdict or
	// produce side effects such as writing a decision record.
	// Returning an error aborts the filter chain.
	Process(ctx context.Context, fc *FilterContext) error
}
