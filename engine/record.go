package engine

import "time"

// Record is the latest known state of one topic. It is a plain value type:
// the store swaps whole records, so a snapshot can never observe one
// half-written. Equality of two records is the change fingerprint used by
// the differ, which makes a timestamp-only update a visible change.
type Record struct {
	Name        string    `json:"name" yaml:"name"`
	SizeBytes   uint64    `json:"size_bytes" yaml:"size_bytes"`
	ReceivedAt  time.Time `json:"received_at" yaml:"received_at"`
	DecodedText string    `json:"decoded_text,omitempty" yaml:"decoded_text,omitempty"`
}
