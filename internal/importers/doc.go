// Package importers turns browsing history into documents.
//
// # Architecture
//
// A harvest follows a simple flow:
//
//	history.Source → []Item + [][]Visit → Converter → Conversion → DocumentWriter → Storage
//
// The Converter is pure: it never touches storage and, given the same input
// and the same clock and nonce source, always produces the same documents.
// Page and visit ids are derived from the provider's own ids, so converting
// the same history twice yields colliding ids, and the writer drops the
// second copy. That is what makes repeated harvests idempotent.
//
// # Referrers
//
// Providers number visits with their own ids. The Converter assigns every
// visit its document id first and only then resolves referrers, so a visit
// may refer to any other visit of the same batch regardless of order. A
// referrer outside the batch is dropped.
package importers
