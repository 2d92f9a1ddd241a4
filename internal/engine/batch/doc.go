// Package batch runs a function over an ordered list of items and reports
// progress after every item.
//
// Items are processed one at a time by default. A processor built with a
// concurrency above one fans out through an errgroup with a bounded limit;
// callers receive each item's index so results can be stored in input order
// regardless of completion order. Key features:
//   - Stop on the first failure, or continue and collect every failure
//   - Progress snapshots delivered serially, safe for UI updates
//   - Context-aware cancellation between items
package batch
