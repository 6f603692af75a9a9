// Package consolidate folds the conversation log into progressively more
// compact memory.
//
// A Summarizer runs after each completed exchange. When the log length hits
// a multiple of its interval it summarizes the recent window into the
// rolling summary and appends that summary to the summary history. A
// Condenser then rotates the newest batch of history records into long-term
// memory, replacing whatever was there.
//
// Both steps are best-effort. A failure leaves the previous memory state in
// place.
package consolidate
