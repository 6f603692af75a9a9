// Package runner drives a single request through the memory pipeline.
//
// Streaming flow:
//
//	INIT -> STREAMING -> FINALIZING -> DONE
//	         (any) -> ERROR
//
// Tokens are forwarded to the caller's Sink in generation order as they
// arrive. Only a stream that completes is persisted: the trimmed reply is
// appended to the conversation log and memory consolidation runs before the
// Sink sees Done.
//
// Invariant:
//   - a failed model call or a failed Sink never leaves a partial turn in
//     the log.
package runner
