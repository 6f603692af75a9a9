// Package memory owns the durable state of the agent.
//
// Persistence model:
//   - Five named artifacts: chat log, rolling summary, summary history,
//     long-term memory, personality profile.
//   - Every artifact is a single text value replaced wholesale on write.
//     The chat log is a JSON-encoded []Turn; summary history is a
//     delimiter-joined sequence of summary records.
//   - Missing artifacts read as their documented default.
//   - Read-modify-write goes through Store.Update, which is a critical section
//     per artifact.
package memory
