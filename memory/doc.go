// Package memory maintains a rolling, searchable index of a long-running
// role-play conversation so that only the most relevant prior turns are sent
// to the generation caller.
//
// Architecture:
//   - Store: insertion-ordered log of indexed turns, upsert keyed by turn index
//   - Selector: picks the vectorization backend (lexical, remote, on-device)
//     with lexical as the universal fallback
//   - Retriever: scores stored turns against the current input and applies
//     the similarity floor and retrieval cap
//   - Manager: the explicitly constructed context object tying it together,
//     including best-effort persistence
//
// Resilience contract: no operation in this package is fatal to the
// conversational flow. Backend failures degrade to the lexical strategy,
// malformed vectors score zero, and persistence errors are logged and
// swallowed. Memory is a recall aid, not a dependency.
//
// Backends:
//   - lexical: sparse term-frequency vectors, always available
//   - remote: API embeddings (memory/vectorizer/remote)
//   - on-device: local neural feature extraction (memory/vectorizer/onnx),
//     loaded lazily at most once per process
package memory
