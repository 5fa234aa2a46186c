// Package vector provides the term-vector representations used by the
// memory subsystem and the similarity scoring between them.
//
// Two representations exist and are never coerced into each other:
//   - Sparse: a term -> weight mapping produced by the lexical featurizer.
//     Absence of a key is a true zero.
//   - Dense: a fixed-order numeric embedding produced by a remote or
//     on-device model. Order is semantically meaningful.
//
// Comparing a sparse vector against a dense one is defined as similarity 0
// rather than an error: retrieval quality degrades, the conversation does not.
package vector
