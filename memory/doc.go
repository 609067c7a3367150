// Package memory houses the concrete core.MemoryStore implementation: an
// append-only, relevance-ranked episodic memory per user with bounded size
// and age. The store interface and domain types reside in the core package;
// depend on core.MemoryStore in calling code and select this implementation
// at wiring time.
//
// Ranking everywhere uses the key (relevance score descending, timestamp
// descending): capacity truncation, context retrieval and tie-breaks all
// follow it. Relevance is a deterministic write-time heuristic; retrieval by
// meaning is intentionally out of scope and belongs to an external
// vector-retrieval collaborator.
package memory
