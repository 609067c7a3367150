// Package core provides the foundational domain types and store contracts
// used by statecore. It defines the core abstractions for:
//
//   - Sessions (bounded-lifetime conversational containers with TTL expiry)
//   - Memory entries (immutable, relevance-scored interaction records)
//   - User memory aggregates (append-only per-user interaction logs with
//     preferences and a derived context summary)
//   - Pluggable SessionStore / MemoryStore contracts
//
// The package intentionally keeps implementation concerns (persistence,
// sweeping, scoring) out of scope, exposing small interfaces to enable
// custom backends. Domain types carry no third-party dependencies so that
// any package can depend on core without pulling in storage machinery.
package core
