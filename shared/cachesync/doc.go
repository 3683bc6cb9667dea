// Package cachesync keeps a local cache of source-backed entities consistent with the
// source. It serves reads from whichever side is usable, detects staleness between the
// two, reconciles the cache in the background and reports refreshed results once.
//
// The package knows nothing about concrete entities. Anything with a stable ID and a
// last-updated timestamp can be coordinated.
package cachesync
