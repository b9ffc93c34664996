// Package materialize turns a virtual tree into concrete data.
//
// A Factory walks the tree within a Session. The Session owns every memory
// reservation made for the attempt, so a failed attempt is undone by a single
// Release. Two factories are provided:
//
//   - InMemory reads every array eagerly.
//   - Disk turns flat fields into lazy proxies that read through the session's
//     shared cache on first access.
//
// A Strategy pairs a virtual.Merger with a Factory. The importer tries the
// strategies of a Chain in order and moves on only when an attempt fails with
// ErrMemoryExhausted.
package materialize
