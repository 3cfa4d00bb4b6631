/*
Package ports defines the driven ports (interfaces) of the augtree executor.

These interfaces decouple the command language from the systems it drives, so the
executor can work against a libaugeas binding, the bundled in-memory tree or a
test fake alike.

# Key Interfaces

  - TreeStore: the path-addressable configuration tree commands are run against.
  - SnapshotBackend: persistence for tree nodes no lens owns (file, redis, memory).
  - PlaybookSource: named command blocks stored outside the caller (e.g. a Loam repository).
  - Locker: distributed mutual exclusion for runs that share a backing store.
*/
package ports
