package middleware

import "github.com/aretw0/augtree/pkg/ports"

// Middleware allows wrapping a SnapshotBackend to add behavior.
type Middleware func(ports.SnapshotBackend) ports.SnapshotBackend
