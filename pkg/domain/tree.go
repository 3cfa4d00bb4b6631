package domain

import "errors"

// ErrSnapshotNotFound is returned by snapshot backends when nothing was saved under a name.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// TreeNode is a detached copy of a tree node. Lenses produce and consume it,
// and snapshot backends persist it.
type TreeNode struct {
	Label    string     `json:"label" yaml:"label" cbor:"1,keyasint"`
	Value    *string    `json:"value,omitempty" yaml:"value,omitempty" cbor:"2,keyasint,omitempty"`
	Children []TreeNode `json:"children,omitempty" yaml:"children,omitempty" cbor:"3,keyasint,omitempty"`
}

// Snapshot is the persisted content of a store's free-standing /files nodes.
type Snapshot struct {
	Name  string     `json:"name" yaml:"name" cbor:"1,keyasint"`
	Nodes []TreeNode `json:"nodes" yaml:"nodes" cbor:"2,keyasint"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
