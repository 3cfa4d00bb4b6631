package domain

// Well-known paths of the tree store's own metadata.
const (
	// ErrorPattern matches every error report the store keeps.
	ErrorPattern = "/augeas//error"
	// FilesRoot is where file contents are mounted.
	FilesRoot = "/files"
	// LoadRoot is where transforms are registered.
	LoadRoot = "/augeas/load"

	// ErrorTypePutFailed is the category of errors raised when a lens cannot
	// serialize a modified tree.
	ErrorTypePutFailed = "put_failed"
)
