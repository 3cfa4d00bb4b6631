package loam

// PlaybookMetadata is the frontmatter of a playbook document.
// The document body is the command block itself.
type PlaybookMetadata struct {
	// Name overrides the name derived from the file name.
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	// Root is the filesystem root the playbook edits.
	Root             string `json:"root" mapstructure:"root"`
	DiscardOnFailure bool   `json:"discard_on_failure" mapstructure:"discard_on_failure"`
	// Commands holds the block when the document has no body (JSON/YAML playbooks).
	Commands string `json:"commands" mapstructure:"commands"`
}
