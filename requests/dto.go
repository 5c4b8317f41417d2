package requests

// NodeType selects the factory that builds a node from its definition
type NodeType = string

const (
	TextNodeType    NodeType = "text"
	TriggerNodeType NodeType = "trigger"
	CounterNodeType NodeType = "counter"
	BufferNodeType  NodeType = "buffer"
	DirNodeType     NodeType = "dir"
	LinkNodeType    NodeType = "link"
)

// NodeRequestDTO is the YAML/JSON representation of a node to seed into the tree.
//
// Which optional fields apply depends on Type:
//
//	text     Content
//	trigger  Content, Reveal
//	counter  Content (locked), Unlocked, Threshold, Reveal
//	buffer   Content, Size
//	dir      Sandbox
//	link     Target
type NodeRequestDTO struct {
	// Path of the parent directory relative to the mount root. Missing
	// directories are created on insert. Empty means the root.
	Path string   `yaml:"path" json:"path"`
	Name string   `yaml:"name" json:"name"`
	Type NodeType `yaml:"type" json:"type"`

	Content  string  `yaml:"content,omitempty" json:"content,omitempty"`
	Perm     *uint32 `yaml:"perm,omitempty" json:"perm,omitempty"` // i.e. 0o755 (Default 0777)
	OwnerUID *uint32 `yaml:"owner_uid,omitempty" json:"owner_uid,omitempty"`
	OwnerGID *uint32 `yaml:"owner_gid,omitempty" json:"owner_gid,omitempty"`
	// Size zero-extends a buffer's initial content
	Size    *uint64 `yaml:"size,omitempty" json:"size,omitempty"`
	Target  string  `yaml:"target,omitempty" json:"target,omitempty"`
	Sandbox bool    `yaml:"sandbox,omitempty" json:"sandbox,omitempty"`

	// Reveal lists the nodes inserted once a trigger is read or a counter unlocks
	Reveal    []NodeRequestDTO `yaml:"reveal,omitempty" json:"reveal,omitempty"`
	Threshold int              `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Unlocked  string           `yaml:"unlocked,omitempty" json:"unlocked,omitempty"`
}
