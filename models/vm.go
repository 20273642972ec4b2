package models

type ResourceType string

const (
	QEMU ResourceType = "qemu"
	LXC  ResourceType = "lxc"
)

// DefaultFolder is the folder of every resource without a local assignment.
const DefaultFolder = "Unassigned"

// Resource is a single VM or container entry of /cluster/resources.
// Folder is local only and never sent by the API.
type Resource struct {
	Type   ResourceType `json:"type"`
	VMID   int          `json:"vmid"`
	Status string       `json:"status"`
	Node   string       `json:"node"`
	Name   string       `json:"name"`
	Folder string       `json:"folder,omitempty"`
}

// IsGuest reports whether the resource is a qemu VM or an lxc container.
func (r Resource) IsGuest() bool {
	return r.Type == QEMU || r.Type == LXC
}

// ActionCommand asks for a power action on a guest.
type ActionCommand struct {
	VMID   int    `json:"vmid"`
	Action string `json:"action"`
}
