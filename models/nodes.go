package models

const gib = 1 << 30

// Node is one entry of GET /nodes.
type Node struct {
	Node    string  `json:"node"`
	Status  string  `json:"status"`
	CPU     float64 `json:"cpu"`
	MaxCPU  int     `json:"maxcpu"`
	Mem     int64   `json:"mem"`
	MaxMem  int64   `json:"maxmem"`
	Uptime  int64   `json:"uptime"`
	Level   string  `json:"level"`
	SSLHash string  `json:"ssl_fingerprint"`
}

func (n Node) Online() bool {
	return n.Status == "online"
}

// CPUPercent converts the 0..1 load reported by the API.
func (n Node) CPUPercent() float64 {
	return n.CPU * 100
}

// MemoryGiB returns used and total memory in GiB.
func (n Node) MemoryGiB() (used, total float64) {
	return float64(n.Mem) / gib, float64(n.MaxMem) / gib
}
