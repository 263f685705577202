package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string // Required in X-API-Key when set
}

// StatsResponse describes the served container
type StatsResponse struct {
	Records        int64  `json:"records"`
	ContainerBytes int64  `json:"container_bytes"`
	BuildID        string `json:"build_id"`
	Validated      bool   `json:"validated"`
	Checksum       string `json:"checksum,omitempty"`
}

// VerifyResponse reports a completed validation scan
type VerifyResponse struct {
	Records int `json:"records"`
}
