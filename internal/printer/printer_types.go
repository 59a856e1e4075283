// Package printer contains shared types to avoid import cycles.
package printer

// SubnetKey identifies a /24 network, e.g. "192.168.1.0".
type SubnetKey string

// String returns the dotted-quad form
func (k SubnetKey) String() string { return string(k) }

// Spec describes one printer the catalog expects on a subnet.
// Model and Port are optional installer hints.
type Spec struct {
	Name  string `json:"name" yaml:"name"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	Port  string `json:"port,omitempty" yaml:"port,omitempty"`
}

// InstallModel returns the driver model name passed to the OS installer.
func (s Spec) InstallModel() string {
	if s.Model != "" {
		return s.Model
	}
	return s.Name
}

// InstallPort returns the port passed to the OS installer.
func (s Spec) InstallPort() string {
	if s.Port != "" {
		return s.Port
	}
	return "//" + s.Name
}

// Summary provides a lightweight overview for health checks
type Summary struct {
	Status         string    `json:"status"` // "ok", "warning", "error"
	Subnet         SubnetKey `json:"subnet,omitempty"`
	ExpectedCount  int       `json:"expected_count"`
	InstalledCount int       `json:"installed_count"`
	Error          string    `json:"error,omitempty"`
}

// DetailDTO is the JSON response format for one expected printer
type DetailDTO struct {
	Name      string `json:"name"`
	Model     string `json:"model"`
	Installed bool   `json:"installed"`
}
