package mcpconn

// Options
//
// defines identity and keepalive settings shared by every connection a
// registry creates. The struct is populated from CLI flags or a
// configuration file.
type Options struct {
	Name    string `yaml:"name" json:"name,omitempty" short:"n" long:"name" description:"client name"`
	Version string `yaml:"version,omitempty" json:"version,omitempty" short:"v" long:"version" description:"client version"`

	// PingIntervalSeconds overrides the background keepalive interval used
	// to detect transport failures. If <= 0, keepalive is disabled.
	PingIntervalSeconds int `yaml:"pingIntervalSeconds,omitempty" json:"pingIntervalSeconds,omitempty" long:"ping-interval" description:"keepalive interval in seconds"`

	// PingTimeoutSeconds bounds each individual probe; defaults to one
	// second.
	PingTimeoutSeconds int `yaml:"pingTimeoutSeconds,omitempty" json:"pingTimeoutSeconds,omitempty" long:"ping-timeout" description:"keepalive probe timeout in seconds"`
}

func (o *Options) Init() {
	if o.Name == "" {
		o.Name = "MCPConn"
	}
	if o.Version == "" {
		o.Version = "0.1"
	}
}
