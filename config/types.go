package config

// AppConfig is the single configuration record passed once to the
// orchestrator at startup (spec.md §6.6).
type AppConfig struct {
	NetworkEventsURL      string `yaml:"network_events_url" validate:"required"`
	NetworkEventsPort     int    `yaml:"network_events_port" validate:"required,gt=0"`
	NetworkEventsUsername string `yaml:"network_events_username"`
	NetworkEventsPassword string `yaml:"network_events_password"`

	CaCertFile        string `yaml:"ca_cert_file" validate:"required"`
	NetworkLayoutFile string `yaml:"network_layout_file" validate:"required"`

	QuietRouteHostname string `yaml:"quiet_route_hostname"`
	QuietRouteIP       string `yaml:"quiet_route_ip" validate:"omitempty,ip"`
	QuietRoutePort     int    `yaml:"quiet_route_port" validate:"required,gt=0"`

	QuietRouteMaxSlowdownPc  float64 `yaml:"quiet_route_max_slowdown_pc" validate:"gte=0"`
	QuietRouteMinQuietnessPc float64 `yaml:"quiet_route_min_quietness_pc" validate:"gte=0"`
	QuietRouteMaxNPaths      int     `yaml:"quiet_route_max_n_paths" validate:"gte=1"`
}

// Defaults for the three quiet-route tuning parameters, applied by Load
// when the corresponding key is absent from config.yml (spec.md §6.6).
const (
	DefaultQuietRouteMaxSlowdownPc  = 0.10
	DefaultQuietRouteMinQuietnessPc = 0.10
	DefaultQuietRouteMaxNPaths      = 20
)
