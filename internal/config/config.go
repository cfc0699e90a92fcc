// Package config provides Viper-based configuration loading for the hotel desk.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TelnetConfig holds Telnet console settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// GRPCConfig holds desk server gRPC settings.
type GRPCConfig struct {
	// Host is the bind/connect address for the FrontDesk gRPC service.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the FrontDesk gRPC service.
	Port int `mapstructure:"port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (g GRPCConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// HTTPConfig holds JSON API, event stream, and metrics settings.
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// MetricsPath is where Prometheus metrics are exposed.
	MetricsPath string `mapstructure:"metrics_path"`
	// SSEReplay replays past room events to newly connected stream clients.
	SSEReplay bool `mapstructure:"sse_replay"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" HTTP address.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// HotelConfig holds the inventory topology and allocation constants. These
// are read once at startup and never change while the process runs.
type HotelConfig struct {
	// LayoutFile is an optional YAML layout; when empty RoomsPerFloor is used.
	LayoutFile string `mapstructure:"layout_file"`
	// RoomsPerFloor holds the room count of floor i+1 at index i.
	RoomsPerFloor []int `mapstructure:"rooms_per_floor"`
	// MaxRoomsPerBooking caps a single booking request.
	MaxRoomsPerBooking int `mapstructure:"max_rooms_per_booking"`
	// FloorCost is the travel time in minutes per floor.
	FloorCost int `mapstructure:"floor_cost"`
	// PositionCost is the travel time in minutes per room along a corridor.
	PositionCost int `mapstructure:"position_cost"`
	// OccupancyProbability is the chance a room is Occupied after randomize.
	OccupancyProbability float64 `mapstructure:"occupancy_probability"`
	// ExhaustiveMaxRequest enables exhaustive search for small requests.
	ExhaustiveMaxRequest int `mapstructure:"exhaustive_max_request"`
	// ExhaustiveMaxAvailable enables exhaustive search for sparse inventories.
	ExhaustiveMaxAvailable int `mapstructure:"exhaustive_max_available"`
	// RandomSeed seeds occupancy simulation; 0 selects a crypto source.
	RandomSeed uint64 `mapstructure:"random_seed"`
}

// AdminConfig holds administrative access settings.
type AdminConfig struct {
	// PasswordHash is the bcrypt hash of the admin password. Empty disables
	// admin operations on remote surfaces.
	PasswordHash string `mapstructure:"password_hash"`
}

// Config is the top-level application configuration.
type Config struct {
	Telnet  TelnetConfig  `mapstructure:"telnet"`
	Logging LoggingConfig `mapstructure:"logging"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Hotel   HotelConfig   `mapstructure:"hotel"`
	Admin   AdminConfig   `mapstructure:"admin"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateTelnet(c.Telnet); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGRPC(c.GRPC); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHTTP(c.HTTP); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHotel(c.Hotel); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAdmin(c.Admin); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validPort(p int) bool {
	return p >= 0 && p <= 65535
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if !validPort(t.Port) {
		errs = append(errs, fmt.Sprintf("telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGRPC(g GRPCConfig) error {
	var errs []string
	if g.Host == "" {
		errs = append(errs, "grpc.host must not be empty")
	}
	if !validPort(g.Port) {
		errs = append(errs, fmt.Sprintf("grpc.port must be 0-65535, got %d", g.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if !validPort(h.Port) {
		errs = append(errs, fmt.Sprintf("http.port must be 0-65535, got %d", h.Port))
	}
	if !strings.HasPrefix(h.MetricsPath, "/") {
		errs = append(errs, fmt.Sprintf("http.metrics_path must start with '/', got %q", h.MetricsPath))
	}
	if h.ShutdownTimeout < 0 {
		errs = append(errs, "http.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHotel(h HotelConfig) error {
	var errs []string
	if h.LayoutFile == "" {
		if len(h.RoomsPerFloor) == 0 {
			errs = append(errs, "hotel.rooms_per_floor must not be empty when hotel.layout_file is unset")
		}
		for i, n := range h.RoomsPerFloor {
			if n < 1 || n > 99 {
				errs = append(errs, fmt.Sprintf("hotel.rooms_per_floor[%d] must be 1-99, got %d", i, n))
			}
		}
	}
	if h.MaxRoomsPerBooking < 1 {
		errs = append(errs, fmt.Sprintf("hotel.max_rooms_per_booking must be >= 1, got %d", h.MaxRoomsPerBooking))
	}
	if h.FloorCost < 0 {
		errs = append(errs, fmt.Sprintf("hotel.floor_cost must be >= 0, got %d", h.FloorCost))
	}
	if h.PositionCost < 0 {
		errs = append(errs, fmt.Sprintf("hotel.position_cost must be >= 0, got %d", h.PositionCost))
	}
	if h.OccupancyProbability < 0 || h.OccupancyProbability > 1 {
		errs = append(errs, fmt.Sprintf("hotel.occupancy_probability must be in [0, 1], got %g", h.OccupancyProbability))
	}
	if h.ExhaustiveMaxRequest < 0 {
		errs = append(errs, fmt.Sprintf("hotel.exhaustive_max_request must be >= 0, got %d", h.ExhaustiveMaxRequest))
	}
	if h.ExhaustiveMaxAvailable < 0 {
		errs = append(errs, fmt.Sprintf("hotel.exhaustive_max_available must be >= 0, got %d", h.ExhaustiveMaxAvailable))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAdmin(a AdminConfig) error {
	if a.PasswordHash != "" && !strings.HasPrefix(a.PasswordHash, "$2") {
		return errors.New("admin.password_hash must be a bcrypt hash")
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with HOTEL_ prefix
	v.SetEnvPrefix("HOTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("grpc.host", "127.0.0.1")
	v.SetDefault("grpc.port", 50051)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.metrics_path", "/metrics")
	v.SetDefault("http.sse_replay", false)
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("hotel.layout_file", "")
	v.SetDefault("hotel.rooms_per_floor", []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 7})
	v.SetDefault("hotel.max_rooms_per_booking", 5)
	v.SetDefault("hotel.floor_cost", 2)
	v.SetDefault("hotel.position_cost", 1)
	v.SetDefault("hotel.occupancy_probability", 0.3)
	v.SetDefault("hotel.exhaustive_max_request", 3)
	v.SetDefault("hotel.exhaustive_max_available", 20)
	v.SetDefault("hotel.random_seed", 0)

	v.SetDefault("admin.password_hash", "")
}
