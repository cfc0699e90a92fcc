package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Telnet: TelnetConfig{
			Host:         "0.0.0.0",
			Port:         4000,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		GRPC: GRPCConfig{
			Host: "127.0.0.1",
			Port: 50051,
		},
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			MetricsPath:     "/metrics",
			ShutdownTimeout: 10 * time.Second,
		},
		Hotel: HotelConfig{
			RoomsPerFloor:          []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 7},
			MaxRoomsPerBooking:     5,
			FloorCost:              2,
			PositionCost:           1,
			OccupancyProbability:   0.3,
			ExhaustiveMaxRequest:   3,
			ExhaustiveMaxAvailable: 20,
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestAddrs(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:4000", cfg.Telnet.Addr())
	assert.Equal(t, "127.0.0.1:50051", cfg.GRPC.Addr())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestDefaultsAreValid(t *testing.T) {
	cfg, err := LoadFromViper(Defaults())
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 7}, cfg.Hotel.RoomsPerFloor)
	assert.Equal(t, 5, cfg.Hotel.MaxRoomsPerBooking)
	assert.Equal(t, 2, cfg.Hotel.FloorCost)
	assert.Equal(t, 1, cfg.Hotel.PositionCost)
	assert.InDelta(t, 0.3, cfg.Hotel.OccupancyProbability, 1e-9)
	assert.Equal(t, 3, cfg.Hotel.ExhaustiveMaxRequest)
	assert.Equal(t, 20, cfg.Hotel.ExhaustiveMaxAvailable)
	assert.Equal(t, uint64(0), cfg.Hotel.RandomSeed)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
telnet:
  host: 127.0.0.1
  port: 4001
  read_timeout: 1m
  write_timeout: 10s
logging:
  level: debug
  format: console
grpc:
  host: 127.0.0.1
  port: 50052
http:
  port: 8081
hotel:
  rooms_per_floor: [4, 4, 2]
  max_rooms_per_booking: 3
  random_seed: 99
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Telnet.Port)
	assert.Equal(t, time.Minute, cfg.Telnet.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 50052, cfg.GRPC.Port)
	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	assert.Equal(t, []int{4, 4, 2}, cfg.Hotel.RoomsPerFloor)
	assert.Equal(t, 3, cfg.Hotel.MaxRoomsPerBooking)
	assert.Equal(t, uint64(99), cfg.Hotel.RandomSeed)
	assert.Equal(t, 2, cfg.Hotel.FloorCost)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0644))

	t.Setenv("HOTEL_LOGGING_LEVEL", "warn")
	t.Setenv("HOTEL_HOTEL_MAX_ROOMS_PER_BOOKING", "4")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Hotel.MaxRoomsPerBooking)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: loud
hotel:
  max_rooms_per_booking: 0
`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "hotel.max_rooms_per_booking")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateGRPCHostEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.GRPC.Host = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateMetricsPath(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.MetricsPath = "metrics"
	assert.Error(t, cfg.Validate())
}

func TestValidateHotelRoomsPerFloor(t *testing.T) {
	cfg := validConfig()
	cfg.Hotel.RoomsPerFloor = nil
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Hotel.RoomsPerFloor = []int{10, 100}
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Hotel.RoomsPerFloor = nil
	cfg.Hotel.LayoutFile = "content/layout.yaml"
	assert.NoError(t, cfg.Validate())
}

func TestValidateHotelProbability(t *testing.T) {
	for _, p := range []float64{-0.1, 1.01} {
		cfg := validConfig()
		cfg.Hotel.OccupancyProbability = p
		assert.Error(t, cfg.Validate(), "p=%g", p)
	}
}

func TestValidateHotelCosts(t *testing.T) {
	cfg := validConfig()
	cfg.Hotel.FloorCost = -1
	cfg.Hotel.PositionCost = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hotel.floor_cost")
	assert.Contains(t, err.Error(), "hotel.position_cost")
}

func TestValidateAdminHash(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.PasswordHash = "plaintext"
	assert.Error(t, cfg.Validate())

	cfg.Admin.PasswordHash = "$2a$10$abcdefghijklmnopqrstuu"
	assert.NoError(t, cfg.Validate())
}

// Property-based tests

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(0, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.GRPC.Port = port
		cfg.HTTP.Port = port
		cfg.Telnet.Port = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, -1),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyMaxRoomsPositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(-100, 100).Draw(t, "max_rooms")
		cfg := validConfig()
		cfg.Hotel.MaxRoomsPerBooking = n
		err := cfg.Validate()
		if (n >= 1) != (err == nil) {
			t.Fatalf("max_rooms_per_booking=%d: err=%v", n, err)
		}
	})
}
