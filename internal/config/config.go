package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "aimsolver.cfg.json"

// PhysicsConfig holds the constants of the projectile model
type PhysicsConfig struct {
	Gravity        float64
	LaunchVelocity float64
	SweepMin       float64
	SweepMax       float64
	SweepStep      float64
	Tolerance      float64
}

// DisplayConfig holds result rendering settings
type DisplayConfig struct {
	MaxHits int `json:"maxHits" mapstructure:"maxHits"`
}

// GeometryConfig holds screen to physics translation settings
type GeometryConfig struct {
	ReferenceWidth float64 `json:"referenceWidth" mapstructure:"referenceWidth"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// GraylogConfig holds the optional GELF log sink settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers default values for every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./aimlogs")

	viper.SetDefault("physics.gravity", 9.81)
	viper.SetDefault("physics.launchVelocity", 100.0)
	viper.SetDefault("physics.sweep.min", -89.0)
	viper.SetDefault("physics.sweep.max", 89.0)
	viper.SetDefault("physics.sweep.step", 1.0)
	viper.SetDefault("physics.tolerance", 1e-6)

	viper.SetDefault("display.maxHits", 5)

	viper.SetDefault("geometry.referenceWidth", 0.0)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "aimsolver")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetPhysicsConfig returns the projectile model constants.
func GetPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Gravity:        viper.GetFloat64("physics.gravity"),
		LaunchVelocity: viper.GetFloat64("physics.launchVelocity"),
		SweepMin:       viper.GetFloat64("physics.sweep.min"),
		SweepMax:       viper.GetFloat64("physics.sweep.max"),
		SweepStep:      viper.GetFloat64("physics.sweep.step"),
		Tolerance:      viper.GetFloat64("physics.tolerance"),
	}
}

// GetDisplayConfig returns the result rendering settings.
func GetDisplayConfig() DisplayConfig {
	return DisplayConfig{
		MaxHits: GetInt("display.maxHits"),
	}
}

// GetGeometryConfig returns the screen translation settings.
func GetGeometryConfig() GeometryConfig {
	return GeometryConfig{
		ReferenceWidth: viper.GetFloat64("geometry.referenceWidth"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      GetBool("otel.enabled"),
		ServiceName:  GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     GetString("otel.endpoint"),
		Insecure:     GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: GetBool("graylog.enabled"),
		Address: GetString("graylog.address"),
	}
}
