package config

import (
	"os"
	"strings"

	"github.com/envsense/enviroctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultBind           = "0.0.0.0"
	DefaultPort           = 8000
	DefaultInterval       = 5
	DefaultFactor         = 2.25
	DefaultSmoothingCount = 5
	DefaultPressureWindow = 1000
	DefaultLogLevel       = "info"
	DefaultDatabase       = "/var/lib/enviroctl/telemetry.db"
)

type Config struct {
	Bind     string `mapstructure:"bind"`
	Port     int    `mapstructure:"port"`
	Interval int    `mapstructure:"interval"`

	// Enviro marks a board without the particulate sensor.
	Enviro bool `mapstructure:"enviro"`

	Factor            float64 `mapstructure:"temperature_factor"`
	SmoothingCount    int     `mapstructure:"smoothing_count"`
	PressureWindow    int     `mapstructure:"pressure_window"`
	TemperatureOffset float64 `mapstructure:"temperature_offset"`
	HumidityOffset    float64 `mapstructure:"humidity_offset"`

	Latitude   string `mapstructure:"latitude"`
	Longitude  string `mapstructure:"longitude"`
	WAQIAPIKey string `mapstructure:"waqi_api_key"`

	LogLevel string `mapstructure:"log_level"`
	Debug    bool   `mapstructure:"debug"`
	Verbose  bool   `mapstructure:"verbose"`

	Telemetry bool   `mapstructure:"telemetry"`
	Database  string `mapstructure:"database"`

	InfluxDB  InfluxDBConfig  `mapstructure:"influxdb"`
	Luftdaten LuftdatenConfig `mapstructure:"luftdaten"`
	Safecast  SafecastConfig  `mapstructure:"safecast"`
}

type InfluxDBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Token    string `mapstructure:"token"`
	Org      string `mapstructure:"org"`
	Bucket   string `mapstructure:"bucket"`
	Location string `mapstructure:"location"`
	Interval int    `mapstructure:"interval"`
}

type LuftdatenConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Interval int  `mapstructure:"interval"`
}

type SafecastConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DevMode      bool   `mapstructure:"dev_mode"`
	APIKey       string `mapstructure:"api_key"`
	Latitude     string `mapstructure:"latitude"`
	Longitude    string `mapstructure:"longitude"`
	DeviceID     int    `mapstructure:"device_id"`
	LocationName string `mapstructure:"location_name"`
	Interval     int    `mapstructure:"interval"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	setDefaults(v)

	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	fs.StringP("bind", "b", DefaultBind, "Bind address for the metrics server")
	fs.IntP("port", "p", DefaultPort, "Port for the metrics server")
	fs.IntP("interval", "i", DefaultInterval, "Seconds between polling cycles")
	fs.BoolP("enviro", "e", false, "Device is an Enviro (no particulate sensor)")
	fs.Float64P("temp", "t", 0, "Temperature compensation offset")
	fs.Float64P("humid", "u", 0, "Humidity compensation offset")
	fs.BoolP("debug", "d", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.String("log-level", "", "Log level (debug, info, warning, error)")
	fs.Bool("influxdb", false, "Post sensor data to InfluxDB")
	fs.Bool("luftdaten", false, "Post sensor data to Luftdaten")
	fs.Bool("safecast", false, "Post sensor data to Safecast")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// Load configuration from file, if one exists
	if configPath := os.Getenv("ENVIROCTL_CONFIG"); configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("enviroctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	v.SetEnvPrefix("ENVIROCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	// Explicit flags override file and environment values
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "bind":
			val, _ := fs.GetString(f.Name)
			v.Set("bind", val)
		case "port", "interval":
			val, _ := fs.GetInt(f.Name)
			v.Set(f.Name, val)
		case "enviro", "debug", "verbose":
			val, _ := fs.GetBool(f.Name)
			v.Set(f.Name, val)
		case "temp":
			val, _ := fs.GetFloat64(f.Name)
			v.Set("temperature_offset", val)
		case "humid":
			val, _ := fs.GetFloat64(f.Name)
			v.Set("humidity_offset", val)
		case "log-level":
			val, _ := fs.GetString(f.Name)
			v.Set("log_level", val)
		case "influxdb", "luftdaten", "safecast":
			val, _ := fs.GetBool(f.Name)
			v.Set(f.Name+".enabled", val)
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bind", DefaultBind)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("enviro", false)
	v.SetDefault("temperature_factor", DefaultFactor)
	v.SetDefault("smoothing_count", DefaultSmoothingCount)
	v.SetDefault("pressure_window", DefaultPressureWindow)
	v.SetDefault("temperature_offset", 0.0)
	v.SetDefault("humidity_offset", 0.0)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("influxdb.url", "https://us-central1-1.gcp.cloud2.influxdata.com")
	v.SetDefault("influxdb.bucket", "enviro")
	v.SetDefault("influxdb.location", "San Francisco")
	v.SetDefault("influxdb.interval", 5)
	v.SetDefault("luftdaten.interval", 30)
	v.SetDefault("safecast.device_id", 226)
	v.SetDefault("safecast.interval", 300)
}

func validate(config *Config) error {
	errFactory := errors.New()

	switch config.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, config.LogLevel)
	}

	if config.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, config.Interval)
	}

	if config.SmoothingCount <= 0 || config.PressureWindow <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "smoothing_count and pressure_window must be positive")
	}

	return nil
}
