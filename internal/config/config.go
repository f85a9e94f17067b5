package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string         `mapstructure:"mode"`
	Port       int            `mapstructure:"port"`
	Secret     string         `mapstructure:"secret"`
	LogLevel   string         `mapstructure:"log_level"`

	// TrustedProxies may set the client address through X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	Room       RoomConfig     `mapstructure:"room"`
	Signal     SignalConfig   `mapstructure:"signal"`
	Monitor    MonitorConfig  `mapstructure:"monitor"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`
	Feedback   FeedbackConfig `mapstructure:"feedback"`
	ICEServers []string       `mapstructure:"ice_servers"`
}

type RoomConfig struct {
	Name     string `mapstructure:"name"`
	Topology string `mapstructure:"topology"`
	Identity string `mapstructure:"identity"`
	Alias    string `mapstructure:"alias"`
}

type SignalConfig struct {
	URL          string        `mapstructure:"url"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MonitorConfig points at the collector. An empty URL logs calls instead.
type MonitorConfig struct {
	URL          string        `mapstructure:"url"`
	AppID        string        `mapstructure:"app_id"`
	AppSecret    string        `mapstructure:"app_secret"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	AckTimeout   time.Duration `mapstructure:"ack_timeout"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type FeedbackConfig struct {
	RatePerMinute float64 `mapstructure:"rate_per_minute"`
	Burst         int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8090)
	v.SetDefault("secret", "voicestats-dev-secret")
	v.SetDefault("log_level", "info")
	v.SetDefault("trusted_proxies", []string{})

	v.SetDefault("room.name", "main")
	v.SetDefault("room.topology", "group")
	v.SetDefault("room.identity", "")
	v.SetDefault("room.alias", "")

	v.SetDefault("signal.url", "ws://localhost:8080/api/ws/signal")
	v.SetDefault("signal.ping_period", "54s")
	v.SetDefault("signal.read_limit", 32768)
	v.SetDefault("signal.write_timeout", "5s")

	v.SetDefault("monitor.url", "")
	v.SetDefault("monitor.app_id", "")
	v.SetDefault("monitor.app_secret", "")
	v.SetDefault("monitor.send_buffer", 64)
	v.SetDefault("monitor.write_timeout", "5s")
	v.SetDefault("monitor.ping_period", "30s")
	v.SetDefault("monitor.ack_timeout", "10s")

	v.SetDefault("metrics.namespace", "voicestats")

	v.SetDefault("feedback.rate_per_minute", 6)
	v.SetDefault("feedback.burst", 3)

	v.SetDefault("ice_servers", []string{"stun:stun.l.google.com:19302"})
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default). VOICESTATS_*
// environment variables override file values, e.g. VOICESTATS_ROOM_NAME.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile is Load with an explicit file. A missing file falls back to defaults.
func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("VOICESTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Room: %s (%s)\n", cfg.Mode, cfg.Port, cfg.Room.Name, cfg.Room.Topology)
	return &cfg, nil
}
