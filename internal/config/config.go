package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Discord   DiscordConfig
	Bot       BotConfig
	Server    ServerConfig
	Log       LogConfig
	Providers ProvidersConfig
	Tracing   TracingConfig
	App       AppConfig
}

// DiscordConfig holds the bot credentials
type DiscordConfig struct {
	Token    string
	GuildID  string // optional; when set, messages from other guilds are ignored
	ClientID string // optional; used to log an invite URL
}

// BotConfig holds chat command settings
type BotConfig struct {
	Prefix string
}

// ServerConfig holds ops API configuration
type ServerConfig struct {
	Enabled bool
	Host    string // loopback by default; the preview endpoint is unauthenticated
	Port    int
	GinMode string // debug, release, test
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// ProvidersConfig holds upstream endpoints. Empty values fall back to the public services.
type ProvidersConfig struct {
	GeocodeURL   string
	ForecastURL  string
	RadarURL     string
	GeoserverURL string
	UserAgent    string
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool
	ZipkinURL   string
	ServiceName string
}

// AppConfig holds reply settings
type AppConfig struct {
	ExtendedPeriods int     // Forecast periods listed after the lead line in weather replies
	BoundsPadding   float64 // Degrees added around the location for the wind overlay
}

// Load reads configuration from a .env file, a config file and environment variables
func Load() (*Config, error) {
	// Values already in the environment win over .env
	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.weatherbot")

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("WEATHERBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials keep their historical unprefixed names
	_ = v.BindEnv("discord.token", "DISCORD_TOKEN", "WEATHERBOT_DISCORD_TOKEN")
	_ = v.BindEnv("discord.guildID", "GUILD_ID", "WEATHERBOT_DISCORD_GUILDID")
	_ = v.BindEnv("discord.clientID", "CLIENT_ID", "WEATHERBOT_DISCORD_CLIENTID")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord.token", "")
	v.SetDefault("discord.guildID", "")
	v.SetDefault("discord.clientID", "")
	v.SetDefault("bot.prefix", "!")
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("providers.geocodeURL", "")
	v.SetDefault("providers.forecastURL", "")
	v.SetDefault("providers.radarURL", "https://radar.weather.gov/ridge/lite")
	v.SetDefault("providers.geoserverURL", "https://opengeo.ncep.noaa.gov/geoserver")
	v.SetDefault("providers.userAgent", "WeatherBot/1.0 (github.com/PerryMapping/WeatherBot)")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.zipkinURL", "http://localhost:9411/api/v2/spans")
	v.SetDefault("tracing.serviceName", "weatherbot")
	v.SetDefault("app.extendedPeriods", 0)
	v.SetDefault("app.boundsPadding", 3.0)
}

// ErrMissingToken is returned when no bot token is configured
var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Validate checks the settings the bot cannot start without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return ErrMissingToken
	}
	if c.Bot.Prefix == "" {
		return errors.New("bot.prefix must not be empty")
	}
	if c.App.ExtendedPeriods < 0 {
		return fmt.Errorf("app.extendedPeriods must not be negative, got %d", c.App.ExtendedPeriods)
	}
	return nil
}

// GetServerAddr returns the server address in the format "host:port"
func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// InviteURL returns the OAuth2 URL that adds the bot to a server, or "" without a client ID
func (c *Config) InviteURL() string {
	if c.Discord.ClientID == "" {
		return ""
	}
	// 84992 = View Channels + Send Messages + Embed Links + Read Message History
	return fmt.Sprintf("https://discord.com/oauth2/authorize?client_id=%s&scope=bot&permissions=84992", c.Discord.ClientID)
}

// NewLogger creates a new slog.Logger based on the configuration
func (c *Config) NewLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Choose handler based on format
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
