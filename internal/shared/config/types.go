package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	FrontendURL    string   `mapstructure:"frontend_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ProviderConfig holds the MDM provider API settings.
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	OrganizationID string `mapstructure:"organization_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (p *ProviderConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// SweeperConfig controls the timer cleanup scheduler.
type SweeperConfig struct {
	IntervalMinutes     int `mapstructure:"interval_minutes"`
	StartupDelaySeconds int `mapstructure:"startup_delay_seconds"`
	CallTimeoutSeconds  int `mapstructure:"call_timeout_seconds"`
	WarningWindowHours  int `mapstructure:"warning_window_hours"`
}

func (s *SweeperConfig) Interval() time.Duration {
	if s.IntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.IntervalMinutes) * time.Minute
}

func (s *SweeperConfig) StartupDelay() time.Duration {
	if s.StartupDelaySeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.StartupDelaySeconds) * time.Second
}

func (s *SweeperConfig) CallTimeout() time.Duration {
	if s.CallTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.CallTimeoutSeconds) * time.Second
}

func (s *SweeperConfig) WarningWindow() time.Duration {
	if s.WarningWindowHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.WarningWindowHours) * time.Hour
}
