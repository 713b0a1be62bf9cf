package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported datastore drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// MinSweepSecretLen is the shortest accepted HMAC secret for sweep tokens.
const MinSweepSecretLen = 16

// envPrefix namespaces environment overrides, e.g. EXPENSES_DB_DRIVER.
const envPrefix = "EXPENSES"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Mail      MailConfig      `mapstructure:"mail"`
	Session   SessionConfig   `mapstructure:"session"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
}

type DBConfig struct {
	Driver   string        `mapstructure:"driver"`
	Path     string        `mapstructure:"path"` // sqlite
	Host     string        `mapstructure:"host"` // mysql
	Port     int           `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Name     string        `mapstructure:"name"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type MailConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

type AuthConfig struct {
	// DistinctLoginErrors tells "email not found" apart from "wrong password"
	// on the login form. Off by default since it leaks account existence.
	DistinctLoginErrors bool `mapstructure:"distinct_login_errors"`
}

type RemindersConfig struct {
	Secret           string `mapstructure:"secret"`
	SchedulerEnabled bool   `mapstructure:"scheduler_enabled"`
	DailyAt          string `mapstructure:"daily_at"` // HH:MM, local to Timezone
	Timezone         string `mapstructure:"timezone"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", "expenses.db")
	v.SetDefault("db.host", "")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "expenses")
	v.SetDefault("db.timeout", 5*time.Second)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.timeout", 10*time.Second)

	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.secure_cookie", false)

	v.SetDefault("auth.distinct_login_errors", false)

	v.SetDefault("reminders.secret", "")
	v.SetDefault("reminders.scheduler_enabled", false)
	v.SetDefault("reminders.daily_at", "08:00")
	v.SetDefault("reminders.timezone", "Local")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configs/config.yml (optional) and EXPENSES_* environment
// overrides into a Config. It does not validate.
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(configPaths) == 0 {
		configPaths = []string{"configs"}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every problem at once so startup fails fast with a full list.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(strings.TrimPrefix(c.Server.Port, ":")); err != nil {
		problems = append(problems, fmt.Sprintf("invalid server.port %q: must be a number", c.Server.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server.port %d: must be between 1 and 65535", port))
	}

	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			problems = append(problems, "db.path is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.DB.Host == "" {
			problems = append(problems, "db.host is required for the mysql driver")
		}
		if c.DB.User == "" {
			problems = append(problems, "db.user is required for the mysql driver")
		}
		if c.DB.Name == "" {
			problems = append(problems, "db.name is required for the mysql driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid db.driver %q: must be %q or %q", c.DB.Driver, DriverSQLite, DriverMySQL))
	}

	if c.Mail.Host == "" {
		problems = append(problems, "mail.host is required")
	}
	if c.Mail.Port < 1 || c.Mail.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid mail.port %d", c.Mail.Port))
	}
	if c.Mail.Username == "" || c.Mail.Password == "" {
		problems = append(problems, "mail.username and mail.password are required")
	}
	if c.Mail.From == "" {
		problems = append(problems, "mail.from is required")
	}

	if c.Session.TTL < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid session.ttl %v: must be at least 1 minute", c.Session.TTL))
	}

	if len(c.Reminders.Secret) < MinSweepSecretLen {
		problems = append(problems, fmt.Sprintf("reminders.secret must be at least %d characters", MinSweepSecretLen))
	}
	if _, _, err := c.Reminders.ParseDailyAt(); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.Reminders.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("invalid reminders.timezone %q: %v", c.Reminders.Timezone, err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ParseDailyAt splits reminders.daily_at into hour and minute.
func (r RemindersConfig) ParseDailyAt() (hour, minute int, err error) {
	t, err := time.Parse("15:04", r.DailyAt)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid reminders.daily_at %q: use HH:MM", r.DailyAt)
	}
	return t.Hour(), t.Minute(), nil
}

// Location resolves reminders.timezone; empty means Local.
func (r RemindersConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}
