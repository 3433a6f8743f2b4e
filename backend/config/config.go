package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type HTTP struct {
	Host string
	Port int
}

func (h HTTP) Addr() string { return fmt.Sprintf("%s:%d", h.Host, h.Port) }

type DB struct {
	Driver string
	Path   string
	Host   string
	Port   int
	User   string
	Pass   string
	Name   string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type BootstrapAdmin struct {
	Name     string
	Username string
	Password string
}

type Auth struct {
	OpenRegistration bool
	BootstrapAdmin   BootstrapAdmin
}

type Log struct {
	Level string
	Path  string
}

type Config struct {
	HTTP HTTP
	DB   DB
	JWT  struct {
		Secret string
		Issuer string
		ExpMin int
	}
	Redis Redis
	CORS  struct {
		Origins []string
	}
	Auth Auth
	Log  Log
}

// New returns a viper instance with every default set. Env vars prefixed
// TASKTRACKER override file values (TASKTRACKER_BACKEND_JWT_SECRET).
func New(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix("tasktracker")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend.http.host", "0.0.0.0")
	v.SetDefault("backend.http.port", 3001)
	v.SetDefault("backend.db.driver", "sqlite")
	v.SetDefault("backend.db.path", "database.db")
	v.SetDefault("backend.db.host", "127.0.0.1")
	v.SetDefault("backend.db.port", 3306)
	v.SetDefault("backend.db.user", "root")
	v.SetDefault("backend.db.pass", "")
	v.SetDefault("backend.db.name", "task_tracker")
	v.SetDefault("backend.jwt.secret", "dev-secret")
	v.SetDefault("backend.jwt.issuer", "task-tracker")
	v.SetDefault("backend.jwt.exp_min", 0)
	v.SetDefault("backend.redis.addr", "")
	v.SetDefault("backend.redis.db", 0)
	v.SetDefault("backend.cors.origins", []string{"*"})
	v.SetDefault("backend.auth.open_registration", true)
	v.SetDefault("backend.auth.bootstrap_admin.name", "Administrator")
	v.SetDefault("backend.auth.bootstrap_admin.username", "admin")
	v.SetDefault("backend.auth.bootstrap_admin.password", "")
	v.SetDefault("backend.log.level", "info")
	v.SetDefault("backend.log.path", "")
	return v
}

// Load reads the yaml file at path. A missing file is not an error: the
// defaults and environment still produce a usable config.
func Load(path string) (*Config, error) {
	v := New(path)
	if err := read(v); err != nil {
		return nil, err
	}
	return FromViper(v)
}

func read(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		return nil
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTP: HTTP{Host: v.GetString("backend.http.host"), Port: v.GetInt("backend.http.port")},
		DB: DB{
			Driver: strings.ToLower(v.GetString("backend.db.driver")),
			Path:   v.GetString("backend.db.path"),
			Host:   v.GetString("backend.db.host"),
			Port:   v.GetInt("backend.db.port"),
			User:   v.GetString("backend.db.user"),
			Pass:   v.GetString("backend.db.pass"),
			Name:   v.GetString("backend.db.name"),
		},
		Redis: Redis{
			Addr:     v.GetString("backend.redis.addr"),
			Password: v.GetString("backend.redis.password"),
			DB:       v.GetInt("backend.redis.db"),
		},
		Auth: Auth{
			OpenRegistration: v.GetBool("backend.auth.open_registration"),
			BootstrapAdmin: BootstrapAdmin{
				Name:     v.GetString("backend.auth.bootstrap_admin.name"),
				Username: v.GetString("backend.auth.bootstrap_admin.username"),
				Password: v.GetString("backend.auth.bootstrap_admin.password"),
			},
		},
		Log: Log{Level: v.GetString("backend.log.level"), Path: v.GetString("backend.log.path")},
	}
	cfg.CORS.Origins = v.GetStringSlice("backend.cors.origins")

	cfg.JWT.Secret = v.GetString("backend.jwt.secret")
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret"
	}
	cfg.JWT.Issuer = v.GetString("backend.jwt.issuer")
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "task-tracker"
	}
	cfg.JWT.ExpMin = v.GetInt("backend.jwt.exp_min")
	if cfg.JWT.ExpMin < 0 {
		cfg.JWT.ExpMin = 0
	}

	switch cfg.DB.Driver {
	case "sqlite", "mysql":
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return nil, fmt.Errorf("invalid http port %d", cfg.HTTP.Port)
	}
	return cfg, nil
}

// Watch calls onChange with the freshly parsed config each time the file
// changes on disk. Parse failures are passed to onError and the old
// config stays in effect.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		cfg, err := FromViper(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// Read exposes the file read used by Load for callers that keep the viper
// instance around for Watch.
func Read(v *viper.Viper) error { return read(v) }
