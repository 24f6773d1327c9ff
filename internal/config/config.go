package config

import (
	"fmt"
	"strings"

	"github.com/BlackRRR/persona-bot/internal/app/model"
	"github.com/fsnotify/fsnotify"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "PERSONA"

type Config struct {
	PGConn   *pgxpool.Config `yaml:"pg_conn"`
	TGConfig TGConfig        `yaml:"tg_config"`
	Redis    Redis           `yaml:"redis"`
	Server   Server          `yaml:"server"`
	Dispatch model.Policy    `yaml:"dispatch"`
	Admins   []int64         `yaml:"admins"`
	Assets   string          `yaml:"assets"`

	vp   *viper.Viper
	path string
}

type TGConfig struct {
	BotLang string `yaml:"bot_lang"`
	BotLink string `yaml:"link"`
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"`
}

type Redis struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	CacheTime int    `yaml:"cache_time"`
}

type Server struct {
	MetricsAddr string `yaml:"metrics_addr"`
}

// InitConfig reads config/config.yaml (or the file at path when given) and
// returns the config with the connection string used for migrations.
func InitConfig(path ...string) (*Config, string, error) {
	vp := newViper(path...)

	if err := vp.ReadInConfig(); err != nil {
		return nil, "", errors.Wrap(err, "`Init config` failed to read config")
	}

	var config Config
	config.vp = vp
	config.path = vp.ConfigFileUsed()

	connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?pool_max_conns=%d",
		vp.GetString("db_conn_config.user"),
		vp.GetString("db_conn_config.password"),
		vp.GetString("db_conn_config.host"),
		vp.GetString("db_conn_config.port"),
		vp.GetString("db_conn_config.db_name"),
		vp.GetInt("db_conn_config.pool_max_conns"))

	connForMigrations := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		vp.GetString("db_conn_config.host"),
		vp.GetString("db_conn_config.port"),
		vp.GetString("db_conn_config.user"),
		vp.GetString("db_conn_config.password"),
		vp.GetString("db_conn_config.db_name"))

	pgxConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, "", errors.Wrap(err, "`Init config` failed to parse config")
	}
	config.PGConn = pgxConfig

	config.TGConfig = TGConfig{
		BotLang: vp.GetString("tg_config.bot_lang"),
		BotLink: vp.GetString("tg_config.link"),
		Token:   vp.GetString("tg_config.token"),
		Workers: vp.GetInt("tg_config.workers"),
	}

	config.Redis = Redis{
		Addr:      vp.GetString("redis.addr"),
		Password:  vp.GetString("redis.password"),
		DB:        vp.GetInt("redis.db"),
		CacheTime: vp.GetInt("redis.cache_time"),
	}

	config.Server = Server{
		MetricsAddr: vp.GetString("server.metrics_addr"),
	}

	config.Assets = vp.GetString("assets")

	for _, id := range vp.GetIntSlice("admins") {
		config.Admins = append(config.Admins, int64(id))
	}

	config.Dispatch, err = LoadPolicy(vp)
	if err != nil {
		return nil, "", err
	}

	return &config, connForMigrations, nil
}

func newViper(path ...string) *viper.Viper {
	vp := viper.New()

	if len(path) > 0 && path[0] != "" {
		vp.SetConfigFile(path[0])
	} else {
		vp.AddConfigPath("config")
		vp.SetConfigName("config")
	}

	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	vp.SetDefault("db_conn_config.host", "127.0.0.1")
	vp.SetDefault("db_conn_config.port", "5432")
	vp.SetDefault("db_conn_config.user", "persona")
	vp.SetDefault("db_conn_config.db_name", "persona")
	vp.SetDefault("db_conn_config.pool_max_conns", 10)
	vp.SetDefault("tg_config.bot_lang", "en")
	vp.SetDefault("tg_config.workers", 64)
	vp.SetDefault("redis.cache_time", 60)
	vp.SetDefault("server.metrics_addr", ":9090")
	vp.SetDefault("assets", model.DefaultAssetsDir)
	vp.SetDefault("dispatch.max_results", model.DefaultMaxResults)
	vp.SetDefault("dispatch.default_cache_time", model.DefaultCacheTime)
	vp.SetDefault("dispatch.timeout", model.DefaultTimeout)

	return vp
}

// LoadPolicy reads the dispatch section.
func LoadPolicy(vp *viper.Viper) (model.Policy, error) {
	policy := model.Policy{
		MaxResults:       vp.GetInt("dispatch.max_results"),
		DefaultCacheTime: vp.GetInt("dispatch.default_cache_time"),
		Timeout:          vp.GetDuration("dispatch.timeout"),
		Handlers:         map[string]model.HandlerPolicy{},
	}

	if err := vp.UnmarshalKey("dispatch.handlers", &policy.Handlers); err != nil {
		return model.Policy{}, errors.Wrap(err, "decode dispatch.handlers")
	}
	if policy.Handlers == nil {
		policy.Handlers = map[string]model.HandlerPolicy{}
	}

	if policy.MaxResults <= 0 {
		return model.Policy{}, errors.Errorf("dispatch.max_results must be positive, got %d", policy.MaxResults)
	}
	if policy.DefaultCacheTime < 0 {
		return model.Policy{}, errors.Errorf("dispatch.default_cache_time must not be negative, got %d", policy.DefaultCacheTime)
	}
	if policy.Timeout <= 0 {
		return model.Policy{}, errors.Errorf("dispatch.timeout must be positive, got %s", policy.Timeout)
	}

	return policy, nil
}

// ReloadPolicy reads the config file into a fresh viper instance and returns
// its dispatch section. The watched instance belongs to the watcher goroutine.
func (c *Config) ReloadPolicy() (model.Policy, error) {
	vp := newViper(c.path)
	if err := vp.ReadInConfig(); err != nil {
		return model.Policy{}, errors.Wrap(err, "re-read config")
	}
	return LoadPolicy(vp)
}

// WatchPolicy calls onChange with the new dispatch policy every time the
// config file changes, or onError when the new file is invalid. Callbacks run
// on viper's watcher goroutine, the only reader of c.vp after InitConfig.
func (c *Config) WatchPolicy(onChange func(model.Policy), onError func(error)) {
	c.vp.OnConfigChange(func(event fsnotify.Event) {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}

		policy, err := LoadPolicy(c.vp)
		if err != nil {
			onError(errors.Wrapf(err, "reload %s", event.Name))
			return
		}
		onChange(policy)
	})
	c.vp.WatchConfig()
}
