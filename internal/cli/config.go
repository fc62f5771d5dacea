package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/followgraph/pkg/pipeline"
)

// Backend names accepted in the config file.
const (
	backendFile  = "file"
	backendMongo = "mongo"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the on-disk configuration. Every field is optional.
//
//	[pipeline]
//	users = "data/users_dict.json.gz"
//	stdev_multiplier = 4.0
//	sample_fraction = 0.0001
//	formats = ["svg", "dot"]
//
//	[storage]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	Pipeline pipeline.Options `toml:"pipeline"`
	Storage  StorageConfig    `toml:"storage"`
	Cache    CacheConfig      `toml:"cache"`
}

// StorageConfig selects where graphs and the random state are kept.
type StorageConfig struct {
	Backend  string `toml:"backend"` // file (default) or mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// CacheConfig selects the graph and layout cache.
type CacheConfig struct {
	Backend  string `toml:"backend"` // file (default), redis or none
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Scope    string `toml:"scope"` // key prefix when several datasets share a cache
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields the zero Config.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			return cfg, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "", backendFile:
	case backendMongo:
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("storage backend %q requires mongo_uri", backendMongo)
		}
	default:
		return fmt.Errorf("invalid storage backend %q (must be one of: file, mongo)", c.Storage.Backend)
	}

	switch c.Cache.Backend {
	case "", backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache backend %q requires redis_url", backendRedis)
		}
	default:
		return fmt.Errorf("invalid cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	return nil
}
