package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "YTNOTES_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.token", typ: kString, env: "YTNOTES_SERVER_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Token },
	},
	{
		key: "generator.api_key", typ: kString, env: "YTNOTES_GENERATOR_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Generator.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Generator.APIKey },
	},
	{
		key: "generator.model", typ: kString, env: "YTNOTES_GENERATOR_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Generator.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Generator.Model },
	},
	{
		key: "generator.base_url", typ: kString, env: "YTNOTES_GENERATOR_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Generator.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Generator.BaseURL },
	},
	{
		key: "cache.backend", typ: kString, env: "YTNOTES_CACHE_BACKEND",
		apply:   func(cfg *Config, v any) { cfg.Cache.Backend = v.(string) },
		extract: func(cfg Config) any { return cfg.Cache.Backend },
	},
	{
		key: "cache.redis_addr", typ: kString, env: "YTNOTES_CACHE_REDIS_ADDR",
		apply:   func(cfg *Config, v any) { cfg.Cache.RedisAddr = v.(string) },
		extract: func(cfg Config) any { return cfg.Cache.RedisAddr },
	},
	{
		key: "cache.redis_ttl", typ: kString, env: "YTNOTES_CACHE_REDIS_TTL",
		apply:   func(cfg *Config, v any) { cfg.Cache.RedisTTL = v.(string) },
		extract: func(cfg Config) any { return cfg.Cache.RedisTTL },
	},
	{
		key: "storage.data_dir", typ: kString, env: "YTNOTES_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "fetch.preferred_lang", typ: kString, env: "YTNOTES_FETCH_PREFERRED_LANG",
		apply:   func(cfg *Config, v any) { cfg.Fetch.PreferredLang = v.(string) },
		extract: func(cfg Config) any { return cfg.Fetch.PreferredLang },
	},
	{
		key: "fetch.min_segments", typ: kInt, env: "YTNOTES_FETCH_MIN_SEGMENTS",
		apply:   func(cfg *Config, v any) { cfg.Fetch.MinSegments = v.(int) },
		extract: func(cfg Config) any { return cfg.Fetch.MinSegments },
	},
	{
		key: "fetch.min_chars", typ: kInt, env: "YTNOTES_FETCH_MIN_CHARS",
		apply:   func(cfg *Config, v any) { cfg.Fetch.MinChars = v.(int) },
		extract: func(cfg Config) any { return cfg.Fetch.MinChars },
	},
	{
		key: "fetch.max_attempts", typ: kInt, env: "YTNOTES_FETCH_MAX_ATTEMPTS",
		apply:   func(cfg *Config, v any) { cfg.Fetch.MaxAttempts = v.(int) },
		extract: func(cfg Config) any { return cfg.Fetch.MaxAttempts },
	},
	{
		key: "synthesis.direct_ceiling", typ: kInt, env: "YTNOTES_SYNTHESIS_DIRECT_CEILING",
		apply:   func(cfg *Config, v any) { cfg.Synthesis.DirectCeiling = v.(int) },
		extract: func(cfg Config) any { return cfg.Synthesis.DirectCeiling },
	},
	{
		key: "synthesis.chunk_size", typ: kInt, env: "YTNOTES_SYNTHESIS_CHUNK_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Synthesis.ChunkSize = v.(int) },
		extract: func(cfg Config) any { return cfg.Synthesis.ChunkSize },
	},
	{
		key: "synthesis.max_chunks", typ: kInt, env: "YTNOTES_SYNTHESIS_MAX_CHUNKS",
		apply:   func(cfg *Config, v any) { cfg.Synthesis.MaxChunks = v.(int) },
		extract: func(cfg Config) any { return cfg.Synthesis.MaxChunks },
	},
	{
		key: "synthesis.group_size", typ: kInt, env: "YTNOTES_SYNTHESIS_GROUP_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Synthesis.GroupSize = v.(int) },
		extract: func(cfg Config) any { return cfg.Synthesis.GroupSize },
	},
	{
		key: "log.level", typ: kString, env: "YTNOTES_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
