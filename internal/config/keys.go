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
	key   string
	typ   keyType
	env   string
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "DAYBOOK_SERVER_HOST",
		apply: func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
	},
	{
		key: "server.port", typ: kInt, env: "DAYBOOK_SERVER_PORT",
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "DAYBOOK_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		key: "storage.static_dir", typ: kString, env: "DAYBOOK_STATIC_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.StaticDir = v.(string) },
	},
	{
		key: "journal.recent_count", typ: kInt, env: "DAYBOOK_RECENT_COUNT",
		apply: func(cfg *Config, v any) { cfg.Journal.RecentCount = v.(int) },
	},
	{
		key: "log.level", typ: kString, env: "DAYBOOK_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
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
