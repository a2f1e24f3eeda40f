package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigName is the optional config file looked up in the project root
const DefaultConfigName = "leanloop.yaml"

// Load reads configuration from an optional leanloop.yaml under root, then
// the environment. The OpenAI credential resolves, in order: LEANLOOP_ORACLE_API_KEY,
// OPENAI_API_KEY, then an openai_key.txt file next to the config. The result
// is injected explicitly into constructors; nothing here is global state.
func Load(root string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(root, DefaultConfigName))
	v.SetConfigType("yaml")

	v.SetDefault("oracle.model", "gpt-5")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.requests_per_minute", 60)
	v.SetDefault("build.build_timeout_minutes", 20)
	v.SetDefault("build.check_timeout_seconds", 60)
	v.SetDefault("ledger_path", filepath.Join(root, ".agent_runs", "leanloop.ledger.db"))
	v.SetDefault("logging.verbose", false)

	v.SetEnvPrefix("LEANLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Oracle.APIKey == "" {
		// Local development fallback, mirrored from the environment-based
		// credential. Absence is fine; the oracle then always declines.
		if data, err := os.ReadFile(filepath.Join(root, "openai_key.txt")); err == nil {
			cfg.Oracle.APIKey = strings.TrimSpace(string(data))
		}
	}

	return cfg, nil
}
