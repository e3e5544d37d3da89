package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory, without
// its extension.
const FileName = "rulesofwar"

// Settings is the typed view of the loaded configuration.
type Settings struct {
	LogLevel        string
	RulesFile       string
	MapFile         string
	StoragePath     string
	MetricsEnabled  bool
	MetricsDir      string
	NotificationTTL int
}

// Load reads rulesofwar.yaml from configDir on top of the defaults. A
// missing file is not an error. Environment variables prefixed with ROW
// override both, e.g. ROW_STORAGE_PATH.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("rulesFile", "data/rules.yaml")
	viper.SetDefault("mapFile", "data/crossing.yaml")

	viper.SetDefault("storage.path", "rulesofwar.db")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.dir", "metrics")

	viper.SetDefault("notifications.duration", 50)

	viper.SetEnvPrefix("ROW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Get returns the current settings.
func Get() Settings {
	return Settings{
		LogLevel:        viper.GetString("logLevel"),
		RulesFile:       viper.GetString("rulesFile"),
		MapFile:         viper.GetString("mapFile"),
		StoragePath:     viper.GetString("storage.path"),
		MetricsEnabled:  viper.GetBool("metrics.enabled"),
		MetricsDir:      viper.GetString("metrics.dir"),
		NotificationTTL: viper.GetInt("notifications.duration"),
	}
}
