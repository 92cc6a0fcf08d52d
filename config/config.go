package config

import (
	"lendcore/core"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LENDCORE")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	withDefaults(config)
	return nil
}
