package app

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veltrack-io/veltrack/pkg/log"
)

const configFlagName = "config"

// envPrefix namespaces the environment variables every binary honors,
// e.g. VELTRACK_MQTT_BROKER for --mqtt.broker.
const envPrefix = "VELTRACK"

func addConfigFlag(cmd *cobra.Command, name string) {
	cmd.PersistentFlags().StringP(configFlagName, "c", "",
		fmt.Sprintf("Path to the %s configuration file.", name))
}

// bindConfig layers configuration sources: flag defaults, then the config
// file, then environment variables, then explicit flags.
func bindConfig(cmd *cobra.Command, opts CliOptions) error {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if cfgFile, _ := cmd.Flags().GetString(configFlagName); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}

		// Reload on edit. Changes only affect option values read after this
		// point; running servers keep their bound addresses.
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Info("Config file changed", "file", e.Name)
			if err := v.Unmarshal(opts); err != nil {
				log.Error(err, "Failed to apply changed config")
			}
		})
		v.WatchConfig()
	}

	return v.Unmarshal(opts)
}
