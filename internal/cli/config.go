package cli

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("driftscreen")
		viper.SetConfigType("toml")
		if viper.GetString("config") != "" {
			viper.SetConfigFile(viper.GetString("config"))
		} else {
			viper.AddConfigPath("$HOME/.config/driftscreen")
			viper.AddConfigPath("/etc/xdg/driftscreen")
		}
	}

	viper.SetDefault("wallpapers", "~/Pictures/wallpapers")
	viper.SetDefault("shuffle", true)
	viper.SetDefault("delay", 300)
	viper.SetDefault("transition", "random")
	viper.SetDefault("transition_duration", 2.0)
	viper.SetDefault("easing", "ease-in-out")
	viper.SetDefault("scale_mode", "center")
	viper.SetDefault("framerate_limit", 60)
	viper.SetDefault("idle_timeout", 5)
	viper.SetDefault("force_software", false)
	viper.SetDefault("exit_on_input", true)
	viper.SetDefault("debug", false)

	viper.AutomaticEnv() // read environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		// Running without a config file is fine; the defaults cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cobra.CheckErr(err)
		}
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}
