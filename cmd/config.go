package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/edutate/vanessa/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitConfig reads in the config file, .env and environment variables.
func InitConfig() {
	// It's okay if .env doesn't exist.
	_ = godotenv.Load()

	config.SetDefaults()

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		if dir, err := config.GetGlobalConfigDir(); err == nil {
			viper.AddConfigPath(dir)
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	case errors.As(err, &notFound):
		if cfgFileFlag != "" {
			fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
		}
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
	default:
		fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
	}
}
