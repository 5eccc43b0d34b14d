// Package config manages supervisor settings stored at ~/.bootkeeper/config.yaml.
// Values resolve in viper's usual order: BOOTKEEPER_* environment variables,
// then the config file, then the defaults registered here.
package config
