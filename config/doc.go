// Package config loads speechkit configuration.
//
// Values come from a YAML file (config.yml), an optional .env file and the
// process environment, merged with Viper. Environment variables map onto
// nested keys by splitting on underscores, so SPEECHKIT_AUDIO_TEMP_DIR
// sets audio.temp_dir when the loader runs with WithEnvPrefix("SPEECHKIT").
//
// # Usage
//
//	var cfg speech.Config
//	err := config.LoadConfig("speechkit", &cfg, config.WithEnvPrefix("SPEECHKIT"))
package config
