// Package config provides configuration management for the content pipeline.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP control server settings (port, API key, poll interval)
//   - VFS: local content roots and the remote content bucket
//   - Cook: cook-on-demand switch and cook database path
//   - Content: pipeline tuning (workers, queue depth, hot reload watch)
//   - Texture / Script: per content type settings
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Content.Workers)
package config
