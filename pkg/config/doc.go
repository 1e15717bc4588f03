// Package config loads typed configuration structs from environment
// variables, reading a .env file once per process if one exists.
//
// Each package owns its Config struct with caarlos0/env tags. Load parses a
// struct type once and caches the result, so repeated calls from different
// parts of the program see the same values.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
package config
