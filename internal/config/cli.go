package config

import "github.com/Alia5/catinput/internal/cmd"

type LogConfig struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"CATINPUT_LOG_LEVEL"`
	Format  string `help:"Log output format" default:"text" enum:"text,json" env:"CATINPUT_LOG_FORMAT"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"CATINPUT_LOG_FILE"`
	RawFile string `help:"Raw frame log file path (default: none; with level trace, frames go to stderr)" env:"CATINPUT_LOG_RAW_FILE"`
}

type CLI struct {
	ConfigFile string    `name:"config" help:"Path to configuration file (JSON, YAML or TOML)" type:"path" env:"CATINPUT_CONFIG"`
	Log        LogConfig `embed:"" prefix:"log."`

	Watch  cmd.Watch         `cmd:"" help:"Track pressed keys, buttons and cursor position from a backend"`
	Feed   cmd.Feed          `cmd:"" help:"Serve the device-event websocket and forward JSON lines to the connected client"`
	Keys   cmd.Keys          `cmd:"" help:"List supported keys or normalize a raw key name"`
	Config cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
