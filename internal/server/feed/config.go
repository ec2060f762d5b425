package feed

import "time"

// ServerConfig represents the feed subcommand server configuration.
type ServerConfig struct {
	Addr         string        `help:"Websocket listen address" default:"127.0.0.1:9527" env:"CATINPUT_FEED_ADDR"`
	WriteTimeout time.Duration `help:"Timeout for writing one frame to the client" default:"5s" env:"CATINPUT_FEED_WRITE_TIMEOUT"`
}
