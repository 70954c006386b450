package internal

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	ChatServerURL  string `env:"CHAT_SERVER_URL,required=true"`
	ChatRoomsURL   string `env:"CHAT_ROOMS_URL,required=true"`
	ChatAPIURL     string `env:"CHAT_API_URL,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT,default=10s"`
	HandshakeTimeout time.Duration `env:"WS_HANDSHAKE_TIMEOUT,default=10s"`
	WriteWait        time.Duration `env:"WS_WRITE_WAIT,default=10s"`
	PongWait         time.Duration `env:"WS_PONG_WAIT,default=60s"`
	PingInterval     time.Duration `env:"WS_PING_INTERVAL,default=54s"`
	MaxMessageSize   int64         `env:"WS_MAX_MESSAGE_SIZE,default=1048576"`
	TerminalWidth    int           `env:"TERMINAL_WIDTH,default=80"`
}

// Validate checks what the environment tags cannot express.
func (c Config) Validate() error {
	server, err := url.Parse(c.ChatServerURL)
	if err != nil || (server.Scheme != "ws" && server.Scheme != "wss") {
		return fmt.Errorf("CHAT_SERVER_URL must be a ws:// or wss:// url, got %q", c.ChatServerURL)
	}
	for name, raw := range map[string]string{"CHAT_ROOMS_URL": c.ChatRoomsURL, "CHAT_API_URL": c.ChatAPIURL} {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("%s must be an http:// or https:// url, got %q", name, raw)
		}
	}
	if c.PingInterval >= c.PongWait {
		return fmt.Errorf("WS_PING_INTERVAL (%s) must be shorter than WS_PONG_WAIT (%s)", c.PingInterval, c.PongWait)
	}
	return nil
}
