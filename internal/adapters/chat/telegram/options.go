package telegram

import (
	"time"

	"mediarelay/internal/platform/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Options configures the Telegram bot
type Options struct {
	Token       string
	APIEndpoint string
	PollTimeout int
	Source      string

	// DownloadTimeout bounds one attachment download
	DownloadTimeout time.Duration
}

// FromConfig reads TELEGRAM_TOKEN (required) and optional TELEGRAM_ settings
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("TELEGRAM_")
	return Options{
		Token:           c.MustString("TOKEN"),
		APIEndpoint:     c.MayString("API_ENDPOINT", tgbotapi.APIEndpoint),
		PollTimeout:     c.MayInt("POLL_TIMEOUT", 60),
		Source:          c.MayString("SOURCE", "telegram"),
		DownloadTimeout: c.MayDuration("DOWNLOAD_TIMEOUT", 2*time.Minute),
	}
}

// Dial authenticates against the Bot API
func Dial(o Options) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPIWithAPIEndpoint(o.Token, o.APIEndpoint)
}
