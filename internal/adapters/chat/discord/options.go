package discord

import (
	"mediarelay/internal/platform/config"

	"github.com/bwmarrin/discordgo"
)

// Options configures the Discord session
type Options struct {
	Token     string
	ChannelID string
	Source    string
}

// FromConfig reads DISCORD_TOKEN and DISCORD_CHANNEL_ID (both required)
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("DISCORD_")
	return Options{
		Token:     c.MustString("TOKEN"),
		ChannelID: c.MustString("CHANNEL_ID"),
		Source:    c.MayString("SOURCE", "discord"),
	}
}

// Dial creates a bot session that can read guild and direct message content.
// The gateway is not opened until Open
func Dial(o Options) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + o.Token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	return s, nil
}
