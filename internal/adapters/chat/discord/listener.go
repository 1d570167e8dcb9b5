package discord

import (
	"context"

	"mediarelay/internal/core/postref"
	"mediarelay/internal/platform/logger"

	"github.com/bwmarrin/discordgo"
)

// Links receives free text that may carry post URLs
type Links interface {
	SubmitText(ctx context.Context, text, source string) ([]string, error)
}

// Listener turns chat messages carrying post links into link sentinels
type Listener struct {
	ctx    context.Context
	links  Links
	source string
	log    logger.Logger
}

// NewListener returns a Listener; ctx scopes the submissions it makes
func NewListener(ctx context.Context, links Links, source string) *Listener {
	if source == "" {
		source = "discord"
	}
	return &Listener{ctx: ctx, links: links, source: source, log: *logger.Named("discord")}
}

// OnMessageCreate is registered with Session.AddHandler
func (l *Listener) OnMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	l.Handle(m.Message)
}

// Handle submits every post link in a message from a human author
func (l *Listener) Handle(m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if len(postref.Extract(m.Content)) == 0 {
		return
	}
	paths, err := l.links.SubmitText(l.ctx, m.Content, l.source)
	if err != nil {
		l.log.Error().Err(err).Str("channel", m.ChannelID).Msg("link submission failed")
		return
	}
	l.log.Info().Str("channel", m.ChannelID).Str("author", m.Author.ID).Int("links", len(paths)).Msg("post links queued")
}
