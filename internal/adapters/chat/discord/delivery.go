// Package discord posts outgoing jobs to a Discord channel and picks post links out of chat
package discord

import (
	"context"
	"mime"
	"os"
	"path/filepath"

	perr "mediarelay/internal/platform/errors"
	"mediarelay/internal/platform/logger"

	"github.com/bwmarrin/discordgo"
)

// Sender is the REST call the delivery needs; *discordgo.Session implements it
type Sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Delivery sends chunks to one channel
type Delivery struct {
	s       Sender
	channel string
	log     logger.Logger
}

// NewDelivery returns a Delivery posting to channel
func NewDelivery(s Sender, channel string) *Delivery {
	return &Delivery{s: s, channel: channel, log: *logger.Named("discord")}
}

// SendFiles posts files as attachments of one message. A file that cannot be opened is
// left out; the message fails only when nothing at all is left to send
func (d *Delivery) SendFiles(ctx context.Context, files []string, caption string) error {
	msg := d.message(caption)
	for _, p := range files {
		f, err := os.Open(p)
		if err != nil {
			d.log.Warn().Err(err).Str("file", filepath.Base(p)).Msg("attachment unreadable, skipped")
			continue
		}
		defer f.Close()
		msg.Files = append(msg.Files, &discordgo.File{
			Name:        filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Reader:      f,
		})
	}
	if len(msg.Files) == 0 && msg.Content == "" {
		return perr.IOf("no readable attachment among %d files", len(files))
	}
	return d.send(ctx, msg)
}

// SendText posts a text-only message
func (d *Delivery) SendText(ctx context.Context, text string) error {
	if text == "" {
		return perr.InvalidArgf("empty message")
	}
	return d.send(ctx, d.message(text))
}

func (d *Delivery) message(content string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
}

func (d *Delivery) send(ctx context.Context, msg *discordgo.MessageSend) error {
	if _, err := d.s.ChannelMessageSendComplex(d.channel, msg, discordgo.WithContext(ctx)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "discord send to %s", d.channel)
	}
	return nil
}
