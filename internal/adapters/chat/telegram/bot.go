// Package telegram feeds Telegram messages into the pipeline: post links go to the link sink,
// media attachments go to the attachment aggregator
package telegram

import (
	"context"
	"strconv"

	"mediarelay/internal/core/postref"
	"mediarelay/internal/platform/logger"
	pstrings "mediarelay/internal/platform/strings"

	aggregator "mediarelay/internal/services/aggregator/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Attachments receives media references per user
type Attachments interface {
	OnAttachment(user string, ref aggregator.FileRef)
}

// Links receives free text that may carry post URLs
type Links interface {
	SubmitText(ctx context.Context, text, source string) ([]string, error)
}

// Updates is the long-poll side of the Bot API
type Updates interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot routes incoming updates
type Bot struct {
	api   Updates
	att   Attachments
	links Links
	opts  Options
	log   logger.Logger
}

// NewBot wires the update source to the aggregator and link sink
func NewBot(api Updates, att Attachments, links Links, o Options) *Bot {
	if o.Source == "" {
		o.Source = "telegram"
	}
	return &Bot{api: api, att: att, links: links, opts: o, log: *logger.Named("telegram")}
}

// Run long-polls for updates until ctx is done
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.PollTimeout
	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Msg("telegram bot polling")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("telegram bot stopped")
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			b.Handle(ctx, up)
		}
	}
}

// Handle routes one update. A message carrying a post URL is a link submission only;
// otherwise its attachment, if any, joins the sender's batch
func (b *Bot) Handle(ctx context.Context, up tgbotapi.Update) {
	msg := up.Message
	if msg == nil || msg.From == nil {
		return
	}
	user := strconv.FormatInt(msg.From.ID, 10)
	log := b.log.With().Str("user", user).Int("message", msg.MessageID).Logger()

	if text := pstrings.FirstNonBlank(msg.Text, msg.Caption); len(postref.Extract(text)) > 0 {
		paths, err := b.links.SubmitText(ctx, text, b.opts.Source)
		if err != nil {
			log.Error().Err(err).Msg("link submission failed")
			return
		}
		log.Info().Int("links", len(paths)).Msg("post links queued")
		return
	}

	if ref, ok := Attachment(msg); ok {
		log.Debug().Str("file_id", ref.ID).Msg("attachment received")
		b.att.OnAttachment(user, ref)
	}
}

// Attachment extracts the downloadable file of a photo, document, video or animation message.
// For photos the largest size wins
func Attachment(msg *tgbotapi.Message) (aggregator.FileRef, bool) {
	switch {
	case len(msg.Photo) > 0:
		best := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if p.FileSize >= best.FileSize {
				best = p
			}
		}
		return aggregator.FileRef{ID: best.FileID}, true
	case msg.Document != nil:
		return aggregator.FileRef{ID: msg.Document.FileID, Name: msg.Document.FileName}, true
	case msg.Video != nil:
		return aggregator.FileRef{ID: msg.Video.FileID, Name: msg.Video.FileName}, true
	case msg.Animation != nil:
		return aggregator.FileRef{ID: msg.Animation.FileID, Name: msg.Animation.FileName}, true
	}
	return aggregator.FileRef{}, false
}
