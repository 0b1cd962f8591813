package telegram

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/kagglebot/pkg/conv"
	"github.com/sandevgo/kagglebot/pkg/log"
)

const (
	maxTelegramMsgLen = 4000 // Safety margin below 4096
	// escaping can grow plain text, so raw chunks are cut shorter
	maxPreformattedLen = 3000
)

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, silent bool) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		html = strings.TrimSpace(md)
	}
	return s.sendChunks(ctx, to, splitHTML(html, maxTelegramMsgLen), silent)
}

// sendPreformatted sends plain text such as command JSON inside <pre> blocks.
func (s *sender) sendPreformatted(ctx context.Context, to tele.Recipient, text string) error {
	raw := splitHTML(text, maxPreformattedLen)
	chunks := make([]string, 0, len(raw))
	for _, r := range raw {
		chunks = append(chunks, conv.Preformatted(r))
	}
	return s.sendChunks(ctx, to, chunks, false)
}

func (s *sender) sendChunks(ctx context.Context, to tele.Recipient, chunks []string, silent bool) error {
	logger := log.FromCtx(ctx)
	for i, chunk := range chunks {
		opts := []interface{}{tele.ModeHTML}
		if silent && i == 0 {
			opts = append(opts, tele.Silent)
		}

		if _, err := s.bot.Send(to, chunk, opts...); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
