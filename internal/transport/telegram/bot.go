package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/kagglebot/internal/config"
	"github.com/sandevgo/kagglebot/internal/core"
	"github.com/sandevgo/kagglebot/internal/service/agent"
	"github.com/sandevgo/kagglebot/internal/service/command"
	"github.com/sandevgo/kagglebot/pkg/log"
)

const (
	baseContextKey = "base_context"
	welcome        = "Hi! Ask me anything about Kaggle competitions.\nCommands: !stats, !history, !logs, !reset, !tools, !help"
)

// Bot serves one agent session per chat.
type Bot struct {
	bot     *tele.Bot
	pool    *agent.Pool
	router  *command.Router
	sender  *sender
	ownerID int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	pool *agent.Pool,
	router *command.Router,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:     b,
		pool:    pool,
		router:  router,
		sender:  newSender(b),
		ownerID: cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// OwnerID 0 means everyone may talk to the bot.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if bot.ownerID != 0 && (c.Sender() == nil || c.Sender().ID != bot.ownerID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", func(c tele.Context) error {
		return c.Send(welcome)
	})
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

// Shutdown stops polling and archives every chat session.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return b.pool.Close(context.WithoutCancel(ctx))
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx).With().Int64("chat", c.Chat().ID).Logger()
	ctx = logger.WithContext(ctx)

	_ = c.Notify(tele.Typing)

	err := b.pool.With(sessionKey(c.Chat().ID), func(s *agent.Session) {
		if reply, ok := b.router.Execute(ctx, s, c.Text()); ok {
			if err := b.sender.sendPreformatted(ctx, c.Chat(), reply); err != nil {
				logger.Error().Err(err).Msg("failed to send command reply")
			}
			return
		}

		res := s.Ask(ctx, c.Text(), func(msg core.Message) {
			for _, tc := range msg.ToolCalls {
				_ = c.Send(fmt.Sprintf("🛠 Executing: %s", tc.Function.Name))
				_ = c.Notify(tele.Typing)
			}
		})
		if !res.OK() {
			logger.Warn().Err(res.Failure).Msg("query ended without an answer")
		}
		if err := b.sender.sendMarkdown(ctx, c.Chat(), agent.Present(res), false); err != nil {
			logger.Error().Err(err).Msg("failed to send answer")
		}
	})
	if errors.Is(err, agent.ErrPoolClosed) {
		return nil
	}
	return err
}
