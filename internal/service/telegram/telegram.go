package telegram

import (
	"fmt"

	"github.com/ilyadubrovsky/tracking-attendance/internal/config"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/ilyadubrovsky/tracking-attendance/internal/service"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

type svc struct {
	tracker service.Tracker
	bot     *tele.Bot
	cfg     config.Telegram
}

func NewService(
	tracker service.Tracker,
	cfg config.Telegram,
) (*svc, error) {
	bot, err := createBot(cfg)
	if err != nil {
		return nil, fmt.Errorf("createBot: %w", err)
	}

	s := &svc{
		tracker: tracker,
		bot:     bot,
		cfg:     cfg,
	}

	s.setBotSettings()

	return s, nil
}

func createBot(cfg config.Telegram) (*tele.Bot, error) {
	if cfg.BotToken == "" {
		return nil, ierrors.ErrBotTokenMissing
	}
	// the ledger belongs to a single owner
	if cfg.OwnerID == 0 {
		return nil, ierrors.ErrBotOwnerMissing
	}

	pref := tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: cfg.LongPollerDelay},
		OnError: func(err error, c tele.Context) {
			log.Error().Fields(extractTelebotFields(c)).
				Msgf("bot.OnError: %v", err.Error())
		},
	}

	abot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("tele.NewBot: %w", err)
	}

	return abot, nil
}

func (s *svc) setBotSettings() {
	s.bot.Use(middleware.Whitelist(s.cfg.OwnerID))

	s.bot.Handle(tele.OnCallback, s.handleCallback)

	s.bot.Handle("/start", s.handleStartCommand)

	s.bot.Handle("/help", s.handleHelpCommand)

	s.bot.Handle("/status", s.handleStatusCommand)

	s.bot.Handle("/overall", s.handleOverallCommand)

	s.bot.Handle("/present", s.handlePresentCommand)

	s.bot.Handle("/absent", s.handleAbsentCommand)

	s.bot.Handle("/day", s.handleDayCommand)

	s.bot.Handle("/markday", s.handleMarkDayCommand)

	s.bot.Handle("/reset", s.handleResetCommand)

	s.bot.Handle(tele.OnText, s.handleText)
}

func (s *svc) Start() {
	s.bot.Start()
}

func (s *svc) Stop() {
	s.bot.Stop()
}

func extractTelebotFields(c tele.Context) map[string]interface{} {
	fields := make(map[string]interface{})
	if c == nil {
		return fields
	}
	if sender := c.Sender(); sender != nil {
		fields["user"] = sender.ID
	}
	if msg := c.Message(); msg != nil {
		fields["text"] = msg.Text
	}
	if cb := c.Callback(); cb != nil {
		fields["callback"] = cb.Data
	}
	return fields
}
