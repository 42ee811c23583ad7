package telegram

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/ilyadubrovsky/tracking-attendance/internal/config/answers"
	"github.com/ilyadubrovsky/tracking-attendance/internal/domain"
	ierrors "github.com/ilyadubrovsky/tracking-attendance/internal/errors"
	"github.com/ilyadubrovsky/tracking-attendance/internal/render"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const (
	callbackSubject = "sj"
	callbackPresent = "pr"
	callbackAbsent  = "ab"
	callbackBack    = "bk"

	buttonsInRow = 2
)

func (s *svc) handleCallback(c tele.Context) error {
	callbackData := strings.Replace(c.Callback().Data, "\f", "", -1)
	if len(callbackData) < 2 {
		return edit(c, answers.BotError)
	}
	defer c.Respond()

	action := callbackData[:2]
	if action == callbackBack {
		return edit(c, answers.ChooseSubject, makeSubjectsInlineMarkup(s.tracker.Subjects()))
	}

	subject, ok := subjectByKey(s.tracker.Subjects(), callbackData[2:])
	if !ok {
		return edit(c, answers.SubjectUnknown, makeSubjectsInlineMarkup(s.tracker.Subjects()))
	}

	ctx := context.Background()
	text := ""
	switch action {
	case callbackPresent, callbackAbsent:
		mark := domain.MarkPresent
		if action == callbackAbsent {
			mark = domain.MarkAbsent
		}
		res, err := s.markSubject(ctx, subject, mark)
		if err != nil {
			log.Error().Str("subject", subject).Msgf("handleCallback: markSubject: %v", err)
			return edit(c, answers.BotError)
		}
		text = render.Mark(res, mark) + "\n\n"
	case callbackSubject:
	default:
		return edit(c, answers.BotError)
	}

	summary, err := s.tracker.Summary(subject)
	if err != nil {
		log.Error().Str("subject", subject).Msgf("handleCallback: tracker.Summary: %v", err)
		return edit(c, answers.BotError)
	}
	text += render.Subject(summary, s.tracker.Threshold())

	return edit(c, text, makeSubjectInlineMarkup(subject))
}

// edit replaces the callback message. Pressing a button that leaves the text
// as it is, such as marking a subject at capacity twice, is not an error.
func edit(c tele.Context, what interface{}, opts ...interface{}) error {
	err := c.Edit(what, opts...)
	if errors.Is(err, tele.ErrMessageNotModified) {
		return nil
	}
	return err
}

func (s *svc) handleStartCommand(c tele.Context) error {
	return c.Send(answers.Start)
}

func (s *svc) handleHelpCommand(c tele.Context) error {
	return c.Send(answers.Help)
}

func (s *svc) handleStatusCommand(c tele.Context) error {
	if err := s.tracker.Refresh(context.Background()); err != nil {
		log.Error().Msgf("handleStatusCommand: tracker.Refresh: %v", err)
		return c.Send(answers.BotError)
	}

	msg := render.Subjects(s.tracker.Summaries(), s.tracker.Threshold())
	if err := c.Send(msg); err != nil {
		return err
	}

	return c.Send(answers.ChooseSubject, makeSubjectsInlineMarkup(s.tracker.Subjects()))
}

func (s *svc) handleOverallCommand(c tele.Context) error {
	if err := s.tracker.Refresh(context.Background()); err != nil {
		log.Error().Msgf("handleOverallCommand: tracker.Refresh: %v", err)
		return c.Send(answers.BotError)
	}

	return c.Send(render.Overall(s.tracker.Overall(), s.tracker.Threshold()))
}

func (s *svc) handlePresentCommand(c tele.Context) error {
	return s.handleMarkCommand(c, domain.MarkPresent)
}

func (s *svc) handleAbsentCommand(c tele.Context) error {
	return s.handleMarkCommand(c, domain.MarkAbsent)
}

func (s *svc) handleMarkCommand(c tele.Context, mark domain.Mark) error {
	payload := strings.TrimSpace(c.Message().Payload)
	if payload == "" {
		return c.Send(answers.SubjectNoEntered)
	}

	subject, ok := resolveSubject(s.tracker.Subjects(), payload)
	if !ok {
		return c.Send(answers.SubjectUnknown)
	}

	res, err := s.markSubject(context.Background(), subject, mark)
	switch {
	case errors.Is(err, ierrors.ErrUnknownSubject):
		return c.Send(answers.SubjectUnknown)
	case err != nil:
		log.Error().Str("subject", subject).Msgf("handleMarkCommand: markSubject: %v", err)
		return c.Send(answers.BotError)
	}

	return c.Send(render.Mark(res, mark))
}

func (s *svc) markSubject(ctx context.Context, subject string, mark domain.Mark) (domain.MarkResult, error) {
	if mark == domain.MarkAbsent {
		return s.tracker.RecordAbsent(ctx, subject)
	}
	return s.tracker.RecordPresent(ctx, subject)
}

func (s *svc) handleDayCommand(c tele.Context) error {
	date, err := s.tracker.ParseDate(c.Message().Payload)
	if err != nil {
		return c.Send(answers.DateIncorrect)
	}

	return c.Send(render.Day(s.tracker.Day(date)))
}

func (s *svc) handleMarkDayCommand(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 || len(args) > 2 {
		return c.Send(answers.MarkDayForm)
	}

	mark, ok := parseMark(args[len(args)-1])
	if !ok {
		return c.Send(answers.MarkDayForm)
	}

	rawDate := ""
	if len(args) == 2 {
		rawDate = args[0]
	}
	date, err := s.tracker.ParseDate(rawDate)
	if err != nil {
		return c.Send(answers.DateIncorrect)
	}

	day, results, err := s.tracker.MarkDay(context.Background(), date, mark)
	if err != nil {
		log.Error().Time("date", date).Msgf("handleMarkDayCommand: tracker.MarkDay: %v", err)
		return c.Send(answers.BotError)
	}
	if day.Status != domain.DayTeaching {
		return c.Send(render.Day(day))
	}

	return c.Send(render.Marks(results, mark))
}

func (s *svc) handleResetCommand(c tele.Context) error {
	if strings.TrimSpace(strings.ToLower(c.Message().Payload)) != "yes" {
		return c.Send(answers.ResetConfirm)
	}

	if _, err := s.tracker.ResetAll(context.Background()); err != nil {
		log.Error().Msgf("handleResetCommand: tracker.ResetAll: %v", err)
		return c.Send(answers.BotError)
	}

	return c.Send(answers.ResetDone)
}

func (s *svc) handleText(c tele.Context) error {
	return c.Send(answers.Default)
}

func parseMark(s string) (domain.Mark, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "p":
		return domain.MarkPresent, true
	case "absent", "a":
		return domain.MarkAbsent, true
	}
	return 0, false
}

// resolveSubject prefers an exact label and falls back to a
// case-insensitive match.
func resolveSubject(subjects []string, name string) (string, bool) {
	for _, subject := range subjects {
		if subject == name {
			return subject, true
		}
	}
	for _, subject := range subjects {
		if strings.EqualFold(subject, name) {
			return subject, true
		}
	}
	return "", false
}

// subjectKey is a short stable callback key for a subject label. Callback
// data is limited to 64 bytes, labels are not.
func subjectKey(subject string) string {
	h := fnv.New32a()
	h.Write([]byte(subject))
	return fmt.Sprintf("%08x", h.Sum32())
}

func subjectByKey(subjects []string, key string) (string, bool) {
	for _, subject := range subjects {
		if subjectKey(subject) == key {
			return subject, true
		}
	}
	return "", false
}

func makeSubjectsInlineMarkup(subjects []string) *tele.ReplyMarkup {
	keyboard := make([][]tele.InlineButton, 0, (len(subjects)+buttonsInRow-1)/buttonsInRow)
	for i, subject := range subjects {
		if i%buttonsInRow == 0 {
			keyboard = append(keyboard, make([]tele.InlineButton, 0, buttonsInRow))
		}
		row := len(keyboard) - 1
		keyboard[row] = append(keyboard[row], tele.InlineButton{
			Unique: callbackSubject + subjectKey(subject),
			Text:   subject,
		})
	}

	return &tele.ReplyMarkup{
		InlineKeyboard: keyboard,
	}
}

func makeSubjectInlineMarkup(subject string) *tele.ReplyMarkup {
	key := subjectKey(subject)
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{
				{Unique: callbackPresent + key, Text: "Present"},
				{Unique: callbackAbsent + key, Text: "Absent"},
			},
			{
				{Unique: callbackBack, Text: "Back"},
			},
		},
	}
}
