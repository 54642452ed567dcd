package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Alias1177/HeartRisk/internal/riskcheck"
	"github.com/Alias1177/HeartRisk/internal/session"
	"github.com/Alias1177/HeartRisk/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Menu buttons
const (
	ButtonCheck   = "Check Heart Risk"
	ButtonHistory = "Recent Checks"
	ButtonMenu    = "Main Menu"
)

// Callback data
const (
	callbackSet   = "set_"
	callbackSkip  = "skip_oldpeak"
	callbackRetry = "retry"
)

const (
	welcomeText    = "Welcome to the Heart Disease Risk Checker! Simple health inputs • Instant assessment."
	disclaimerText = "Educational use only • Not a medical diagnosis"
)

// stages is the order fields are asked in
var stages = []string{
	models.FieldAge,
	models.FieldSex,
	models.FieldTrestbps,
	models.FieldChol,
	models.FieldFbs,
	models.FieldExang,
	models.FieldOldpeak,
}

type option struct {
	label string
	value string
}

type prompt struct {
	text    string
	options []option
}

var prompts = map[string]prompt{
	models.FieldAge:      {text: "Enter your age in years."},
	models.FieldSex:      {text: "Select your gender.", options: []option{{"Male", "1"}, {"Female", "0"}}},
	models.FieldTrestbps: {text: "Enter your resting blood pressure (mm Hg)."},
	models.FieldChol:     {text: "Enter your cholesterol level (mg/dL)."},
	models.FieldFbs:      {text: "Is your fasting blood sugar above 120 mg/dL?", options: []option{{"Yes", "1"}, {"No", "0"}}},
	models.FieldExang:    {text: "Do you get chest pain during exercise?", options: []option{{"Yes", "1"}, {"No", "0"}}},
	models.FieldOldpeak:  {text: "Enter your ST depression (ECG-based measurement), or skip it."},
}

// Sender is the part of *tgbotapi.BotAPI the handler needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler runs one staged risk check conversation per chat
type Handler struct {
	api      Sender
	sessions *session.Manager
	logger   zerolog.Logger

	mu      sync.Mutex
	pending map[int64][]string // fields still to ask, per chat
}

func NewHandler(api Sender, sessions *session.Manager) *Handler {
	return &Handler{
		api:      api,
		sessions: sessions,
		logger:   log.With().Str("component", "tgbot").Logger(),
		pending:  make(map[int64][]string),
	}
}

// SessionID is the session a chat's form and history belong to
func SessionID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

// HandleUpdate dispatches a single update from the updates channel
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch text {
	case "/start", ButtonMenu:
		h.setPending(chatID, nil)
		h.sendMenu(chatID, welcomeText)
		return
	case ButtonCheck, "/check":
		h.startCheck(ctx, chatID)
		return
	case ButtonHistory, "/history":
		h.sendHistory(ctx, chatID)
		return
	}

	field, ok := h.current(chatID)
	if !ok {
		h.sendMenu(chatID, "What would you like to do?")
		return
	}

	if len(prompts[field].options) > 0 {
		h.send(chatID, "Please choose one of the options.")
		h.ask(chatID, field)
		return
	}

	h.answer(ctx, chatID, field, text)
}

func (h *Handler) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	if _, err := h.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		h.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to acknowledge callback")
	}

	switch {
	case data == callbackRetry:
		h.submit(ctx, chatID)
	case data == callbackSkip:
		if field, ok := h.current(chatID); ok && field == models.FieldOldpeak {
			h.answer(ctx, chatID, field, "")
		}
	case strings.HasPrefix(data, callbackSet):
		parts := strings.SplitN(strings.TrimPrefix(data, callbackSet), "_", 2)
		if len(parts) != 2 {
			return
		}
		field, ok := h.current(chatID)
		if !ok || field != parts[0] {
			// stale button from an earlier question
			return
		}
		h.answer(ctx, chatID, field, parts[1])
	}
}

// startCheck clears the chat's form and asks every field from the top
func (h *Handler) startCheck(ctx context.Context, chatID int64) {
	s, _ := h.sessions.GetOrCreate(ctx, SessionID(chatID))
	for _, name := range models.FormFields {
		s.Controller.UpdateField(name, "")
	}

	h.setPending(chatID, stages)
	h.ask(chatID, stages[0])
}

// answer stores a value for field and moves on, submitting once nothing is left to ask
func (h *Handler) answer(ctx context.Context, chatID int64, field, value string) {
	s, _ := h.sessions.GetOrCreate(ctx, SessionID(chatID))
	s.Controller.UpdateField(field, value)

	next, ok := h.advance(chatID)
	if ok {
		h.ask(chatID, next)
		return
	}
	h.submit(ctx, chatID)
}

func (h *Handler) submit(ctx context.Context, chatID int64) {
	s, _ := h.sessions.GetOrCreate(ctx, SessionID(chatID))

	h.send(chatID, "Checking your heart risk...")
	snap, err := s.Controller.Submit(ctx)

	switch {
	case err == nil:
		h.setPending(chatID, nil)
		msg := tgbotapi.NewMessage(chatID, formatResult(snap))
		msg.ReplyMarkup = mainMenuKeyboard()
		h.sendChattable(chatID, msg)

	case errors.Is(err, riskcheck.ErrInvalidForm):
		var invalid []string
		var lines []string
		for _, field := range stages {
			if text, ok := snap.Errors[field]; ok {
				invalid = append(invalid, field)
				lines = append(lines, text)
			}
		}
		h.setPending(chatID, invalid)
		h.send(chatID, strings.Join(lines, "\n"))
		if len(invalid) > 0 {
			h.ask(chatID, invalid[0])
		}

	case errors.Is(err, riskcheck.ErrSubmitInFlight):
		h.send(chatID, "A check is already running, please wait.")

	default:
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Risk check failed")
		h.setPending(chatID, nil)
		msg := tgbotapi.NewMessage(chatID, snap.Failure)
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Retry", callbackRetry),
			),
		)
		h.sendChattable(chatID, msg)
	}
}

func (h *Handler) sendHistory(ctx context.Context, chatID int64) {
	s, _ := h.sessions.GetOrCreate(ctx, SessionID(chatID))
	h.sendMenu(chatID, formatHistory(s.Controller.Snapshot().History))
}

// ask sends the question for field with its buttons, if any
func (h *Handler) ask(chatID int64, field string) {
	p := prompts[field]
	msg := tgbotapi.NewMessage(chatID, p.text)

	var rows [][]tgbotapi.InlineKeyboardButton
	if len(p.options) > 0 {
		var row []tgbotapi.InlineKeyboardButton
		for _, o := range p.options {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(o.label, callbackSet+field+"_"+o.value))
		}
		rows = append(rows, row)
	}
	if field == models.FieldOldpeak {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Skip", callbackSkip)))
	}
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	h.sendChattable(chatID, msg)
}

func (h *Handler) current(chatID int64) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	queue := h.pending[chatID]
	if len(queue) == 0 {
		return "", false
	}
	return queue[0], true
}

// advance drops the current field and returns the next one to ask
func (h *Handler) advance(chatID int64) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	queue := h.pending[chatID]
	if len(queue) > 0 {
		queue = queue[1:]
	}
	if len(queue) == 0 {
		delete(h.pending, chatID)
		return "", false
	}
	h.pending[chatID] = queue
	return queue[0], true
}

func (h *Handler) setPending(chatID int64, fields []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(fields) == 0 {
		delete(h.pending, chatID)
		return
	}
	h.pending[chatID] = append([]string(nil), fields...)
}

func (h *Handler) sendMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	h.sendChattable(chatID, msg)
}

func (h *Handler) send(chatID int64, text string) {
	h.sendChattable(chatID, tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendChattable(chatID int64, c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		h.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonCheck),
			tgbotapi.NewKeyboardButton(ButtonHistory),
		),
	)
}

func formatProbability(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

func formatResult(snap models.Snapshot) string {
	if snap.Result == nil {
		return ""
	}
	return fmt.Sprintf("%s Risk\nProbability: %s\n\n%s\n\n%s",
		snap.Result.Risk,
		formatProbability(snap.Result.Probability),
		snap.Explanation,
		disclaimerText)
}

func formatHistory(history []models.PredictionResult) string {
	if len(history) == 0 {
		return "No history yet."
	}

	var b strings.Builder
	b.WriteString("Recent Checks:")
	for i, r := range history {
		fmt.Fprintf(&b, "\n%d. %s – %s", i+1, r.Risk, formatProbability(r.Probability))
	}
	return b.String()
}
