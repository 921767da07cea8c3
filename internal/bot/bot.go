package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StockPredictor/internal/analysis/technical"
	"github.com/Alias1177/StockPredictor/internal/analyze"
	"github.com/Alias1177/StockPredictor/internal/chart"
	"github.com/Alias1177/StockPredictor/models"
)

// maxMessageLen is Telegram's limit for a text message, in characters.
const maxMessageLen = 4096

// Runner executes one analysis.
type Runner interface {
	Run(ctx context.Context, req analyze.Request) (*analyze.Report, error)
}

// Sender is the part of *tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers chat commands with analyses.
type Bot struct {
	runner       Runner
	sender       Sender
	defaults     analyze.Request
	dashboardURL string
	logger       zerolog.Logger
}

// New creates a bot. defaults supplies the interval, lookback and strategy
// when a command omits them; dashboardURL may be empty.
func New(runner Runner, sender Sender, defaults analyze.Request, dashboardURL string) *Bot {
	return &Bot{
		runner:       runner,
		sender:       sender,
		defaults:     defaults,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		logger:       log.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run handles updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage replies to a single chat message.
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	logger := b.logger.With().Int64("chat_id", chatID).Logger()

	if !message.IsCommand() {
		b.send(logger, tgbotapi.NewMessage(chatID, "Send /analyze SYMBOL to get levels and a recommendation. /help lists the options."))
		return
	}

	switch message.Command() {
	case "start":
		b.send(logger, tgbotapi.NewMessage(chatID, "Welcome to the LLM Stock and Crypto Predictor!\n\n"+b.usage()))
	case "help":
		b.send(logger, tgbotapi.NewMessage(chatID, b.usage()))
	case "analyze":
		b.handleAnalyze(ctx, logger, chatID, message.CommandArguments())
	default:
		b.send(logger, tgbotapi.NewMessage(chatID, "Unknown command.\n\n"+b.usage()))
	}
}

func (b *Bot) handleAnalyze(ctx context.Context, logger zerolog.Logger, chatID int64, args string) {
	req, err := ParseAnalyzeArgs(args, b.defaults)
	if err != nil {
		b.send(logger, tgbotapi.NewMessage(chatID, err.Error()+"\n\n"+b.usage()))
		return
	}

	logger.Info().Str("symbol", req.Symbol).Str("interval", req.Interval).Int("days", req.Days).Msg("Analysis requested")
	b.send(logger, tgbotapi.NewMessage(chatID, fmt.Sprintf("Analyzing %s...", req.Symbol)))

	report, err := b.runner.Run(ctx, req)
	if err != nil {
		b.send(logger, tgbotapi.NewMessage(chatID, failureText(err)))
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatReport(report))
	if link := b.dashboardLink(report.Request); link != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL("Open chart", link),
			),
		)
	}
	b.send(logger, msg)
}

// ParseAnalyzeArgs reads "SYMBOL [INTERVAL] [DAYS] [STRATEGY]".
func ParseAnalyzeArgs(args string, defaults analyze.Request) (analyze.Request, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return analyze.Request{}, &models.InvalidRequestError{Field: "symbol", Reason: "missing"}
	}
	if len(fields) > 4 {
		return analyze.Request{}, &models.InvalidRequestError{Field: "arguments", Reason: "too many"}
	}

	req := defaults
	req.Symbol = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		req.Interval = fields[1]
	}
	if len(fields) > 2 {
		days, err := strconv.Atoi(fields[2])
		if err != nil {
			return analyze.Request{}, &models.InvalidRequestError{Field: "days", Reason: fmt.Sprintf("%q is not a number", fields[2])}
		}
		req.Days = days
	}
	if len(fields) > 3 {
		req.Strategy = fields[3]
	}
	return req, nil
}

// FormatReport renders a report as a plain-text chat message.
func FormatReport(r *analyze.Report) string {
	var sb strings.Builder
	sb.WriteString(r.Chart.Title)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Candles: %d\n", len(r.Series.Candles))
	sb.WriteString(chart.FormatLevels(r.Levels))
	sb.WriteString("\n")

	if r.RecommendationError != "" {
		sb.WriteString("Recommendation unavailable: ")
		sb.WriteString(r.RecommendationError)
	} else if r.Recommendation != "" {
		sb.WriteString("LLM Prediction:\n")
		sb.WriteString(r.Recommendation)
	}

	text := strings.TrimSpace(sb.String())
	return truncate(text, maxMessageLen)
}

// truncate cuts text to at most limit runes, ending in "..." when cut.
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-3]) + "..."
}

func failureText(err error) string {
	var (
		invalid *models.InvalidRequestError
		empty   *models.EmptySeriesError
		fetch   *models.DataFetchError
	)
	switch {
	case errors.As(err, &invalid):
		return "Invalid request: " + err.Error()
	case errors.As(err, &empty):
		return "No data found. Please check the ticker symbol and date period, and try again."
	case errors.As(err, &fetch):
		return "Error fetching data: " + err.Error()
	default:
		return "Sorry, there was an error. Please try again later."
	}
}

func (b *Bot) dashboardLink(req analyze.Request) string {
	if b.dashboardURL == "" {
		return ""
	}
	q := url.Values{}
	q.Set("symbol", req.Symbol)
	q.Set("interval", req.Interval)
	q.Set("days", strconv.Itoa(req.Days))
	q.Set("strategy", req.Strategy)
	return b.dashboardURL + "/?" + q.Encode()
}

func (b *Bot) usage() string {
	return fmt.Sprintf("Usage: /analyze SYMBOL [INTERVAL] [DAYS] [STRATEGY]\n"+
		"Defaults: interval %s, %d days, strategy %s\n"+
		"Days: %d to %d. Strategies: %s\n"+
		"Ticker list: %s",
		b.defaults.Interval, b.defaults.Days, b.defaults.Strategy,
		models.MinLookbackDays, models.MaxLookbackDays, strings.Join(technical.StrategyNames(), ", "),
		chart.TickerLookupURL)
}

func (b *Bot) send(logger zerolog.Logger, msg tgbotapi.MessageConfig) {
	if _, err := b.sender.Send(msg); err != nil {
		logger.Error().Err(err).Msg("Failed to send message")
	}
}
