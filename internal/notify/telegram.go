package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shareit/internal/config"
	"shareit/internal/events"
	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// sender is the part of *tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts booking events to a single operations chat.
type TelegramNotifier struct {
	bot    sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug

	n := newTelegramNotifier(bot, cfg.ChatID, logger)
	n.logger.Info().Str("bot", bot.Self.UserName).Int64("chat_id", cfg.ChatID).Msg("telegram notifier ready")
	return n, nil
}

func newTelegramNotifier(bot sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "telegram").Logger()
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: &l}
}

func (n *TelegramNotifier) NotifyBooking(ctx context.Context, eventType string, event events.BookingEventPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatBookingEvent(eventType, event))
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	n.logger.Debug().Str("event", eventType).Int64("booking_id", event.BookingID).Msg("notification sent")
	return nil
}

// FormatBookingEvent renders the plain-text message for a booking event.
func FormatBookingEvent(eventType string, e events.BookingEventPayload) string {
	var b strings.Builder

	switch eventType {
	case events.EventBookingCreated:
		b.WriteString("New booking request")
	case events.EventBookingApproved:
		b.WriteString("Booking approved")
	case events.EventBookingRejected:
		b.WriteString("Booking rejected")
	default:
		b.WriteString("Booking update")
	}
	fmt.Fprintf(&b, " #%d\n", e.BookingID)

	fmt.Fprintf(&b, "Item: %s (#%d)\n", e.ItemName, e.ItemID)
	fmt.Fprintf(&b, "Booker: %s (#%d)\n", e.BookerName, e.BookerID)
	fmt.Fprintf(&b, "Period: %s - %s\n", e.Start.Format(models.TimeLayout), e.End.Format(models.TimeLayout))
	fmt.Fprintf(&b, "Status: %s", e.Status)
	if e.ChangedBy != "" {
		fmt.Fprintf(&b, "\nBy: %s #%d", e.ChangedBy, e.ChangedByID)
	}
	return b.String()
}
