package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/velora/internal/models"
)

// TelegramService sends order notifications to the admin chat. It implements
// Notifier; failures are logged and never surfaced to the order flow.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// FormatAmount renders minor units with thousand separators and currency.
func FormatAmount(amount int64, currency string) string {
	major := amount / 100
	minor := amount % 100
	if minor < 0 {
		minor = -minor
	}

	str := fmt.Sprintf("%d", major)
	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && digit != '-' && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return fmt.Sprintf("%s.%02d %s", result.String(), minor, currency)
}

// NotifyOrderCreated reports a newly assembled order to the admin chat.
func (s *TelegramService) NotifyOrderCreated(order *models.Order) {
	if s.adminChatID == "" {
		return
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		itemsList.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			item.ProductName,
			item.Quantity,
			FormatAmount(item.UnitPrice, order.Currency),
			FormatAmount(item.LineTotal, order.Currency),
		))
	}

	owner := "guest"
	if order.UserID != nil {
		owner = order.UserID.String()
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
<b>📍 Status:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.OrderNumber,
		owner,
		itemsList.String(),
		FormatAmount(order.Total, order.Currency),
		order.Status,
	)

	if err := s.SendToAdmin(strings.TrimSpace(message)); err != nil {
		log.Printf("[Telegram] order created notification failed for %s: %v", order.OrderNumber, err)
	}
}

// NotifyOrderStatus reports an order status transition to the admin chat.
func (s *TelegramService) NotifyOrderStatus(order *models.Order, previous models.OrderStatus) {
	if s.adminChatID == "" {
		return
	}

	message := fmt.Sprintf(`<b>📦 ORDER STATUS CHANGED</b>
<b>📋 Order:</b> %s
<b>📍 Status:</b> %s → %s
<b>💳 Payment:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.OrderNumber,
		previous,
		order.Status,
		order.PaymentStatus,
	)

	if err := s.SendToAdmin(strings.TrimSpace(message)); err != nil {
		log.Printf("[Telegram] status notification failed for %s: %v", order.OrderNumber, err)
	}
}
