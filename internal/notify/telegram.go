package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/afparfum/internal/models"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts order events to the shop's admin chat.
type Telegram struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegram creates a Telegram sink. An empty token or chat id turns
// every delivery into a logged no-op.
func NewTelegram(botToken, adminChatID string) *Telegram {
	return &Telegram{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the sink at another Bot API host.
func (t *Telegram) WithBaseURL(u string) *Telegram {
	t.baseURL = strings.TrimRight(u, "/")
	return t
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (t *Telegram) Notify(ctx context.Context, event Event) error {
	if t.botToken == "" || t.adminChatID == "" {
		log.Println("[Telegram] Bot token or admin chat not configured")
		return nil
	}
	return t.send(ctx, FormatAdminMessage(event))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	body, err := json.Marshal(telegramMessage{
		ChatID:    t.adminChatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// FormatPrice renders an amount in euros, e.g. "1,234.50 €".
func FormatPrice(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + "." + frac + " €"
}

// FormatAdminMessage renders the HTML admin chat message for an event.
func FormatAdminMessage(event Event) string {
	o := event.Order

	title := "🛒 NEW ORDER"
	switch event.Kind {
	case KindPaymentConfirmed:
		title = "✅ PAYMENT CONFIRMED"
	case KindOrderCancelled:
		title = "❌ ORDER CANCELLED"
	}

	var items strings.Builder
	for i, item := range o.Items {
		items.WriteString(fmt.Sprintf("%d. <b>%s</b> %s\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.ProductName),
			html.EscapeString(item.Size),
			item.Quantity,
			FormatPrice(item.UnitPrice),
			FormatPrice(item.LineSubtotal),
		))
	}

	message := fmt.Sprintf(`<b>%s</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>📞 Phone:</b> %s
<b>📧 Email:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
<b>💳 Payment:</b> %s
<b>📍 Status:</b> %s
━━━━━━━━━━━━━━━━━━`,
		title,
		html.EscapeString(o.OrderNumber),
		html.EscapeString(o.Billing.FullName),
		html.EscapeString(o.Billing.Phone),
		html.EscapeString(o.Billing.Email),
		items.String(),
		FormatPrice(o.GrandTotal),
		o.PaymentMethod,
		statusLabel(o.Status),
	)
	return strings.TrimSpace(message)
}

func statusLabel(s models.Status) string {
	switch s {
	case models.StatusConfirmed:
		return "✅ Confirmed"
	case models.StatusCancelled:
		return "❌ Cancelled"
	default:
		return "⏳ Awaiting payment"
	}
}
