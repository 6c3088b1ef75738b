package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
	"go.uber.org/zap"
)

const (
	webhookPlaceholder = "YOUR_DISCORD_WEBHOOK_URL"
	embedColorSiamBlue = 0x4F5D75
)

// discordEmbed is the rich-message envelope the chat webhook accepts
type discordEmbed struct {
	Title     string            `json:"title"`
	Color     int               `json:"color"`
	Fields    []discordField    `json:"fields"`
	Thumbnail *discordThumbnail `json:"thumbnail,omitempty"`
	Timestamp string            `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordThumbnail struct {
	URL string `json:"url"`
}

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

// NotifierInterface defines the interface for the chat notifier
type NotifierInterface interface {
	// NotifyNewOrder pushes a human-readable order summary to the chat webhook
	NotifyNewOrder(ctx context.Context, order *models.Order) error
}

// DiscordService posts new-order summaries to a Discord webhook. Delivery
// is best-effort; a failed notification never blocks order creation since
// the order is already durably persisted by the time this runs.
type DiscordService struct {
	webhookURL string
	httpClient *http.Client
}

var notifierInstance NotifierInterface

// InitDiscordService initializes the chat notifier
func InitDiscordService(cfg *config.Config) NotifierInterface {
	notifierInstance = &DiscordService{
		webhookURL: cfg.DiscordWebhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	return notifierInstance
}

// GetNotifier returns the initialized notifier instance
func GetNotifier() NotifierInterface {
	return notifierInstance
}

// SetNotifier sets the notifier instance (primarily for testing)
func SetNotifier(service NotifierInterface) {
	notifierInstance = service
}

// NotifyNewOrder formats the order as an embed and posts it. When the
// webhook URL is unset or still the placeholder, the call is skipped
// silently rather than attempted.
func (s *DiscordService) NotifyNewOrder(ctx context.Context, order *models.Order) error {
	if s.webhookURL == "" || s.webhookURL == webhookPlaceholder {
		config.Logger().Warn("discord webhook URL is not configured, skipping notification",
			zap.String("order_no", order.OrderNo))
		return nil
	}

	body, err := json.Marshal(discordMessage{Embeds: []discordEmbed{buildOrderEmbed(order)}})
	if err != nil {
		return fmt.Errorf("failed to marshal discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	// Discord returns 204 on success; no response body is read
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// buildOrderEmbed formats an order of either kind into the embed shape
func buildOrderEmbed(order *models.Order) discordEmbed {
	embed := discordEmbed{
		Color:     embedColorSiamBlue,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	remarks := order.Remarks
	if remarks == "" {
		remarks = "無"
	}

	if order.Kind == models.OrderKindBadge {
		embed.Title = "新的 暹羅地攤 訂單！"
		embed.Fields = []discordField{
			{Name: "暱稱", Value: order.Nickname, Inline: true},
			{Name: "訂單編號", Value: order.OrderNo, Inline: true},
			{Name: "總金額", Value: fmt.Sprintf("NT$ %d", order.Price), Inline: true},
			{Name: "商品內容", Value: order.Title, Inline: false},
			{Name: "備註", Value: remarks, Inline: false},
		}
	} else {
		addonsText := "無"
		if len(order.Addons) > 0 {
			names := make([]string, len(order.Addons))
			for i, a := range order.Addons {
				names[i] = a.Name
			}
			addonsText = strings.Join(names, ", ")
		}

		embed.Title = "新的 Nocy餅舖 訂單！"
		embed.Fields = []discordField{
			{Name: "暱稱", Value: order.Nickname, Inline: true},
			{Name: "委託標題", Value: order.Title, Inline: true},
			{Name: "總金額", Value: fmt.Sprintf("NT$ %d", order.Price), Inline: true},
			{Name: "頭飾工藝", Value: order.HeadpieceCraft, Inline: false},
			{Name: "加價購", Value: addonsText, Inline: false},
			{Name: "備註", Value: remarks, Inline: false},
		}
	}

	if len(order.ReferenceImageURLs) > 0 {
		embed.Thumbnail = &discordThumbnail{URL: order.ReferenceImageURLs[0]}
	}

	return embed
}

// DispatchOrderNotification fires a new-order notification without blocking
// the caller. Failures are logged and swallowed, never surfaced to the
// submitting customer.
func DispatchOrderNotification(order *models.Order) {
	service := GetNotifier()
	if service == nil {
		return
	}

	snapshot := *order
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := service.NotifyNewOrder(ctx, &snapshot); err != nil {
			config.Logger().Error("order notification failed",
				zap.String("order_no", snapshot.OrderNo),
				zap.Error(err))
		}
	}()
}
