package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
	"go.uber.org/zap"
)

// SheetPayload is the flat row shape the mirror endpoint upserts by orderId.
// Both order kinds are normalized to this one shape: a badge order's content
// block maps to title and its price to totalPrice.
type SheetPayload struct {
	SheetName  string `json:"sheetName"`
	OrderID    string `json:"orderId"`
	CreatedAt  string `json:"createdAt"` // locale-formatted string, matching the sheet's existing rows
	Nickname   string `json:"nickname"`
	Title      string `json:"title"`
	TotalPrice int    `json:"totalPrice"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

// SheetInterface defines the interface for the spreadsheet mirror sync
type SheetInterface interface {
	// SyncOrder upserts one order's summary row, keyed by orderId
	SyncOrder(ctx context.Context, order *models.Order) error
}

// SheetService posts order summaries to the external spreadsheet script.
// The destination implements upsert-by-key itself; this service only sends
// the payload. Delivery is best-effort: the mirror is a non-authoritative
// downstream copy that may lag the primary store.
type SheetService struct {
	scriptURL  string
	httpClient *http.Client
}

var sheetServiceInstance SheetInterface

// InitSheetService initializes the sheet sync service
func InitSheetService(cfg *config.Config) SheetInterface {
	sheetServiceInstance = &SheetService{
		scriptURL: cfg.SheetScriptURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	return sheetServiceInstance
}

// GetSheetService returns the initialized sheet service instance
func GetSheetService() SheetInterface {
	return sheetServiceInstance
}

// SetSheetService sets the sheet service instance (primarily for testing)
func SetSheetService(service SheetInterface) {
	sheetServiceInstance = service
}

// BuildSheetPayload flattens an order of either kind into the mirror row shape.
func BuildSheetPayload(order *models.Order) SheetPayload {
	return SheetPayload{
		SheetName:  order.SheetName(),
		OrderID:    order.OrderNo,
		CreatedAt:  order.CreatedAt.Format("2006/01/02 15:04:05"),
		Nickname:   order.Nickname,
		Title:      order.Title,
		TotalPrice: order.Price,
		Status:     order.Status,
		Remarks:    order.Remarks,
	}
}

// SyncOrder sends one order's summary to the mirror endpoint. When the
// script URL is unset or still the placeholder, the call is skipped
// silently rather than attempted.
func (s *SheetService) SyncOrder(ctx context.Context, order *models.Order) error {
	if !strings.Contains(s.scriptURL, "script.google.com") {
		config.Logger().Warn("sheet script URL is not configured, skipping sync",
			zap.String("order_no", order.OrderNo))
		return nil
	}

	body, err := json.Marshal(BuildSheetPayload(order))
	if err != nil {
		return fmt.Errorf("failed to marshal sheet payload: %w", err)
	}

	// The script reads the row from a "payload" form field
	form := url.Values{}
	form.Set("payload", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.scriptURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create sheet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheet sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sheet sync returned status %d", resp.StatusCode)
	}

	// The script reports success through a discriminator field; nothing
	// else in the response is relied upon.
	var result struct {
		Result string `json:"result"`
		Error  string `json:"error"`
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sheet response: %w", err)
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse sheet response: %w", err)
	}
	if result.Result != "success" {
		return fmt.Errorf("sheet sync rejected: %s", result.Error)
	}

	return nil
}

// DispatchSheetSync fires a mirror sync for the order without blocking the
// caller. Failures are logged and swallowed; the primary store write is the
// only operation whose success determines the user-visible outcome.
func DispatchSheetSync(order *models.Order) {
	service := GetSheetService()
	if service == nil {
		return
	}

	snapshot := *order
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := service.SyncOrder(ctx, &snapshot); err != nil {
			config.Logger().Error("sheet sync failed",
				zap.String("order_no", snapshot.OrderNo),
				zap.Error(err))
			return
		}
		config.Logger().Info("sheet sync ok",
			zap.String("order_no", snapshot.OrderNo),
			zap.String("sheet", snapshot.SheetName()))
	}()
}
