package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CleanupRetentionDays is how long delivered orders are kept before they
// become cleanup candidates.
const CleanupRetentionDays = 60

// CreateOrder persists a new order. The human-facing order number is
// generated here when the caller did not supply one; the store assigns the
// row id and creation timestamp.
func CreateOrder(db *gorm.DB, order *models.Order) error {
	if order.OrderNo == "" {
		order.OrderNo = models.GenerateOrderNo(order.Kind, time.Now())
	}
	if order.Addons == nil {
		order.Addons = models.AddonList{}
	}
	if order.ReferenceImageURLs == nil {
		order.ReferenceImageURLs = models.URLList{}
	}
	if order.ProgressImageURLs == nil {
		order.ProgressImageURLs = models.URLList{}
	}
	return db.Create(order).Error
}

// FindOrderByID does a point lookup with the conversation thread loaded.
// Absence is a valid outcome, returned as (nil, nil) rather than an error.
func FindOrderByID(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("timestamp ASC")
	}).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// LookupOrders resolves a customer-facing search term against both the
// nickname and the order number. The two predicates are issued as separate
// equality queries and the results unioned, deduplicated by row id, newest
// first. Neither field is unique, so multiple matches are expected.
func LookupOrders(db *gorm.DB, term string) ([]models.Order, error) {
	withMessages := func(tx *gorm.DB) *gorm.DB {
		return tx.Order("timestamp ASC")
	}

	var byNickname []models.Order
	if err := db.Preload("Messages", withMessages).Where("nickname = ?", term).Find(&byNickname).Error; err != nil {
		return nil, err
	}

	var byOrderNo []models.Order
	if err := db.Preload("Messages", withMessages).Where("order_no = ?", term).Find(&byOrderNo).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	merged := make([]models.Order, 0, len(byNickname)+len(byOrderNo))
	for _, order := range append(byNickname, byOrderNo...) {
		if seen[order.ID] {
			continue
		}
		seen[order.ID] = true
		merged = append(merged, order)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return merged, nil
}

// OrderUpdates carries the admin-editable fields of an edit request. Nil
// means "not submitted" and is excluded from the diff.
type OrderUpdates struct {
	Status  *string
	Price   *int
	Remarks *string
	Contact *string
}

// BuildOrderUpdates computes the changed-field map against the last-known
// state. Only changed fields are sent to the store, so an edit does not
// clobber fields another actor touched in the meantime.
func BuildOrderUpdates(order *models.Order, updates OrderUpdates) map[string]interface{} {
	changes := make(map[string]interface{})
	if updates.Status != nil && *updates.Status != order.Status {
		changes["status"] = *updates.Status
	}
	if updates.Price != nil && *updates.Price != order.Price {
		changes["price"] = *updates.Price
	}
	if updates.Remarks != nil && *updates.Remarks != order.Remarks {
		changes["remarks"] = *updates.Remarks
	}
	if updates.Contact != nil && *updates.Contact != order.Contact {
		changes["contact"] = *updates.Contact
	}
	return changes
}

// TouchesSummary reports whether a change map moves any field carried by
// the spreadsheet mirror, i.e. whether a sync should follow the write.
func TouchesSummary(changes map[string]interface{}) bool {
	for _, field := range []string{"status", "price", "remarks"} {
		if _, ok := changes[field]; ok {
			return true
		}
	}
	return false
}

// ApplyOrderUpdates writes the changed fields as a partial merge and
// refreshes the in-memory order. An empty change map is a no-op.
func ApplyOrderUpdates(db *gorm.DB, order *models.Order, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	if err := db.Model(order).Updates(changes).Error; err != nil {
		return err
	}
	return nil
}

// AppendMessage adds one message to the order's thread. Messages are rows,
// not an embedded array, so two concurrent appends from different actors
// are both preserved; display order is the message timestamp.
func AppendMessage(db *gorm.DB, orderID uint, sender, text string) (*models.Message, error) {
	message := &models.Message{
		OrderID:   orderID,
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
	if err := db.Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// AppendProgressImage appends a URL to the order's progress image list.
// The list is append-only and admin-driven; last-write-wins on the column
// matches the store's posture for non-message fields.
func AppendProgressImage(db *gorm.DB, order *models.Order, url string) error {
	updated := append(models.URLList{}, order.ProgressImageURLs...)
	updated = append(updated, url)
	if err := db.Model(order).Update("progress_image_urls", updated).Error; err != nil {
		return err
	}
	order.ProgressImageURLs = updated
	return nil
}

// DeleteOrders permanently removes the given orders and their message
// threads in one transaction. Stored images are deleted best-effort first:
// an image-delete failure is logged but never blocks or rolls back the
// document delete, accepting an orphaned object as the lesser failure.
func DeleteOrders(ctx context.Context, db *gorm.DB, orders []models.Order) error {
	imageService := GetImageService()
	for _, order := range orders {
		for _, url := range order.AllImageURLs() {
			if imageService == nil {
				break
			}
			if err := imageService.DeleteImage(ctx, url); err != nil {
				config.Logger().Warn("image delete failed during order delete",
					zap.String("order_no", order.OrderNo),
					zap.String("url", url),
					zap.Error(err))
			}
		}
	}

	ids := make([]uint, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("order_id IN ?", ids).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete order messages: %w", err)
		}
		if err := tx.Unscoped().Delete(&models.Order{}, ids).Error; err != nil {
			return fmt.Errorf("failed to delete orders: %w", err)
		}
		return nil
	})
}

// CleanupCandidates returns orders in their kind's terminal status whose
// creation time is older than the retention window. Status matching runs
// through legacy normalization, so historical free-text delivered strings
// qualify too; that rules out a pure SQL predicate.
func CleanupCandidates(db *gorm.DB, now time.Time) ([]models.Order, error) {
	cutoff := now.AddDate(0, 0, -CleanupRetentionDays)

	var aged []models.Order
	if err := db.Where("created_at < ?", cutoff).Order("created_at ASC").Find(&aged).Error; err != nil {
		return nil, err
	}

	candidates := make([]models.Order, 0, len(aged))
	for _, order := range aged {
		if models.IsTerminalStatus(order.Status, order.Kind) {
			candidates = append(candidates, order)
		}
	}
	return candidates, nil
}

// ResyncAllOrders re-sends every order to the spreadsheet mirror,
// oldest-first, to repair drift from missed best-effort syncs. Individual
// failures are tolerated; the aggregate counts are reported at the end.
func ResyncAllOrders(ctx context.Context, db *gorm.DB) (synced, failed int, err error) {
	sheetService := GetSheetService()
	if sheetService == nil {
		return 0, 0, fmt.Errorf("sheet service is not initialized")
	}

	var orders []models.Order
	if err := db.Order("created_at ASC").Find(&orders).Error; err != nil {
		return 0, 0, err
	}

	for i := range orders {
		if err := sheetService.SyncOrder(ctx, &orders[i]); err != nil {
			failed++
			config.Logger().Error("bulk resync failed for order",
				zap.String("order_no", orders[i].OrderNo),
				zap.Error(err))
			continue
		}
		synced++
	}

	return synced, failed, nil
}
