package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
	"github.com/nocyshop/nocy-shop-api/services"
	"gorm.io/gorm"
)

// Typed confirmation phrases for destructive admin operations. Input is
// whitespace-trimmed, then compared exactly.
const (
	BatchDeleteConfirmPhrase = "確認刪除"
	CleanupConfirmPhrase     = "確認清除"
)

// AdminCreateOrderRequest represents the request body for manual order entry
type AdminCreateOrderRequest struct {
	Kind           string   `json:"kind"`
	Nickname       string   `json:"nickname" binding:"required"`
	Contact        string   `json:"contact" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Price          int      `json:"price" binding:"gte=0"`
	HeadpieceCraft string   `json:"headpieceCraft"`
	AddonIDs       []string `json:"addons"`
	Remarks        string   `json:"remarks"`
	ReferenceURLs  []string `json:"referenceImageUrls"`
}

// AdminUpdateOrderRequest represents the request body for editing an order.
// Pointer fields distinguish "not submitted" from an explicit value.
type AdminUpdateOrderRequest struct {
	Status  *string `json:"status"`
	Price   *int    `json:"price"`
	Remarks *string `json:"remarks"`
	Contact *string `json:"contact"`
}

// BatchDeleteRequest represents the request body for batch order deletion
type BatchDeleteRequest struct {
	IDs          []uint `json:"ids" binding:"required,min=1"`
	Confirmation string `json:"confirmation"`
}

// ShopStatusRequest represents the request body for the shop toggle
type ShopStatusRequest struct {
	IsShopOpen *bool `json:"isShopOpen" binding:"required"`
}

// messagesByTimestamp orders preloaded threads for display
func messagesByTimestamp(tx *gorm.DB) *gorm.DB {
	return tx.Order("timestamp ASC")
}

// AdminListOrders handles GET /api/v1/admin/orders?kind= - all orders,
// optionally filtered by kind, newest first, with threads loaded.
func AdminListOrders(c *gin.Context) {
	query := config.GetDB().Preload("Messages", messagesByTimestamp).Order("created_at DESC")
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	views := make([]orderView, len(orders))
	for i, order := range orders {
		views[i] = newOrderView(order)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
	})
}

// AdminCreateOrder handles POST /api/v1/admin/orders - manual order entry.
// Manually entered orders skip the intake stage and start accepted.
func AdminCreateOrder(c *gin.Context) {
	var req AdminCreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	kind := models.OrderKindDoll
	status := models.StatusAccepted
	if req.Kind == string(models.OrderKindBadge) {
		kind = models.OrderKindBadge
		status = models.StatusQuantitySurvey
	}

	remarks := req.Remarks
	if remarks == "" {
		remarks = "由管理員手動建立"
	}

	order := models.Order{
		Kind:               kind,
		Nickname:           req.Nickname,
		Contact:            req.Contact,
		Title:              req.Title,
		Price:              req.Price,
		Status:             status,
		HeadpieceCraft:     req.HeadpieceCraft,
		Addons:             models.SelectAddons(req.AddonIDs),
		Remarks:            remarks,
		ReferenceImageURLs: models.URLList(req.ReferenceURLs),
	}

	if err := services.CreateOrder(config.GetDB(), &order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	services.DispatchSheetSync(&order)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    newOrderView(order),
	})
}

// AdminUpdateOrder handles PATCH /api/v1/admin/orders/:id - partial edit of
// status/price/remarks/contact. Only changed fields are written, and a
// mirror sync follows whenever a summary field moved.
func AdminUpdateOrder(c *gin.Context) {
	order, ok := parseOrderParam(c)
	if !ok {
		return
	}

	var req AdminUpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	changes := services.BuildOrderUpdates(order, services.OrderUpdates{
		Status:  req.Status,
		Price:   req.Price,
		Remarks: req.Remarks,
		Contact: req.Contact,
	})

	if err := services.ApplyOrderUpdates(config.GetDB(), order, changes); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	if services.TouchesSummary(changes) {
		services.DispatchSheetSync(order)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    newOrderView(*order),
	})
}

// AdminAppendProgressImage handles POST /api/v1/admin/orders/:id/progress-images
// - uploads one progress photo through the pipeline and appends its URL to
// the order's append-only progress list.
func AdminAppendProgressImage(c *gin.Context) {
	order, ok := parseOrderParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "An image file is required",
			},
		})
		return
	}

	url, err := services.GetImageService().UploadImage(c.Request.Context(), fileHeader, services.RoleProgress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if err := services.AppendProgressImage(config.GetDB(), order, url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    newOrderView(*order),
	})
}

// AdminBatchDeleteOrders handles DELETE /api/v1/admin/orders - permanently
// removes the selected orders and their images, gated on the typed
// confirmation phrase. A mismatch blocks the operation with no effect.
func AdminBatchDeleteOrders(c *gin.Context) {
	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if strings.TrimSpace(req.Confirmation) != BatchDeleteConfirmPhrase {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIRMATION_MISMATCH",
				"message": fmt.Sprintf("請輸入「%s」以執行此操作", BatchDeleteConfirmPhrase),
			},
		})
		return
	}

	db := config.GetDB()

	var orders []models.Order
	if err := db.Find(&orders, req.IDs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	if err := services.DeleteOrders(c.Request.Context(), db, orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": len(orders)},
	})
}

// AdminListCleanupCandidates handles GET /api/v1/admin/orders/cleanup-candidates
// - delivered orders older than the retention window.
func AdminListCleanupCandidates(c *gin.Context) {
	candidates, err := services.CleanupCandidates(config.GetDB(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    candidates,
	})
}

// AdminCleanupOrders handles POST /api/v1/admin/orders/cleanup - deletes
// selected cleanup candidates plus their images. The candidate set is
// recomputed server-side so a stale selection cannot delete live orders.
func AdminCleanupOrders(c *gin.Context) {
	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if strings.TrimSpace(req.Confirmation) != CleanupConfirmPhrase {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CONFIRMATION_MISMATCH",
				"message": fmt.Sprintf("請輸入「%s」以執行此操作", CleanupConfirmPhrase),
			},
		})
		return
	}

	db := config.GetDB()

	candidates, err := services.CleanupCandidates(db, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	eligible := make(map[uint]models.Order, len(candidates))
	for _, order := range candidates {
		eligible[order.ID] = order
	}

	selected := make([]models.Order, 0, len(req.IDs))
	for _, id := range req.IDs {
		if order, ok := eligible[id]; ok {
			selected = append(selected, order)
		}
	}

	if len(selected) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_CANDIDATES",
				"message": "None of the selected orders are eligible for cleanup",
			},
		})
		return
	}

	if err := services.DeleteOrders(c.Request.Context(), db, selected); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": len(selected)},
	})
}

// AdminResyncOrders handles POST /api/v1/admin/sync/orders - bulk re-send
// of every order to the spreadsheet mirror to repair drift.
func AdminResyncOrders(c *gin.Context) {
	synced, failed, err := services.ResyncAllOrders(c.Request.Context(), config.GetDB())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SYNC_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"synced": synced, "failed": failed},
	})
}

// AdminSetShopStatus handles PUT /api/v1/admin/shop-status - toggles
// whether the storefront accepts new doll commissions.
func AdminSetShopStatus(c *gin.Context) {
	var req ShopStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := services.SetShopStatus(config.GetDB(), *req.IsShopOpen); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"isShopOpen": *req.IsShopOpen},
	})
}
