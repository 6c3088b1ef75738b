package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
	"github.com/nocyshop/nocy-shop-api/services"
)

// BadgeOrderItem is one cart line in a badge order submission
type BadgeOrderItem struct {
	ProductID uint   `json:"product_id" binding:"required"`
	SpecName  string `json:"specName" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CreateBadgeOrderRequest represents the request body for a stall checkout
type CreateBadgeOrderRequest struct {
	Nickname string           `json:"nickname" binding:"required"`
	Contact  string           `json:"contact" binding:"required"`
	Remarks  string           `json:"remarks"`
	Items    []BadgeOrderItem `json:"items" binding:"required,min=1,dive"`
}

// orderView is the customer-facing rendering of an order: the stored
// fields plus the computed progress timeline.
type orderView struct {
	models.Order
	NormalizedStatus string              `json:"normalizedStatus"`
	Progress         []models.StageState `json:"progress"`
}

func newOrderView(order models.Order) orderView {
	return orderView{
		Order:            order,
		NormalizedStatus: models.NormalizeStatus(order.Status),
		Progress:         models.ProgressTimeline(order.Status, order.Kind),
	}
}

// CreateDollOrder handles POST /api/v1/orders/doll - customer commission
// submission as a multipart form with reference images.
func CreateDollOrder(c *gin.Context) {
	db := config.GetDB()

	// New submissions are gated on the shop-open flag
	open, err := services.GetShopStatus(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Could not check shop status. Please try again.",
			},
		})
		return
	}
	if !open {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SHOP_CLOSED",
				"message": "The shop is not accepting new commissions right now",
			},
		})
		return
	}

	nickname := c.PostForm("nickname")
	title := c.PostForm("title")
	if nickname == "" || title == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Nickname and title are required",
			},
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "At least one reference image is required",
			},
		})
		return
	}

	// Upload reference images through the compression pipeline. Upload
	// failure is a hard failure: without the images there is no order.
	imageService := services.GetImageService()
	imageURLs := make(models.URLList, 0, len(form.File["images"]))
	for _, fileHeader := range form.File["images"] {
		url, err := imageService.UploadImage(c.Request.Context(), fileHeader, services.RoleReference)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPLOAD_FAILED",
					"message": "Failed to upload reference image. Please try again.",
					"details": err.Error(),
				},
			})
			return
		}
		imageURLs = append(imageURLs, url)
	}

	// Price is computed server-side: base price plus the addon snapshot
	addons := models.SelectAddons(c.PostFormArray("addons"))
	totalPrice := models.DollBasePrice + models.AddonTotal(addons)

	order := models.Order{
		Kind:               models.OrderKindDoll,
		Nickname:           nickname,
		Contact:            c.PostForm("contact"),
		Title:              title,
		HeadpieceCraft:     c.PostForm("headpieceCraft"),
		Remarks:            c.PostForm("remarks"),
		Addons:             addons,
		Price:              totalPrice,
		Status:             models.StatusPending,
		ReferenceImageURLs: imageURLs,
	}

	if err := services.CreateOrder(db, &order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order. Please try again.",
			},
		})
		return
	}

	// The order is durably persisted; sidecars are best-effort from here
	services.DispatchSheetSync(&order)
	services.DispatchOrderNotification(&order)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    newOrderView(order),
	})
}

// CreateBadgeOrder handles POST /api/v1/orders/badge - stall checkout from
// a cart of catalog spec lines.
func CreateBadgeOrder(c *gin.Context) {
	var req CreateBadgeOrderRequest
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

	db := config.GetDB()

	// Resolve cart lines against the catalog; inactive specs are not orderable
	cart := models.NewCart()
	for _, item := range req.Items {
		var product models.Product
		if err := db.Preload("Specs").First(&product, item.ProductID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PRODUCT_NOT_FOUND",
					"message": "One of the selected products no longer exists",
				},
			})
			return
		}

		var matched *models.Spec
		for i := range product.Specs {
			if product.Specs[i].SpecName == item.SpecName && product.Specs[i].IsActive {
				matched = &product.Specs[i]
				break
			}
		}
		if matched == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SPEC_NOT_ORDERABLE",
					"message": "One of the selected specs is not currently orderable",
				},
			})
			return
		}

		cart.Add(product, *matched, item.Quantity)
	}

	if cart.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "The cart is empty",
			},
		})
		return
	}

	order := models.Order{
		Kind:     models.OrderKindBadge,
		Nickname: req.Nickname,
		Contact:  req.Contact,
		Title:    cart.ContentBlock(),
		Price:    cart.Total(),
		Status:   models.StatusQuantitySurvey,
		Remarks:  req.Remarks,
	}

	if err := services.CreateOrder(db, &order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order. Please try again.",
			},
		})
		return
	}

	services.DispatchSheetSync(&order)
	services.DispatchOrderNotification(&order)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    newOrderView(order),
	})
}

// LookupOrders handles GET /api/v1/orders/lookup?q= - customer order search
// by nickname or order number across both order kinds.
func LookupOrders(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A nickname or order number is required",
			},
		})
		return
	}

	orders, err := services.LookupOrders(config.GetDB(), term)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to search orders. Please try again.",
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

// GetShopStatus handles GET /api/v1/shop-status - whether new doll
// commissions are being accepted.
func GetShopStatus(c *gin.Context) {
	open, err := services.GetShopStatus(config.GetDB())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Could not read shop status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"isShopOpen": open},
	})
}
