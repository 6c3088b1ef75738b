package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
	"github.com/nocyshop/nocy-shop-api/services"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// parseOrderParam resolves the :id path parameter to an order, writing the
// error response itself when the order cannot be found.
func parseOrderParam(c *gin.Context) (*models.Order, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Order ID must be numeric",
			},
		})
		return nil, false
	}

	order, err := services.FindOrderByID(config.GetDB(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return nil, false
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return nil, false
	}

	return order, true
}

// sendMessage appends one message from the given sender to the order thread
func sendMessage(c *gin.Context, sender string) {
	order, ok := parseOrderParam(c)
	if !ok {
		return
	}

	var req SendMessageRequest
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

	message, err := services.AppendMessage(config.GetDB(), order.ID, sender, req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to send message",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// SendCustomerMessage handles POST /api/v1/orders/:id/messages
func SendCustomerMessage(c *gin.Context) {
	sendMessage(c, models.SenderCustomer)
}

// SendAdminMessage handles POST /api/v1/admin/orders/:id/messages
func SendAdminMessage(c *gin.Context) {
	sendMessage(c, models.SenderAdmin)
}

// ListMessages handles GET /api/v1/orders/:id/messages - the order's
// conversation thread ordered by message timestamp.
func ListMessages(c *gin.Context) {
	order, ok := parseOrderParam(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := config.GetDB().
		Where("order_id = ?", order.ID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch messages",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}
