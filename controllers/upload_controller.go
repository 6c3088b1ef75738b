package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/services"
)

// AdminUploadImage handles POST /api/v1/admin/uploads/:role - a standalone
// upload through the compression pipeline. The role segment selects the
// compression policy and destination folder.
func AdminUploadImage(c *gin.Context) {
	role, err := services.ParseImageRole(c.Param("role"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	file, err := c.FormFile("image")
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

	url, err := services.GetImageService().UploadImage(c.Request.Context(), file, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"url": url,
		},
	})
}
