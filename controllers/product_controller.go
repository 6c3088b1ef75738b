package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
)

// SpecRequest is one variant in a product create/update request
type SpecRequest struct {
	SpecName string `json:"specName" binding:"required"`
	Price    int    `json:"price" binding:"gte=0"`
	ImageURL string `json:"imageUrl"`
	IsActive *bool  `json:"isActive"`
}

// CreateProductRequest represents the request body for creating a catalog series
type CreateProductRequest struct {
	CategoryID string        `json:"categoryId" binding:"required"`
	SeriesName string        `json:"seriesName" binding:"required"`
	Specs      []SpecRequest `json:"specs" binding:"required,min=1,dive"`
}

// UpdateProductRequest represents the request body for editing a catalog series
type UpdateProductRequest struct {
	CategoryID *string `json:"categoryId"`
	SeriesName *string `json:"seriesName"`
}

// UpdateSpecRequest represents the request body for editing one spec.
// Toggling isActive off hides the spec from ordering without deleting it.
type UpdateSpecRequest struct {
	SpecName *string `json:"specName"`
	Price    *int    `json:"price"`
	ImageURL *string `json:"imageUrl"`
	IsActive *bool   `json:"isActive"`
}

// ListProducts handles GET /api/v1/products - the storefront catalog with
// only currently orderable specs. Series with no active spec are hidden.
func ListProducts(c *gin.Context) {
	var products []models.Product
	if err := config.GetDB().Preload("Specs").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load the catalog",
			},
		})
		return
	}

	visible := make([]models.Product, 0, len(products))
	for _, product := range products {
		active := product.ActiveSpecs()
		if len(active) == 0 {
			continue
		}
		product.Specs = active
		visible = append(visible, product)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    visible,
	})
}

// ListAddons handles GET /api/v1/addons - the doll addon catalog and base price
func ListAddons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"basePrice": models.DollBasePrice,
			"addons":    models.DollAddons,
		},
	})
}

// AdminListProducts handles GET /api/v1/admin/products - the full catalog
// including inactive specs.
func AdminListProducts(c *gin.Context) {
	var products []models.Product
	if err := config.GetDB().Preload("Specs").Find(&products).Error; err != nil {
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
		"data":    products,
	})
}

// AdminCreateProduct handles POST /api/v1/admin/products
func AdminCreateProduct(c *gin.Context) {
	var req CreateProductRequest
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

	product := models.Product{
		CategoryID: req.CategoryID,
		SeriesName: req.SeriesName,
	}
	for _, spec := range req.Specs {
		active := true
		if spec.IsActive != nil {
			active = *spec.IsActive
		}
		product.Specs = append(product.Specs, models.Spec{
			SpecName: spec.SpecName,
			Price:    spec.Price,
			ImageURL: spec.ImageURL,
			IsActive: active,
		})
	}

	if err := config.GetDB().Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// AdminUpdateProduct handles PATCH /api/v1/admin/products/:id
func AdminUpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Product ID must be numeric",
			},
		})
		return
	}

	db := config.GetDB()
	var product models.Product
	if err := db.Preload("Specs").First(&product, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return
	}

	var req UpdateProductRequest
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

	changes := make(map[string]interface{})
	if req.CategoryID != nil {
		changes["category_id"] = *req.CategoryID
	}
	if req.SeriesName != nil {
		changes["series_name"] = *req.SeriesName
	}

	if len(changes) > 0 {
		if err := db.Model(&product).Updates(changes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// AdminUpdateSpec handles PATCH /api/v1/admin/products/:id/specs/:specId -
// edits one variant, including the isActive visibility toggle.
func AdminUpdateSpec(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Product ID must be numeric",
			},
		})
		return
	}
	specID, err := strconv.ParseUint(c.Param("specId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Spec ID must be numeric",
			},
		})
		return
	}

	db := config.GetDB()
	var spec models.Spec
	if err := db.Where("product_id = ?", uint(productID)).First(&spec, uint(specID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SPEC_NOT_FOUND",
				"message": "Spec not found",
			},
		})
		return
	}

	var req UpdateSpecRequest
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

	changes := make(map[string]interface{})
	if req.SpecName != nil {
		changes["spec_name"] = *req.SpecName
	}
	if req.Price != nil {
		changes["price"] = *req.Price
	}
	if req.ImageURL != nil {
		changes["image_url"] = *req.ImageURL
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}

	if len(changes) > 0 {
		if err := db.Model(&spec).Updates(changes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    spec,
	})
}
