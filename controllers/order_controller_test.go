package controllers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/models"
	"github.com/nocyshop/nocy-shop-api/services"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate the order lifecycle and catalog models
	if err := db.AutoMigrate(
		&models.Order{},
		&models.Message{},
		&models.Product{},
		&models.Spec{},
		&models.ShopConfig{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupSidecarMocks installs mock image, sheet, and notifier services and
// returns them for assertions
func setupSidecarMocks(t *testing.T) (*services.MockImageService, *services.MockSheetService, *services.MockNotifier) {
	t.Helper()

	mockImages := services.NewMockImageService()
	mockImages.SetAsMockForTesting()
	mockSheet := services.NewMockSheetService()
	mockSheet.SetAsMockForTesting()
	mockNotifier := services.NewMockNotifier()
	mockNotifier.SetAsMockForTesting()

	t.Cleanup(func() {
		services.SetImageService(nil)
		services.SetSheetService(nil)
		services.SetNotifier(nil)
	})

	return mockImages, mockSheet, mockNotifier
}

// tinyPNG encodes a minimal valid PNG file for upload tests
func tinyPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 250, G: 200, B: 210, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

// buildDollOrderForm builds the multipart body a doll submission sends
func buildDollOrderForm(t *testing.T, fields map[string]string, addons []string, images map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write form field: %v", err)
		}
	}
	for _, addon := range addons {
		if err := writer.WriteField("addons", addon); err != nil {
			t.Fatalf("Failed to write addon field: %v", err)
		}
	}
	for filename, content := range images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="images"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(h)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// waitForSidecars polls until both sidecar mocks have seen the expected calls
func waitForSidecars(t *testing.T, mockSheet *services.MockSheetService, mockNotifier *services.MockNotifier, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mockSheet.CallCount() >= want && len(mockNotifier.NotifiedOrders()) >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCreateDollOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	_, mockSheet, mockNotifier := setupSidecarMocks(t)

	router := setupTestRouter()
	router.POST("/orders/doll", CreateDollOrder)

	body, contentType := buildDollOrderForm(t,
		map[string]string{
			"nickname":       "小美",
			"contact":        "@xiaomei",
			"title":          "粉色小餅",
			"headpieceCraft": "羊毛氈",
			"remarks":        "生日禮物",
		},
		[]string{"glue-30ml", "stand-bag-pink"},
		map[string][]byte{"ref.png": tinyPNG(t)},
	)

	req, _ := http.NewRequest(http.MethodPost, "/orders/doll", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "小美", data["nickname"])
	assert.Equal(t, models.StatusPending, data["status"])
	// Server-side price: base 700 + glue 13 + stand bag 75
	assert.Equal(t, float64(788), data["totalPrice"])
	assert.Regexp(t, `^NOCY-\d{1,6}$`, data["orderId"])
	assert.Len(t, data["referenceImageUrls"], 1)
	assert.Len(t, data["progress"], 13)

	// Addon snapshot carries catalog names and prices
	addons := data["addons"].([]interface{})
	assert.Len(t, addons, 2)

	// Both sidecars fire after the durable write
	waitForSidecars(t, mockSheet, mockNotifier, 1)
	assert.Equal(t, 1, mockSheet.CallCount())
	row, ok := mockSheet.Row(data["orderId"].(string))
	assert.True(t, ok)
	assert.Equal(t, "小餅訂單", row.SheetName)
	assert.Equal(t, []string{data["orderId"].(string)}, mockNotifier.NotifiedOrders())
}

func TestCreateDollOrder_ShopClosed(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	setupSidecarMocks(t)

	assert.NoError(t, services.SetShopStatus(db, false))

	router := setupTestRouter()
	router.POST("/orders/doll", CreateDollOrder)

	body, contentType := buildDollOrderForm(t,
		map[string]string{"nickname": "小美", "title": "粉色小餅"},
		nil,
		map[string][]byte{"ref.png": tinyPNG(t)},
	)

	req, _ := http.NewRequest(http.MethodPost, "/orders/doll", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "SHOP_CLOSED", errorData["code"])

	// Nothing was persisted
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateDollOrder_ValidationFailures(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	setupSidecarMocks(t)

	tests := []struct {
		name   string
		fields map[string]string
		images map[string][]byte
	}{
		{
			name:   "Missing nickname",
			fields: map[string]string{"title": "粉色小餅"},
			images: map[string][]byte{"ref.png": {1, 2, 3}},
		},
		{
			name:   "Missing title",
			fields: map[string]string{"nickname": "小美"},
			images: map[string][]byte{"ref.png": {1, 2, 3}},
		},
		{
			name:   "No reference images",
			fields: map[string]string{"nickname": "小美", "title": "粉色小餅"},
			images: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/orders/doll", CreateDollOrder)

			body, contentType := buildDollOrderForm(t, tt.fields, nil, tt.images)
			req, _ := http.NewRequest(http.MethodPost, "/orders/doll", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			errorData := response["error"].(map[string]interface{})
			assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
		})
	}
}

func TestCreateDollOrder_UploadFailureAbortsOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	mockImages, _, _ := setupSidecarMocks(t)
	mockImages.FailUploads = true

	router := setupTestRouter()
	router.POST("/orders/doll", CreateDollOrder)

	body, contentType := buildDollOrderForm(t,
		map[string]string{"nickname": "小美", "title": "粉色小餅"},
		nil,
		map[string][]byte{"ref.png": tinyPNG(t)},
	)

	req, _ := http.NewRequest(http.MethodPost, "/orders/doll", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "UPLOAD_FAILED", errorData["code"])

	// Upload failure is a hard failure: no order row
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func seedBadgeCatalog(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()

	product := models.Product{
		CategoryID: "badges",
		SeriesName: "小熊系列",
		Specs: []models.Spec{
			{SpecName: "站姿", Price: 120, IsActive: true},
			{SpecName: "坐姿", Price: 150, IsActive: true},
			{SpecName: "絕版", Price: 200, IsActive: false},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}
	return product
}

func TestCreateBadgeOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	_, mockSheet, mockNotifier := setupSidecarMocks(t)
	product := seedBadgeCatalog(t, db)

	router := setupTestRouter()
	router.POST("/orders/badge", CreateBadgeOrder)

	requestBody := map[string]interface{}{
		"nickname": "阿強",
		"contact":  "@aqiang",
		"remarks":  "合併運送",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "specName": "站姿", "quantity": 2},
			{"product_id": product.ID, "specName": "坐姿", "quantity": 1},
		},
	}
	body, _ := json.Marshal(requestBody)

	req, _ := http.NewRequest(http.MethodPost, "/orders/badge", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.StatusQuantitySurvey, data["status"])
	assert.Regexp(t, `^STALL-\d{1,6}$`, data["orderId"])
	// 站姿 x2 (240) + 坐姿 x1 (150)
	assert.Equal(t, float64(390), data["totalPrice"])
	// The content block becomes the order title
	assert.Equal(t, "小熊系列 - 坐姿 x1 (NT$ 150)\n小熊系列 - 站姿 x2 (NT$ 240)", data["title"])
	assert.Len(t, data["progress"], 10)

	waitForSidecars(t, mockSheet, mockNotifier, 1)
	row, ok := mockSheet.Row(data["orderId"].(string))
	assert.True(t, ok)
	assert.Equal(t, "地攤訂單", row.SheetName)
}

func TestCreateBadgeOrder_InactiveSpecRejected(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	setupSidecarMocks(t)
	product := seedBadgeCatalog(t, db)

	router := setupTestRouter()
	router.POST("/orders/badge", CreateBadgeOrder)

	requestBody := map[string]interface{}{
		"nickname": "阿強",
		"contact":  "@aqiang",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "specName": "絕版", "quantity": 1},
		},
	}
	body, _ := json.Marshal(requestBody)

	req, _ := http.NewRequest(http.MethodPost, "/orders/badge", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "SPEC_NOT_ORDERABLE", errorData["code"])
}

func TestCreateBadgeOrder_ValidationFailures(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)
	setupSidecarMocks(t)
	product := seedBadgeCatalog(t, db)

	tests := []struct {
		name          string
		requestBody   map[string]interface{}
		expectedError string
	}{
		{
			name: "Missing nickname",
			requestBody: map[string]interface{}{
				"contact": "@aqiang",
				"items": []map[string]interface{}{
					{"product_id": product.ID, "specName": "站姿", "quantity": 1},
				},
			},
			expectedError: "VALIDATION_ERROR",
		},
		{
			name: "Empty items",
			requestBody: map[string]interface{}{
				"nickname": "阿強",
				"contact":  "@aqiang",
				"items":    []map[string]interface{}{},
			},
			expectedError: "VALIDATION_ERROR",
		},
		{
			name: "Zero quantity",
			requestBody: map[string]interface{}{
				"nickname": "阿強",
				"contact":  "@aqiang",
				"items": []map[string]interface{}{
					{"product_id": product.ID, "specName": "站姿", "quantity": 0},
				},
			},
			expectedError: "VALIDATION_ERROR",
		},
		{
			name: "Unknown product",
			requestBody: map[string]interface{}{
				"nickname": "阿強",
				"contact":  "@aqiang",
				"items": []map[string]interface{}{
					{"product_id": 9999, "specName": "站姿", "quantity": 1},
				},
			},
			expectedError: "PRODUCT_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/orders/badge", CreateBadgeOrder)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/orders/badge", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			errorData := response["error"].(map[string]interface{})
			assert.Equal(t, tt.expectedError, errorData["code"])
		})
	}
}

func TestLookupOrders(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)

	order := &models.Order{
		Kind:     models.OrderKindDoll,
		OrderNo:  "NOCY-123456",
		Nickname: "小美",
		Title:    "粉色小餅",
		Status:   "已送達(委託完成)",
	}
	assert.NoError(t, services.CreateOrder(db, order))

	router := setupTestRouter()
	router.GET("/orders/lookup", LookupOrders)

	req, _ := http.NewRequest(http.MethodGet, "/orders/lookup?q=NOCY-123456", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)

	view := data[0].(map[string]interface{})
	// Stored value is preserved; the normalized form rides alongside
	assert.Equal(t, "已送達(委託完成)", view["status"])
	assert.Equal(t, models.StatusDelivered, view["normalizedStatus"])

	progress := view["progress"].([]interface{})
	last := progress[len(progress)-1].(map[string]interface{})
	assert.Equal(t, true, last["current"])
}

func TestLookupOrders_MissingQuery(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.GET("/orders/lookup", LookupOrders)

	req, _ := http.NewRequest(http.MethodGet, "/orders/lookup", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetShopStatus(t *testing.T) {
	db := setupOrderTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.GET("/shop-status", GetShopStatus)

	req, _ := http.NewRequest(http.MethodGet, "/shop-status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["isShopOpen"])
}
