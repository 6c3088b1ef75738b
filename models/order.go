package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// OrderKind discriminates the two order variants sharing the common shape.
type OrderKind string

const (
	OrderKindDoll  OrderKind = "doll"
	OrderKindBadge OrderKind = "badge"
)

// Message senders.
const (
	SenderAdmin    = "admin"
	SenderCustomer = "customer"
)

// Human-facing order number prefixes per kind.
const (
	DollOrderPrefix  = "NOCY"
	BadgeOrderPrefix = "STALL"
)

// Addon is a priced extra snapshotted into a doll order at submission time.
// Catalog price changes never retroactively affect placed orders.
type Addon struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// AddonList stores the addon snapshot as a JSON column on the order row.
type AddonList []Addon

// Value implements driver.Valuer for JSON storage
func (a AddonList) Value() (driver.Value, error) {
	if a == nil {
		a = AddonList{}
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSON storage
func (a *AddonList) Scan(value interface{}) error {
	if value == nil {
		*a = AddonList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported addon list type %T", value)
	}
	return json.Unmarshal(data, a)
}

// URLList stores an ordered list of durable image URLs as a JSON column.
type URLList []string

// Value implements driver.Valuer for JSON storage
func (u URLList) Value() (driver.Value, error) {
	if u == nil {
		u = URLList{}
	}
	return json.Marshal(u)
}

// Scan implements sql.Scanner for JSON storage
func (u *URLList) Scan(value interface{}) error {
	if value == nil {
		*u = URLList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported url list type %T", value)
	}
	return json.Unmarshal(data, u)
}

// Order represents one placed order of either kind. Doll commissions and
// badge/stall orders share the base shape; doll-only fields (headpiece
// craft, addon snapshot) stay empty on badge rows.
type Order struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Kind     OrderKind `gorm:"not null;index" json:"kind"`
	OrderNo  string    `gorm:"not null;index" json:"orderId"` // human-facing, e.g. NOCY-123456; external lookup key
	Nickname string    `gorm:"not null;index" json:"nickname"`
	Contact  string    `json:"contact"`
	Title    string    `gorm:"type:text;not null" json:"title"` // doll: commission title; badge: line-item content block
	Price    int       `gorm:"not null" json:"totalPrice"`      // currency units; admin-editable after creation
	Status   string    `gorm:"not null" json:"status"`          // literal display string from the kind's vocabulary
	Remarks  string    `gorm:"type:text" json:"remarks"`

	// Doll-only
	HeadpieceCraft string    `json:"headpieceCraft,omitempty"`
	Addons         AddonList `gorm:"type:text" json:"addons"`

	ReferenceImageURLs URLList `gorm:"type:text" json:"referenceImageUrls"`
	ProgressImageURLs  URLList `gorm:"type:text" json:"progressImageUrls"` // append-only

	Messages []Message `gorm:"foreignKey:OrderID" json:"messages,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// SheetName returns the destination sheet tab for the mirror sync.
func (o *Order) SheetName() string {
	if o.Kind == OrderKindBadge {
		return "地攤訂單"
	}
	return "小餅訂單"
}

// Prefix returns the order-number prefix for the kind.
func (k OrderKind) Prefix() string {
	if k == OrderKindBadge {
		return BadgeOrderPrefix
	}
	return DollOrderPrefix
}

// GenerateOrderNo builds the human-facing order number from the kind prefix
// and the last six digits of the given time in epoch milliseconds. Not
// globally unique; collision probability is accepted as negligible.
func GenerateOrderNo(kind OrderKind, at time.Time) string {
	ms := fmt.Sprintf("%d", at.UnixMilli())
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("%s-%s", kind.Prefix(), ms)
}

// AllImageURLs returns every stored image URL on the order, reference
// images first. Used when deleting an order's images.
func (o *Order) AllImageURLs() []string {
	urls := make([]string, 0, len(o.ReferenceImageURLs)+len(o.ProgressImageURLs))
	urls = append(urls, o.ReferenceImageURLs...)
	urls = append(urls, o.ProgressImageURLs...)
	return urls
}
