package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a snapshot taken at order-creation time. Name and unit price are
// frozen there and never follow later catalog changes.
type Item struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

type Order struct {
	ID            int64           `json:"orderId"`
	UserID        int64           `json:"userId"`
	AddressID     int64           `json:"addressId"`
	Items         []Item          `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
