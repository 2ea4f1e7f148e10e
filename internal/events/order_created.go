package events

import "time"

const (
	EventTypeOrderCreated   = "OrderCreated"
	EventTypeOrderCancelled = "OrderCancelled"
)

type OrderItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
}

type OrderCreated struct {
	EventType   string      `json:"eventType"`
	EventID     string      `json:"eventId"`
	OrderID     int64       `json:"orderId"`
	UserID      int64       `json:"userId"`
	Items       []OrderItem `json:"items"`
	TotalAmount string      `json:"totalAmount"`
	Timestamp   time.Time   `json:"timestamp"`
}

type OrderCancelled struct {
	EventType string      `json:"eventType"`
	EventID   string      `json:"eventId"`
	OrderID   int64       `json:"orderId"`
	UserID    int64       `json:"userId"`
	Items     []OrderItem `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}
