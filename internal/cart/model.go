package cart

import "time"

// Item is one cart line. Carts carry no price snapshot; prices are resolved
// from the catalog at checkout time.
type Item struct {
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}
