package domain

// Category groups catalog products. It is derived from product data, not stored.
type Category struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
