package service

import "errors"

var (
	ErrInvalidOrderState = errors.New("order is not in a valid state for this operation")
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)
