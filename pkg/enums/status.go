package enums

import "strings"

// LineStatus is the per-item outcome reported by batch workflows.
type LineStatus string

const (
	LineStatusProcessed         LineStatus = "Processed"
	LineStatusInsufficientStock LineStatus = "Insufficient stock"
	LineStatusInvalidItemName   LineStatus = "Invalid item name"
	LineStatusRestocked         LineStatus = "Restocked"
	LineStatusNoRestockNeeded   LineStatus = "No restock needed"
)

const errorStatusPrefix = "Error: "

// ErrorStatus renders a failure cause as a line status.
func ErrorStatus(err error) LineStatus {
	if err == nil {
		return LineStatus(errorStatusPrefix + "unknown error")
	}
	return LineStatus(errorStatusPrefix + err.Error())
}

// IsError reports whether the status carries a failure cause.
func (s LineStatus) IsError() bool {
	return strings.HasPrefix(string(s), errorStatusPrefix)
}

// MetricLabel collapses error statuses so they can be used as a label value.
func (s LineStatus) MetricLabel() string {
	if s.IsError() {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "_")
}

// StockStatus is the availability label returned by inventory checks.
type StockStatus string

const (
	StockStatusAvailable         StockStatus = "Available"
	StockStatusInsufficientStock StockStatus = "Insufficient stock"
)

// OrderStatus describes an entry looked up by id.
type OrderStatus string

const (
	OrderStatusCompleted          OrderStatus = "Completed"
	OrderStatusPartiallyFulfilled OrderStatus = "Partially Fulfilled"
	OrderStatusDelivered          OrderStatus = "Delivered"
	OrderStatusInTransit          OrderStatus = "In Transit"
	OrderStatusNotFound           OrderStatus = "Not found"
)
