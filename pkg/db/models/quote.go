package models

import "github.com/shopspring/decimal"

// QuoteRequest is the original customer text a historical quote answered.
type QuoteRequest struct {
	ID       int64  `gorm:"column:id;primaryKey"`
	Response string `gorm:"column:response"`
}

func (QuoteRequest) TableName() string { return "quote_requests" }

// Quote is a historical quote issued for a QuoteRequest.
type Quote struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	RequestID        int64           `gorm:"column:request_id;index"`
	TotalAmount      decimal.Decimal `gorm:"column:total_amount;type:numeric"`
	QuoteExplanation string          `gorm:"column:quote_explanation"`
	JobType          string          `gorm:"column:job_type"`
	OrderSize        string          `gorm:"column:order_size"`
	EventType        string          `gorm:"column:event_type"`
	OrderDate        string          `gorm:"column:order_date;type:varchar(32)"`
}

func (Quote) TableName() string { return "quotes" }
