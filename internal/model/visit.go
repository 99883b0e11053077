package model

// Visit - событие перехода по короткой ссылке
type Visit struct {
	ShortCode       string `json:"short_code"`
	VisitorID       string `json:"visitor_id"`
	TimestampMillis int64  `json:"timestamp"`
}
