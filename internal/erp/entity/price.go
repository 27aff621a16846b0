package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceHistoryEntry 月度单价。PriceMonth 归一化为当月1日。
type PriceHistoryEntry struct {
	ID         int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	ItemID     int64           `json:"item_id" gorm:"not null;uniqueIndex:idx_price_item_month,priority:1"`
	PriceMonth time.Time       `json:"price_month" gorm:"type:date;not null;uniqueIndex:idx_price_item_month,priority:2"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(14,4);not null"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (PriceHistoryEntry) TableName() string {
	return "item_price_history"
}

// NormalizeMonth 将 YYYY-MM 或 YYYY-MM-DD 归一化为当月1日（UTC）。
func NormalizeMonth(s string) (time.Time, error) {
	var t time.Time
	var err error
	switch len(s) {
	case 7:
		t, err = time.Parse("2006-01", s)
	case 10:
		t, err = time.Parse("2006-01-02", s)
	default:
		return time.Time{}, fmt.Errorf("invalid price month %q", s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid price month %q", s)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// CurrentMonth 当前自然月的1日（UTC）。
func CurrentMonth() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FormatMonth 回显格式 YYYY-MM-01。
func FormatMonth(t time.Time) string {
	return t.Format("2006-01-02")
}
