package cache

import (
	"context"
	"fmt"
)

// OverrideStore 本地剩餘票數 override 的 key/value 合約
// key: movie_{id}_tickets, value: 十進位字串
type OverrideStore interface {
	// 取得 override；不存在時回傳 -1 與 ErrOverrideNotFound
	Get(ctx context.Context, filmID int) (int, error)
	// 寫入 override
	Set(ctx context.Context, filmID int, remaining int) error
	// 刪除 override；不存在時不視為錯誤
	Delete(ctx context.Context, filmID int) error
}

// OverrideKey override 的 key
func OverrideKey(filmID int) string {
	return fmt.Sprintf("movie_%d_tickets", filmID)
}
