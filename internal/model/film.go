package model

// Film 電影場次 (由 films API 提供)
type Film struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Poster      string `json:"poster"`
	Description string `json:"description"`
	Runtime     int    `json:"runtime"`
	Showtime    string `json:"showtime"`
	Capacity    int    `json:"capacity"`
	TicketsSold int    `json:"tickets_sold"`
}

// Remaining 伺服器端計算的剩餘票數
func (f *Film) Remaining() int {
	return f.Capacity - f.TicketsSold
}

// ApplyRemaining 以本地 override 的剩餘票數回推 tickets_sold，並限制在 [0, capacity]
func (f *Film) ApplyRemaining(remaining int) {
	sold := f.Capacity - remaining
	if sold < 0 {
		sold = 0
	}
	if sold > f.Capacity {
		sold = f.Capacity
	}
	f.TicketsSold = sold
}

// UpdateTicketsSoldRequest PATCH /films/:id 的請求內容
type UpdateTicketsSoldRequest struct {
	TicketsSold int `json:"tickets_sold"`
}
