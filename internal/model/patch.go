package model

// TicketsSoldPatch 透過 patch queue 傳給 worker 的 PATCH 任務
type TicketsSoldPatch struct {
	RequestID   string `json:"request_id"`
	FilmID      int    `json:"film_id"`
	TicketsSold int    `json:"tickets_sold"`
	Revision    int    `json:"revision"`
}
