package model

const (
	ButtonLabelBuy     = "Buy Ticket"
	ButtonLabelSoldOut = "Sold Out"

	AlertSoldOut = "Tickets are already sold out!"
)

// DetailPanel 右側電影詳細資訊面板
type DetailPanel struct {
	FilmID         int    `json:"film_id"`
	Title          string `json:"title"`
	Poster         string `json:"poster"`
	Description    string `json:"description"`
	RuntimeText    string `json:"runtime_text"`
	ShowtimeText   string `json:"showtime_text"`
	TicketsText    string `json:"tickets_text"`
	Remaining      int    `json:"remaining"`
	ButtonLabel    string `json:"button_label"`
	ButtonDisabled bool   `json:"button_disabled"`
}

// SidebarEntry 側邊欄的一筆電影
type SidebarEntry struct {
	FilmID    int    `json:"film_id"`
	Title     string `json:"title"`
	SoldOut   bool   `json:"sold_out"`
	Deletable bool   `json:"deletable"`
}

// Screen 前端繪製所需的完整畫面狀態
type Screen struct {
	Detail  *DetailPanel   `json:"detail"`
	Sidebar []SidebarEntry `json:"sidebar"`
	Alert   string         `json:"alert,omitempty"`
	Version uint64         `json:"version"`
}

// Clone 深拷貝，讓讀取端不會與事件迴圈共用 slice 或指標
func (s Screen) Clone() Screen {
	out := Screen{
		Alert:   s.Alert,
		Version: s.Version,
		Sidebar: make([]SidebarEntry, len(s.Sidebar)),
	}
	copy(out.Sidebar, s.Sidebar)
	if s.Detail != nil {
		d := *s.Detail
		out.Detail = &d
	}
	return out
}

// FindEntry 回傳側邊欄中對應 filmID 的項目
func (s Screen) FindEntry(filmID int) (SidebarEntry, bool) {
	for _, e := range s.Sidebar {
		if e.FilmID == filmID {
			return e, true
		}
	}
	return SidebarEntry{}, false
}
