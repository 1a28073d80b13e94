package dispatch

import "film-ticket-desk/internal/model"

// Command 使用者可以送進事件流的指令
type Command interface {
	name() string
}

// LoadFilm 載入並顯示單一電影 (啟動時的第一部電影)
type LoadFilm struct{ FilmID int }

// LoadCatalog 重新載入側邊欄
type LoadCatalog struct{}

// SelectFilm 點選側邊欄項目：重新向 API 取得該電影
type SelectFilm struct{ FilmID int }

// BuyTicket 購買一張票
type BuyTicket struct{ FilmID int }

// DeleteSoldOut 從側邊欄移除已售完的電影
type DeleteSoldOut struct{ FilmID int }

func (LoadFilm) name() string      { return "load_film" }
func (LoadCatalog) name() string   { return "load_catalog" }
func (SelectFilm) name() string    { return "select_film" }
func (BuyTicket) name() string     { return "buy_ticket" }
func (DeleteSoldOut) name() string { return "delete_sold_out" }

// 非同步工作完成後回到事件迴圈的內部事件
type filmLoaded struct {
	filmID int
	seq    uint64
	film   *model.Film
	err    error
}

type catalogLoaded struct {
	films []*model.Film
	err   error
}

type patchApplied struct {
	patch *model.TicketsSoldPatch
	film  *model.Film
}

type patchFailed struct {
	patch *model.TicketsSoldPatch
	err   error
}

type result struct {
	screen model.Screen
	err    error
}

type envelope struct {
	event interface{}
	reply chan result
}
