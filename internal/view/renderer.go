package view

import (
	"fmt"

	"film-ticket-desk/internal/model"
)

// Renderer 保存目前的畫面狀態。與 tracker 一樣只在 dispatcher 事件迴圈中使用
type Renderer struct {
	screen model.Screen
}

func NewRenderer() *Renderer {
	return &Renderer{
		screen: model.Screen{Sidebar: make([]model.SidebarEntry, 0)},
	}
}

// Detail 由電影狀態產生詳細面板
func Detail(state *model.FilmState) *model.DetailPanel {
	film := state.Film
	panel := &model.DetailPanel{
		FilmID:       film.ID,
		Title:        film.Title,
		Poster:       film.Poster,
		Description:  film.Description,
		RuntimeText:  fmt.Sprintf("Runtime: %d minutes", film.Runtime),
		ShowtimeText: fmt.Sprintf("Showtime: %s", film.Showtime),
		TicketsText:  fmt.Sprintf("Available Tickets: %d", state.Remaining),
		Remaining:    state.Remaining,
	}
	if state.IsSoldOut() {
		panel.ButtonLabel = model.ButtonLabelSoldOut
		panel.ButtonDisabled = true
	} else {
		panel.ButtonLabel = model.ButtonLabelBuy
	}
	return panel
}

// Entry 由電影狀態產生側邊欄項目；只有售完的項目可以刪除
func Entry(state *model.FilmState) model.SidebarEntry {
	soldOut := state.IsSoldOut()
	return model.SidebarEntry{
		FilmID:    state.Film.ID,
		Title:     state.Film.Title,
		SoldOut:   soldOut,
		Deletable: soldOut,
	}
}

func (r *Renderer) RenderDetail(state *model.FilmState) {
	r.screen.Detail = Detail(state)
	r.touch()
}

// RenderSidebar 每次都從頭重建，重複呼叫不會產生重複項目
func (r *Renderer) RenderSidebar(states []*model.FilmState) {
	entries := make([]model.SidebarEntry, 0, len(states))
	for _, state := range states {
		entries = append(entries, Entry(state))
	}
	r.screen.Sidebar = entries
	r.touch()
}

// UpdateEntry 以最新狀態更新單一側邊欄項目；項目不存在時回傳 false
func (r *Renderer) UpdateEntry(state *model.FilmState) bool {
	for i := range r.screen.Sidebar {
		if r.screen.Sidebar[i].FilmID == state.Film.ID {
			r.screen.Sidebar[i] = Entry(state)
			r.touch()
			return true
		}
	}
	return false
}

func (r *Renderer) RemoveEntry(filmID int) bool {
	for i, e := range r.screen.Sidebar {
		if e.FilmID == filmID {
			r.screen.Sidebar = append(r.screen.Sidebar[:i], r.screen.Sidebar[i+1:]...)
			r.touch()
			return true
		}
	}
	return false
}

func (r *Renderer) DetailFilmID() (int, bool) {
	if r.screen.Detail == nil {
		return 0, false
	}
	return r.screen.Detail.FilmID, true
}

func (r *Renderer) Alert(msg string) {
	r.screen.Alert = msg
	r.touch()
}

func (r *Renderer) ClearAlert() {
	if r.screen.Alert == "" {
		return
	}
	r.screen.Alert = ""
	r.touch()
}

// Screen 回傳深拷貝
func (r *Renderer) Screen() model.Screen {
	return r.screen.Clone()
}

func (r *Renderer) touch() {
	r.screen.Version++
}
