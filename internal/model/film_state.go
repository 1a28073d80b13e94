package model

// FilmStatus 單一電影的售票狀態
type FilmStatus string

const (
	FilmStatusAvailable FilmStatus = "available"
	FilmStatusSoldOut   FilmStatus = "sold_out"
	FilmStatusDeleted   FilmStatus = "deleted"
)

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s FilmStatus) CanTransitionTo(target FilmStatus) bool {
	transitions := map[FilmStatus][]FilmStatus{
		FilmStatusAvailable: {FilmStatusAvailable, FilmStatusSoldOut},
		FilmStatusSoldOut:   {FilmStatusDeleted},
		FilmStatusDeleted:   {}, // 離開追蹤，不能再轉換
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// FilmState tracker 持有的單一電影狀態
type FilmState struct {
	Film      Film
	Remaining int
	// Revision 每次購票 +1，用來判斷 PATCH 回應是否過期
	Revision int
	// LastRequestID 最近一次送出的 PATCH；共用同一個 stream 的其他程序 revision 可能相同
	LastRequestID string
}

func NewFilmState(film Film) *FilmState {
	return &FilmState{
		Film:      film,
		Remaining: film.Remaining(),
	}
}

func (s *FilmState) Status() FilmStatus {
	if s.Remaining > 0 {
		return FilmStatusAvailable
	}
	return FilmStatusSoldOut
}

func (s *FilmState) IsSoldOut() bool {
	return s.Status() == FilmStatusSoldOut
}

// TicketsSold 依目前剩餘票數計算應回報給伺服器的售出數
func (s *FilmState) TicketsSold() int {
	return s.Film.Capacity - s.Remaining
}
