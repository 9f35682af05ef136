package entity

// Score - decisive results of the session. Draws are not counted.
type Score struct {
	Human    int `json:"human"`
	Computer int `json:"computer"`
}

func (that *Score) Record(side Side) {
	switch side {
	case SideHuman:
		that.Human++
	case SideComputer:
		that.Computer++
	case SideNone:
	}
}

func (that *Score) Reset() {
	that.Human = 0
	that.Computer = 0
}
