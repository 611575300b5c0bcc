package tape

import "github.com/aretw0/utm/pkg/domain"

// Snapshot is a copy of the tape at one instant.
type Snapshot struct {
	// Cells is the populated region, lowest position first.
	Cells []domain.Symbol `json:"cells"`
	// Origin is the index of position 0 within Cells.
	Origin int `json:"origin"`
	// Head is the absolute head position.
	Head  int           `json:"head"`
	State domain.State  `json:"state"`
	Blank domain.Symbol `json:"blank"`
}

// Snapshot copies the populated region and the head.
func (t *Tape) Snapshot() Snapshot {
	cells := make([]domain.Symbol, 0, t.Len())
	for i := len(t.left) - 1; i >= 0; i-- {
		cells = append(cells, t.left[i])
	}
	cells = append(cells, t.right...)
	return Snapshot{
		Cells:  cells,
		Origin: len(t.left),
		Head:   t.head,
		State:  t.state,
		Blank:  t.blank,
	}
}

// HeadIndex returns the head's index within Cells. It may fall outside the slice
// when the head sits on a never-written cell.
func (s Snapshot) HeadIndex() int {
	return s.Origin + s.Head
}

// String renders the populated region.
func (s Snapshot) String() string {
	out := make([]rune, len(s.Cells))
	for i, c := range s.Cells {
		out[i] = rune(c)
	}
	return string(out)
}

// Window returns width cells centred on the head, padding with blanks.
func (s Snapshot) Window(width int) []domain.Symbol {
	if width <= 0 {
		return nil
	}
	start := s.HeadIndex() - width/2
	out := make([]domain.Symbol, width)
	for i := range out {
		idx := start + i
		if idx >= 0 && idx < len(s.Cells) {
			out[i] = s.Cells[idx]
		} else {
			out[i] = s.Blank
		}
	}
	return out
}
