package viewport

// Selection хранит выделение относительно центра области просмотра,
// в единицах пикселей изображения. Изменение размера окна и перецентровка
// не сдвигают выделение относительно изображения.
type Selection struct {
	rel Rect
}

// Capture запоминает выделение холста r при состоянии s.
func Capture(r Rect, s State) Selection {
	r = r.Canon()
	return Selection{rel: Rect{
		Min: r.Min.Sub(s.Center).Mul(1 / s.Scale),
		Max: r.Max.Sub(s.Center).Mul(1 / s.Scale),
	}}
}

// Restore возвращает выделение на холсте для состояния s.
func (sel Selection) Restore(s State) Rect {
	return Rect{
		Min: s.Center.Add(sel.rel.Min.Mul(s.Scale)),
		Max: s.Center.Add(sel.rel.Max.Mul(s.Scale)),
	}
}

// Relative возвращает сохранённое смещение относительно центра.
func (sel Selection) Relative() Rect {
	return sel.rel
}
