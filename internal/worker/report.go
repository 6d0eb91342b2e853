package worker

import (
	"image"
	"sort"
	"time"
)

// Kind - вид пакетной операции.
type Kind string

const (
	// KindResize - приведение каждого файла к целевому разрешению.
	KindResize Kind = "resize"
	// KindFlip - отражение каждого второго файла.
	KindFlip Kind = "flip"
	// KindCrop - применение рецепта кадрирования.
	KindCrop Kind = "crop"
)

// Subfolder возвращает имя выходной поддиректории для операции.
func (k Kind) Subfolder() string {
	switch k {
	case KindFlip:
		return "flipped"
	case KindCrop:
		return "cropped"
	default:
		return "resize"
	}
}

// Status - итог обработки одного файла.
type Status string

const (
	StatusOK        Status = "ok"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Result - итог обработки одного файла.
type Result struct {
	Name     string
	Src      string
	Dst      string
	Status   Status
	Reason   string
	Err      error
	Size     image.Point
	Duration time.Duration
}

// resolved возвращает true, если файл завершён (успех, пропуск или ошибка).
func (r Result) resolved() bool {
	return r.Status != StatusCancelled
}

// Report - сводный отчёт пакетного запуска, ключ - имя файла.
type Report struct {
	Kind      Kind
	Total     int
	Completed int
	Succeeded int
	Skipped   int
	Failed    int
	Cancelled int

	// Results - итог по каждому файлу.
	Results map[string]Result

	// Errors - ошибки по именам файлов.
	Errors map[string]error

	Duration time.Duration
}

func newReport(kind Kind, total int) *Report {
	return &Report{
		Kind:    kind,
		Total:   total,
		Results: make(map[string]Result, total),
		Errors:  make(map[string]error),
	}
}

// add учитывает результат одного файла.
func (r *Report) add(res Result) {
	r.Results[res.Name] = res
	switch res.Status {
	case StatusOK:
		r.Succeeded++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
		r.Errors[res.Name] = res.Err
	case StatusCancelled:
		r.Cancelled++
	}
	if res.resolved() {
		r.Completed++
	}
}

// Names возвращает имена файлов отчёта по алфавиту.
func (r *Report) Names() []string {
	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered возвращает результаты в порядке имён файлов.
func (r *Report) Ordered() []Result {
	names := r.Names()
	out := make([]Result, len(names))
	for i, n := range names {
		out[i] = r.Results[n]
	}
	return out
}

// Merge добавляет к отчёту результаты другого запуска (режим наблюдения).
// Повторно обработанный файл заменяет прежний результат.
func (r *Report) Merge(o *Report) {
	if o == nil {
		return
	}
	r.Total += o.Total
	r.Duration += o.Duration
	for name, res := range o.Results {
		if prev, ok := r.Results[name]; ok {
			r.remove(prev)
			r.Total--
		}
		r.add(res)
	}
}

// remove отменяет учёт результата.
func (r *Report) remove(res Result) {
	delete(r.Results, res.Name)
	delete(r.Errors, res.Name)
	switch res.Status {
	case StatusOK:
		r.Succeeded--
	case StatusSkipped:
		r.Skipped--
	case StatusFailed:
		r.Failed--
	case StatusCancelled:
		r.Cancelled--
	}
	if res.resolved() {
		r.Completed--
	}
}
