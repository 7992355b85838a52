package review

import (
	"fmt"
	"strings"

	"github.com/waygalih/suratdesa/internal/models"
)

const PageSize = 10

type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterCompleted StatusFilter = "selesai"
	FilterRejected  StatusFilter = "ditolak"
	FilterPending   StatusFilter = "menunggu"
)

func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterRejected, FilterPending:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadFilter, s)
}

func (f StatusFilter) matches(st models.Status) bool {
	switch f {
	case FilterCompleted:
		return st.Kind == models.StatusCompleted
	case FilterRejected:
		return st.Kind == models.StatusRejected
	case FilterPending:
		return st.Kind == models.StatusPending
	}
	return true
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
	Pending   int `json:"pending"`
}

type StatItem struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

func ComputeStats(subs []models.Submission) Stats {
	s := Stats{Total: len(subs)}
	for i := range subs {
		switch subs[i].Status.Kind {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusRejected:
			s.Rejected++
		}
	}
	s.Pending = s.Total - s.Completed - s.Rejected
	return s
}

// Items is the labelled form shown on the dashboard cards.
func (s Stats) Items() []StatItem {
	return []StatItem{
		{Label: "Total Pengajuan", Value: s.Total},
		{Label: "Selesai", Value: s.Completed},
		{Label: "Menunggu Verifikasi", Value: s.Pending},
		{Label: "Ditolak", Value: s.Rejected},
	}
}

// Filter keeps records whose name or letter type contains the keyword and
// whose status matches f. The input slice is not modified.
func Filter(subs []models.Submission, search string, f StatusFilter) []models.Submission {
	keyword := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Submission, 0, len(subs))
	for i := range subs {
		s := &subs[i]
		if keyword != "" &&
			!strings.Contains(strings.ToLower(s.Nama()), keyword) &&
			!strings.Contains(strings.ToLower(s.JenisSurat), keyword) {
			continue
		}
		if !f.matches(s.Status) {
			continue
		}
		out = append(out, *s)
	}
	return out
}

func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

func ClampPage(page, n int) int {
	if page < 1 {
		return 1
	}
	if tp := TotalPages(n); page > tp {
		return tp
	}
	return page
}

type Page struct {
	Items      []models.Submission
	Page       int
	TotalPages int
	Total      int
}

func Paginate(subs []models.Submission, page int) Page {
	page = ClampPage(page, len(subs))
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(subs) {
		end = len(subs)
	}
	return Page{
		Items:      subs[start:end],
		Page:       page,
		TotalPages: TotalPages(len(subs)),
		Total:      len(subs),
	}
}
