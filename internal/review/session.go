package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/detail"
	"github.com/waygalih/suratdesa/internal/models"
	"github.com/waygalih/suratdesa/internal/repository"
)

const (
	MsgReasonRequired = "Harap tuliskan alasan penolakan."
	MsgLoadFailed     = "Gagal memuat data pengajuan."
	MsgPersistFailed  = "Gagal update status! Pastikan akun Anda admin."
)

var (
	ErrBadFilter       = errors.New("filter status tidak dikenal")
	ErrRecordNotFound  = errors.New("pengajuan tidak ditemukan")
	ErrNotPending      = errors.New("pengajuan sudah diproses")
	ErrReasonRequired  = errors.New("alasan penolakan wajib diisi")
	ErrNoRejectDialog  = errors.New("tidak ada penolakan yang sedang dibuka")
	ErrPersistFailed   = errors.New("gagal menyimpan status")
	ErrSessionNotFound = errors.New("sesi review tidak ditemukan")
)

// Session is one staff member's review screen: the loaded records plus the
// search, filter, page and reject-dialog state. Store writes run outside
// the lock.
type Session struct {
	store repository.SubmissionStore
	log   *zap.Logger
	loc   *time.Location
	links Links

	mu        sync.Mutex
	records   []models.Submission
	loading   bool
	loadError string
	search    string
	filter    StatusFilter
	page      int
	reject    *rejectState
}

type rejectState struct {
	path   models.RecordPath
	reason string
	err    string
}

// Links are static URLs shown alongside the list.
type Links struct {
	Spreadsheet string
}

func NewSession(store repository.SubmissionStore, log *zap.Logger, loc *time.Location, links Links) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Session{store: store, log: log, loc: loc, links: links, filter: FilterAll, page: 1}
}

// Load fetches every submission once. A failed fetch leaves an empty set and
// a load error in the view; it is not returned to the caller.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	subs, err := s.store.FindAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.log.Error("fetch submissions failed", zap.Error(err))
		s.records = nil
		s.loadError = MsgLoadFailed
		return
	}
	s.records = subs
	s.loadError = ""
	s.page = ClampPage(s.page, len(s.filteredLocked()))
}

func (s *Session) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
	s.page = 1
}

func (s *Session) SetStatusFilter(f StatusFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.page = 1
}

// SetPage moves to page p, clamped into the current filtered view.
func (s *Session) SetPage(p int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = ClampPage(p, len(s.filteredLocked()))
	return s.page
}

func (s *Session) NextPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = ClampPage(s.page+1, len(s.filteredLocked()))
	return s.page
}

func (s *Session) PrevPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = ClampPage(s.page-1, len(s.filteredLocked()))
	return s.page
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.records)
}

func (s *Session) filteredLocked() []models.Submission {
	return Filter(s.records, s.search, s.filter)
}

func (s *Session) indexLocked(path models.RecordPath) int {
	for i := range s.records {
		if s.records[i].UserID == path.OwnerID && s.records[i].ID == path.RecordID {
			return i
		}
	}
	return -1
}

// Approve marks a pending record completed, in memory first and then in the
// store. A failed write restores the previous status.
func (s *Session) Approve(ctx context.Context, path models.RecordPath) error {
	s.mu.Lock()
	i := s.indexLocked(path)
	if i < 0 {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	if !s.records[i].Status.IsPending() {
		s.mu.Unlock()
		return ErrNotPending
	}
	prev := s.records[i].Status
	next := models.Completed()
	s.records[i].Status = next
	s.mu.Unlock()

	return s.persist(ctx, path, prev, next)
}

// OpenReject starts the reject dialog for a pending record, discarding any
// earlier reason or error.
func (s *Session) OpenReject(path models.RecordPath) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(path)
	if i < 0 {
		return ErrRecordNotFound
	}
	if !s.records[i].Status.IsPending() {
		return ErrNotPending
	}
	s.reject = &rejectState{path: path}
	return nil
}

func (s *Session) SetReason(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject == nil {
		return ErrNoRejectDialog
	}
	s.reject.reason = text
	s.reject.err = ""
	return nil
}

// ConfirmReject validates the captured reason and rejects the record. An
// empty reason only sets the dialog error; nothing is written.
func (s *Session) ConfirmReject(ctx context.Context) error {
	s.mu.Lock()
	if s.reject == nil {
		s.mu.Unlock()
		return ErrNoRejectDialog
	}
	reason := strings.TrimSpace(s.reject.reason)
	if reason == "" {
		s.reject.err = MsgReasonRequired
		s.mu.Unlock()
		return ErrReasonRequired
	}
	path := s.reject.path
	i := s.indexLocked(path)
	if i < 0 {
		s.reject = nil
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	if !s.records[i].Status.IsPending() {
		s.reject = nil
		s.mu.Unlock()
		return ErrNotPending
	}
	prev := s.records[i].Status
	next := models.Rejected(reason)
	s.records[i].Status = next
	s.reject = nil
	s.mu.Unlock()

	return s.persist(ctx, path, prev, next)
}

func (s *Session) CloseReject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = nil
}

func (s *Session) persist(ctx context.Context, path models.RecordPath, prev, next models.Status) error {
	err := s.store.UpdateStatus(ctx, path, next)
	if err == nil {
		s.log.Info("status updated", zap.Stringer("path", path), zap.String("status", next.Legacy()))
		return nil
	}
	s.log.Error("status update failed", zap.Stringer("path", path), zap.Error(err))

	s.mu.Lock()
	if i := s.indexLocked(path); i >= 0 && s.records[i].Status == next {
		s.records[i].Status = prev
	}
	s.mu.Unlock()
	return fmt.Errorf("%w: %w", ErrPersistFailed, err)
}

// Item is one row of the review table.
type Item struct {
	OwnerID    string        `json:"ownerId"`
	RecordID   string        `json:"recordId"`
	Nama       string        `json:"nama"`
	JenisSurat string        `json:"jenisSurat"`
	Status     models.Status `json:"status"`
	Tanggal    string        `json:"tanggal"`
	CanReview  bool          `json:"canReview"`
	DetailPath string        `json:"detailPath"`
}

type RejectDialog struct {
	OwnerID  string `json:"ownerId"`
	RecordID string `json:"recordId"`
	Nama     string `json:"nama"`
	Reason   string `json:"reason"`
	Error    string `json:"error,omitempty"`
}

type View struct {
	Loading        bool          `json:"loading"`
	LoadError      string        `json:"loadError,omitempty"`
	Stats          []StatItem    `json:"stats"`
	Search         string        `json:"search"`
	StatusFilter   StatusFilter  `json:"statusFilter"`
	Page           int           `json:"page"`
	TotalPages     int           `json:"totalPages"`
	FilteredCount  int           `json:"filteredCount"`
	Items          []Item        `json:"items"`
	Reject         *RejectDialog `json:"reject,omitempty"`
	SpreadsheetURL string        `json:"spreadsheetUrl,omitempty"`
}

func DetailPath(path models.RecordPath) string {
	return "/api/v1/submissions/" + path.OwnerID + "/" + path.RecordID
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.filteredLocked()
	pg := Paginate(filtered, s.page)
	s.page = pg.Page

	v := View{
		Loading:        s.loading,
		LoadError:      s.loadError,
		Stats:          ComputeStats(s.records).Items(),
		Search:         s.search,
		StatusFilter:   s.filter,
		Page:           pg.Page,
		TotalPages:     pg.TotalPages,
		FilteredCount:  pg.Total,
		Items:          make([]Item, 0, len(pg.Items)),
		SpreadsheetURL: s.links.Spreadsheet,
	}
	for i := range pg.Items {
		sub := &pg.Items[i]
		v.Items = append(v.Items, Item{
			OwnerID:    sub.UserID,
			RecordID:   sub.ID,
			Nama:       sub.Nama(),
			JenisSurat: sub.JenisSurat,
			Status:     sub.Status,
			Tanggal:    detail.FormatDate(sub.TanggalPengajuan, s.loc),
			CanReview:  sub.Status.IsPending(),
			DetailPath: DetailPath(sub.Path()),
		})
	}
	if s.reject != nil {
		d := &RejectDialog{
			OwnerID:  s.reject.path.OwnerID,
			RecordID: s.reject.path.RecordID,
			Reason:   s.reject.reason,
			Error:    s.reject.err,
		}
		if i := s.indexLocked(s.reject.path); i >= 0 {
			d.Nama = s.records[i].Nama()
		}
		v.Reject = d
	}
	return v
}
