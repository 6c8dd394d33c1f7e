package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/billbook"
	"github.com/mmynk/billsplit/internal/billquery"
	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/export"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// BillService implements the Connect BillService.
//
// The book is the source of truth while the process runs; every edit is
// written through to the store before the response is sent. One mutex
// serializes all edits, and an edit whose write fails is rolled back in memory.
type BillService struct {
	mu      sync.Mutex
	book    *billbook.Book
	store   storage.Store
	metrics *metrics.Metrics
}

// NewBillService creates a BillService over an already loaded book.
// m may be nil.
func NewBillService(book *billbook.Book, store storage.Store, m *metrics.Metrics) *BillService {
	return &BillService{book: book, store: store, metrics: m}
}

// LoadBook reads every stored bill and contact into a new book.
func LoadBook(ctx context.Context, store storage.Store, opts ...billbook.Option) (*billbook.Book, error) {
	book := billbook.New(opts...)

	bills, err := store.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	for _, snap := range bills {
		if err := book.Load(snap); err != nil {
			return nil, fmt.Errorf("load bill %s: %w", snap.Bill.ID, err)
		}
	}

	contacts, err := store.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	for _, c := range contacts {
		if err := book.LoadContact(c); err != nil {
			return nil, fmt.Errorf("load contact %s: %w", c.ID, err)
		}
	}

	if err := book.CheckIntegrity(); err != nil {
		return nil, fmt.Errorf("integrity check: %w", err)
	}
	slog.Info("Bill book loaded", "bills", len(bills), "contacts", len(contacts))
	return book, nil
}

// toConnectError maps domain and storage errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	switch {
	case errors.Is(err, billbook.ErrBillNotFound),
		errors.Is(err, billbook.ErrItemNotFound),
		errors.Is(err, billbook.ErrPersonNotFound),
		errors.Is(err, billbook.ErrSplitNotFound),
		errors.Is(err, billbook.ErrContactNotFound),
		errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, billbook.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, billbook.ErrNotAContact),
		errors.Is(err, billbook.ErrCrossBill),
		errors.Is(err, billbook.ErrInvalidAmount),
		errors.Is(err, billbook.ErrInvalidQuantity),
		errors.Is(err, billbook.ErrInvalidRate):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// detail computes the read view of one bill. Callers hold s.mu.
func (s *BillService) detail(billID string) (*BillDetail, error) {
	snap, err := s.book.Snapshot(billID)
	if err != nil {
		return nil, err
	}
	totals := calculator.CalculateBill(snap)
	s.metrics.ObserveReconciliation(totals.IsReconciled())
	if !totals.IsReconciled() {
		slog.Debug("Bill not reconciled",
			"bill_id", billID,
			"difference", totals.Difference,
			"unassigned", totals.UnassignedAmount,
		)
	}
	return toDetail(snap, totals), nil
}

// editBill runs edit against the book and persists the resulting bill.
// If the write fails the bill is restored to its state before the edit.
func (s *BillService) editBill(ctx context.Context, billID string, edit func() error) (*connect.Response[BillDetail], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.book.Snapshot(billID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := edit(); err != nil {
		return nil, toConnectError(err)
	}
	after, err := s.book.Snapshot(billID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.SaveBill(ctx, after); err != nil {
		slog.Error("Failed to save bill, rolling back", "bill_id", billID, "error", err)
		s.restore(before)
		return nil, toConnectError(err)
	}

	d, err := s.detail(billID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(d), nil
}

// editOwned is editBill for an edit addressed by item, person or split ID.
func (s *BillService) editOwned(ctx context.Context, id string, notFound error, edit func() error) (*connect.Response[BillDetail], error) {
	s.mu.Lock()
	billID, ok := s.book.BillIDOf(id)
	s.mu.Unlock()
	if !ok {
		return nil, toConnectError(fmt.Errorf("%w: %s", notFound, id))
	}
	return s.editBill(ctx, billID, edit)
}

func (s *BillService) restore(before *models.Snapshot) {
	if err := s.book.DeleteBill(before.Bill.ID); err != nil {
		slog.Error("Rollback failed to drop bill", "bill_id", before.Bill.ID, "error", err)
		return
	}
	if err := s.book.Load(before); err != nil {
		slog.Error("Rollback failed to reload bill", "bill_id", before.Bill.ID, "error", err)
	}
}

// CreateBill starts a new bill with the configured defaults.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[BillDetail], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bill := s.book.CreateBill(name)
	snap, err := s.book.Snapshot(bill.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.SaveBill(ctx, snap); err != nil {
		slog.Error("CreateBill failed", "error", err)
		_ = s.book.DeleteBill(bill.ID)
		return nil, toConnectError(err)
	}
	slog.Info("Bill created", "bill_id", bill.ID, "name", bill.Name)

	d, err := s.detail(bill.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(d), nil
}

// GetBill returns a bill with its totals, assignment validation and
// collection status.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[BillDetail], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.detail(req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(d), nil
}

// ListBills filters and sorts the bills in the book.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	q := billquery.Query{
		Search:    req.Msg.Search,
		SortBy:    billquery.ParseSortKey(req.Msg.SortBy),
		Ascending: req.Msg.Ascending,
	}
	switch strings.ToLower(req.Msg.Archival) {
	case "", "active":
		q.Archival = billquery.ActiveOnly
	case "archived":
		q.Archival = billquery.ArchivedOnly
	case "all":
		q.Archival = billquery.AnyArchival
	default:
		return nil, invalidArgument("archival must be active, archived or all, got %q", req.Msg.Archival)
	}

	s.mu.Lock()
	bills := s.book.Bills()
	snaps := make([]*models.Snapshot, 0, len(bills))
	for _, b := range bills {
		snap, err := s.book.Snapshot(b.ID)
		if err != nil {
			s.mu.Unlock()
			return nil, toConnectError(err)
		}
		snaps = append(snaps, snap)
	}
	s.mu.Unlock()

	results := billquery.Run(snaps, q)
	resp := &ListBillsResponse{Bills: make([]BillSummary, len(results))}
	for i, r := range results {
		resp.Bills[i] = BillSummary{
			Bill:         toBill(r.Snapshot.Bill),
			GrandTotal:   r.Totals.GrandTotal,
			Display:      toTotals(r.Totals, r.Snapshot.Bill.Currency).Display,
			PeopleCount:  len(r.Snapshot.People),
			IsReconciled: r.Totals.IsReconciled(),
		}
	}
	return connect.NewResponse(resp), nil
}

// UpdateBill edits the bill fields present in the request.
func (s *BillService) UpdateBill(ctx context.Context, req *connect.Request[UpdateBillRequest]) (*connect.Response[BillDetail], error) {
	m := req.Msg
	if m.Name != nil && strings.TrimSpace(*m.Name) == "" {
		return nil, invalidArgument("name must not be empty")
	}
	var code string
	if m.Currency != nil {
		code = strings.ToUpper(strings.TrimSpace(*m.Currency))
		if len(code) != 3 {
			return nil, invalidArgument("currency %q must be a 3-letter code", *m.Currency)
		}
	}

	return s.editBill(ctx, m.BillID, func() error {
		_, err := s.book.EditBill(m.BillID, func(b *models.Bill) {
			if m.Name != nil {
				b.Name = strings.TrimSpace(*m.Name)
			}
			if m.Date != nil {
				b.Date = *m.Date
			}
			if m.Notes != nil {
				b.Notes = *m.Notes
			}
			if m.DiscountPercentage != nil {
				b.DiscountPercentage = *m.DiscountPercentage
			}
			if m.ServiceChargePercentage != nil {
				b.ServiceChargePercentage = *m.ServiceChargePercentage
			}
			if m.TaxPercentage != nil {
				b.TaxPercentage = *m.TaxPercentage
			}
			if m.Currency != nil {
				b.Currency = code
			}
			if m.PayeeName != nil {
				b.PayeeName = *m.PayeeName
			}
			if m.PayeeMethod != nil {
				b.PayeeMethod = *m.PayeeMethod
			}
			if m.PayeeDetails != nil {
				b.PayeeDetails = *m.PayeeDetails
			}
			if m.Archived != nil {
				b.Archived = *m.Archived
			}
		})
		return err
	})
}

// DeleteBill removes a bill with its items, people and splits.
func (s *BillService) DeleteBill(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[Empty], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	billID := req.Msg.BillID
	if _, ok := s.book.Bill(billID); !ok {
		return nil, toConnectError(fmt.Errorf("%w: %s", billbook.ErrBillNotFound, billID))
	}
	if err := s.store.DeleteBill(ctx, billID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("DeleteBill failed", "bill_id", billID, "error", err)
		return nil, toConnectError(err)
	}
	if err := s.book.DeleteBill(billID); err != nil {
		return nil, toConnectError(err)
	}
	slog.Info("Bill deleted", "bill_id", billID)
	return connect.NewResponse(&Empty{}), nil
}

// DuplicateBill starts a new bill from an existing one's settings and people.
func (s *BillService) DuplicateBill(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[BillDetail], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dup, err := s.book.DuplicateBill(req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	snap, err := s.book.Snapshot(dup.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.SaveBill(ctx, snap); err != nil {
		slog.Error("DuplicateBill failed", "bill_id", req.Msg.BillID, "error", err)
		_ = s.book.DeleteBill(dup.ID)
		return nil, toConnectError(err)
	}
	slog.Info("Bill duplicated", "from_bill_id", req.Msg.BillID, "bill_id", dup.ID, "people", len(snap.People))

	d, err := s.detail(dup.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(d), nil
}

// ExportBill renders a bill as CSV and as a short text summary.
func (s *BillService) ExportBill(ctx context.Context, req *connect.Request[BillRequest]) (*connect.Response[ExportResponse], error) {
	s.mu.Lock()
	snap, err := s.book.Snapshot(req.Msg.BillID)
	s.mu.Unlock()
	if err != nil {
		return nil, toConnectError(err)
	}

	data, err := export.CSV(snap)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ExportResponse{
		Filename: fmt.Sprintf("bill_%s.csv", snap.Bill.Date.Format("2006-01-02")),
		CSV:      string(data),
		Summary:  export.Summary(snap),
	}), nil
}
