package database

import (
	"context"
	"sort"

	"github.com/jesses-code-adventures/practice/internal/models"
)

// rawDocument is a stored document that can decode itself into a struct.
// *firestore.DocumentSnapshot satisfies it directly.
type rawDocument interface {
	DataTo(p interface{}) error
}

type where struct {
	field string
	value string
}

type backend interface {
	get(ctx context.Context, collection, id string) (rawDocument, error)
	list(ctx context.Context, collection string, w *where, fn func(id string, raw rawDocument) error) error
	commit(ctx context.Context, b *Batch) error
	close() error
}

// Store implements DB on top of a document backend.
type Store struct {
	backend backend
}

func newStore(b backend) *Store {
	return &Store{backend: b}
}

func (s *Store) Close() error {
	return s.backend.close()
}

func (s *Store) NewBatch() *Batch {
	return &Batch{backend: s.backend}
}

func getDoc[D any, M any](ctx context.Context, b backend, collection, id string, conv func(*D, string) (M, error)) (M, error) {
	var zero M
	raw, err := b.get(ctx, collection, id)
	if err != nil {
		return zero, err
	}
	var d D
	if err := raw.DataTo(&d); err != nil {
		return zero, invalid(collection, id, err)
	}
	m, err := conv(&d, id)
	if err != nil {
		return zero, invalid(collection, id, err)
	}
	return m, nil
}

func listDocs[D any, M any](ctx context.Context, b backend, collection string, w *where, conv func(*D, string) (M, error)) ([]M, error) {
	var out []M
	err := b.list(ctx, collection, w, func(id string, raw rawDocument) error {
		var d D
		if err := raw.DataTo(&d); err != nil {
			return invalid(collection, id, err)
		}
		m, err := conv(&d, id)
		if err != nil {
			return invalid(collection, id, err)
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

func (s *Store) GetEngagement(ctx context.Context, id string) (*models.Engagement, error) {
	return getDoc(ctx, s.backend, CollectionEngagements, id, (*engagementDoc).toModel)
}

func (s *Store) ListEngagements(ctx context.Context, filter EngagementFilter) ([]*models.Engagement, error) {
	// Status is matched after parsing. Stored values vary in case, and the
	// backends compare raw strings.
	var w *where
	if filter.ClientID != "" {
		w = &where{field: "clientId", value: filter.ClientID}
	}
	all, err := listDocs(ctx, s.backend, CollectionEngagements, w, (*engagementDoc).toModel)
	if err != nil {
		return nil, err
	}

	var out []*models.Engagement
	for _, e := range all {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.ClientID != "" && e.ClientID != filter.ClientID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*models.Client, error) {
	return getDoc(ctx, s.backend, CollectionClients, id, (*clientDoc).toModel)
}

func (s *Store) ListClients(ctx context.Context) ([]*models.Client, error) {
	out, err := listDocs(ctx, s.backend, CollectionClients, nil, (*clientDoc).toModel)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetFirm(ctx context.Context, id string) (*models.Firm, error) {
	return getDoc(ctx, s.backend, CollectionFirms, id, (*firmDoc).toModel)
}

func (s *Store) ListFirms(ctx context.Context) ([]*models.Firm, error) {
	return listDocs(ctx, s.backend, CollectionFirms, nil, (*firmDoc).toModel)
}

func (s *Store) ListEmployees(ctx context.Context) ([]*models.Employee, error) {
	return listDocs(ctx, s.backend, CollectionEmployees, nil, (*employeeDoc).toModel)
}

func (s *Store) ListEngagementTypes(ctx context.Context) ([]*models.EngagementType, error) {
	return listDocs(ctx, s.backend, CollectionEngagementTypes, nil, (*engagementTypeDoc).toModel)
}

func (s *Store) ListTaxRates(ctx context.Context) ([]*models.TaxRate, error) {
	return listDocs(ctx, s.backend, CollectionTaxRates, nil, (*taxRateDoc).toModel)
}

func (s *Store) ListHsnSacCodes(ctx context.Context) ([]*models.HsnSacCode, error) {
	return listDocs(ctx, s.backend, CollectionHsnSacCodes, nil, (*hsnSacCodeDoc).toModel)
}

func (s *Store) ListSalesItems(ctx context.Context) ([]*models.SalesItem, error) {
	return listDocs(ctx, s.backend, CollectionSalesItems, nil, (*salesItemDoc).toModel)
}

func (s *Store) GetPendingInvoice(ctx context.Context, id string) (*models.PendingInvoice, error) {
	return getDoc(ctx, s.backend, CollectionPendingInvoices, id, (*pendingInvoiceDoc).toModel)
}

func (s *Store) ListPendingInvoices(ctx context.Context) ([]*models.PendingInvoice, error) {
	out, err := listDocs(ctx, s.backend, CollectionPendingInvoices, nil, (*pendingInvoiceDoc).toModel)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListPendingInvoicesForEngagement(ctx context.Context, engagementID string) ([]*models.PendingInvoice, error) {
	return listDocs(ctx, s.backend, CollectionPendingInvoices, &where{field: "engagementId", value: engagementID}, (*pendingInvoiceDoc).toModel)
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	return getDoc(ctx, s.backend, CollectionInvoices, id, (*invoiceDoc).toModel)
}

func (s *Store) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*models.Invoice, error) {
	var w *where
	switch {
	case filter.FirmID != "":
		w = &where{field: "firmId", value: filter.FirmID}
	case filter.ClientID != "":
		w = &where{field: "clientId", value: filter.ClientID}
	}
	all, err := listDocs(ctx, s.backend, CollectionInvoices, w, (*invoiceDoc).toModel)
	if err != nil {
		return nil, err
	}

	var out []*models.Invoice
	for _, inv := range all {
		if filter.FirmID != "" && inv.FirmID != filter.FirmID {
			continue
		}
		if filter.ClientID != "" && inv.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.From != nil && inv.IssueDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !inv.IssueDate.Before(*filter.To) {
			continue
		}
		out = append(out, inv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].IssueDate.Equal(out[j].IssueDate) {
			return out[i].IssueDate.Before(out[j].IssueDate)
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	return out, nil
}

// GetActiveTimeEntry returns the employee's running entry, or nil if there
// is none.
func (s *Store) GetActiveTimeEntry(ctx context.Context, employeeID string) (*models.TimeEntry, error) {
	entries, err := listDocs(ctx, s.backend, CollectionTimesheets, &where{field: "employeeId", value: employeeID}, (*timeEntryDoc).toModel)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.EndTime == nil {
			return e, nil
		}
	}
	return nil, nil
}

// ListTimeEntries returns entries newest first. From and To bound the start
// time, To exclusive.
func (s *Store) ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]*models.TimeEntry, error) {
	var w *where
	switch {
	case filter.EmployeeID != "":
		w = &where{field: "employeeId", value: filter.EmployeeID}
	case filter.EngagementID != "":
		w = &where{field: "engagementId", value: filter.EngagementID}
	}
	all, err := listDocs(ctx, s.backend, CollectionTimesheets, w, (*timeEntryDoc).toModel)
	if err != nil {
		return nil, err
	}

	var out []*models.TimeEntry
	for _, e := range all {
		if filter.EmployeeID != "" && e.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.EngagementID != "" && e.EngagementID != filter.EngagementID {
			continue
		}
		if filter.From != nil && e.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.StartTime.Before(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
