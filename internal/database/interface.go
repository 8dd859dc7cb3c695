package database

import (
	"context"
	"errors"
	"time"

	"github.com/jesses-code-adventures/practice/internal/models"
)

const (
	CollectionEngagements     = "engagements"
	CollectionPendingInvoices = "pendingInvoices"
	CollectionInvoices        = "invoices"
	CollectionClients         = "clients"
	CollectionFirms           = "firms"
	CollectionTaxRates        = "taxRates"
	CollectionHsnSacCodes     = "hsnSacCodes"
	CollectionSalesItems      = "salesItems"
	CollectionEmployees       = "employees"
	CollectionEngagementTypes = "engagementTypes"
	CollectionTimesheets      = "timesheets"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrAlreadyExists   = errors.New("document already exists")
	ErrConflict        = errors.New("document changed since it was read")
	ErrInvalidDocument = errors.New("invalid document")
)

type EngagementFilter struct {
	Status   models.EngagementStatus
	ClientID string
}

type InvoiceFilter struct {
	From     *time.Time
	To       *time.Time
	FirmID   string
	ClientID string
	Status   models.InvoiceStatus
}

type TimeEntryFilter struct {
	EmployeeID   string
	EngagementID string
	From         *time.Time
	To           *time.Time
	Limit        int
}

// DB is the document store. Reads return ErrNotFound for missing documents
// and ErrInvalidDocument for documents that fail schema validation. All
// writes go through a Batch.
type DB interface {
	Close() error

	GetEngagement(ctx context.Context, id string) (*models.Engagement, error)
	ListEngagements(ctx context.Context, filter EngagementFilter) ([]*models.Engagement, error)

	GetClient(ctx context.Context, id string) (*models.Client, error)
	ListClients(ctx context.Context) ([]*models.Client, error)
	GetFirm(ctx context.Context, id string) (*models.Firm, error)
	ListFirms(ctx context.Context) ([]*models.Firm, error)
	ListEmployees(ctx context.Context) ([]*models.Employee, error)
	ListEngagementTypes(ctx context.Context) ([]*models.EngagementType, error)
	ListTaxRates(ctx context.Context) ([]*models.TaxRate, error)
	ListHsnSacCodes(ctx context.Context) ([]*models.HsnSacCode, error)
	ListSalesItems(ctx context.Context) ([]*models.SalesItem, error)

	GetPendingInvoice(ctx context.Context, id string) (*models.PendingInvoice, error)
	ListPendingInvoices(ctx context.Context) ([]*models.PendingInvoice, error)
	ListPendingInvoicesForEngagement(ctx context.Context, engagementID string) ([]*models.PendingInvoice, error)

	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*models.Invoice, error)

	GetActiveTimeEntry(ctx context.Context, employeeID string) (*models.TimeEntry, error)
	ListTimeEntries(ctx context.Context, filter TimeEntryFilter) ([]*models.TimeEntry, error)

	NewBatch() *Batch
}
