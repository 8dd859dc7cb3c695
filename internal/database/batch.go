package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/practice/internal/models"
)

type opKind int

const (
	opCreate opKind = iota
	opSet
	opDelete
	opUpdateEngagement
)

type op struct {
	kind       opKind
	collection string
	id         string
	doc        any
	update     *EngagementBillingUpdate
}

type expectation struct {
	engagementID string
	billStatus   models.BillStatus
}

// EngagementBillingUpdate changes the billing fields of an engagement and
// leaves the rest of the document alone.
type EngagementBillingUpdate struct {
	BillStatus models.BillStatus
	// SubmissionDate is written when set. ClearSubmissionDate removes it.
	SubmissionDate      *time.Time
	ClearSubmissionDate bool
	Fees                decimal.NullDecimal
}

func (u *EngagementBillingUpdate) apply(d *engagementDoc, now time.Time) {
	d.BillStatus = string(u.BillStatus)
	if u.ClearSubmissionDate {
		d.BillSubmissionDate = nil
	} else if u.SubmissionDate != nil {
		t := *u.SubmissionDate
		d.BillSubmissionDate = &t
	}
	if u.Fees.Valid {
		f := toFloat(u.Fees.Decimal)
		d.Fees = &f
	}
	d.UpdatedAt = now
}

// Batch collects writes that commit together or not at all. Preconditions
// registered with ExpectBillStatus are checked inside the same transaction
// and fail the commit with ErrConflict.
type Batch struct {
	backend backend
	ops     []op
	expects []expectation
}

func (b *Batch) ExpectBillStatus(engagementID string, status models.BillStatus) *Batch {
	b.expects = append(b.expects, expectation{engagementID: engagementID, billStatus: status})
	return b
}

func (b *Batch) UpdateEngagementBilling(engagementID string, u EngagementBillingUpdate) *Batch {
	b.ops = append(b.ops, op{kind: opUpdateEngagement, collection: CollectionEngagements, id: engagementID, update: &u})
	return b
}

func (b *Batch) CreatePendingInvoice(p *models.PendingInvoice) *Batch {
	b.ops = append(b.ops, op{kind: opCreate, collection: CollectionPendingInvoices, id: p.ID, doc: newPendingInvoiceDoc(p)})
	return b
}

func (b *Batch) DeletePendingInvoice(id string) *Batch {
	b.ops = append(b.ops, op{kind: opDelete, collection: CollectionPendingInvoices, id: id})
	return b
}

func (b *Batch) CreateInvoice(inv *models.Invoice) *Batch {
	b.ops = append(b.ops, op{kind: opCreate, collection: CollectionInvoices, id: inv.ID, doc: newInvoiceDoc(inv)})
	return b
}

func (b *Batch) SaveInvoice(inv *models.Invoice) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionInvoices, id: inv.ID, doc: newInvoiceDoc(inv)})
	return b
}

func (b *Batch) SaveEngagement(e *models.Engagement) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionEngagements, id: e.ID, doc: newEngagementDoc(e)})
	return b
}

func (b *Batch) SaveClient(c *models.Client) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionClients, id: c.ID, doc: newClientDoc(c)})
	return b
}

func (b *Batch) SaveFirm(f *models.Firm) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionFirms, id: f.ID, doc: newFirmDoc(f)})
	return b
}

func (b *Batch) SaveEmployee(e *models.Employee) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionEmployees, id: e.ID, doc: newEmployeeDoc(e)})
	return b
}

func (b *Batch) SaveEngagementType(t *models.EngagementType) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionEngagementTypes, id: t.ID, doc: newEngagementTypeDoc(t)})
	return b
}

func (b *Batch) SaveTaxRate(t *models.TaxRate) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionTaxRates, id: t.ID, doc: newTaxRateDoc(t)})
	return b
}

func (b *Batch) SaveHsnSacCode(c *models.HsnSacCode) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionHsnSacCodes, id: c.ID, doc: newHsnSacCodeDoc(c)})
	return b
}

func (b *Batch) SaveSalesItem(s *models.SalesItem) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionSalesItems, id: s.ID, doc: newSalesItemDoc(s)})
	return b
}

func (b *Batch) SaveTimeEntry(e *models.TimeEntry) *Batch {
	b.ops = append(b.ops, op{kind: opSet, collection: CollectionTimesheets, id: e.ID, doc: newTimeEntryDoc(e)})
	return b
}

// Commit applies every write atomically. An empty batch is a no-op.
func (b *Batch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 && len(b.expects) == 0 {
		return nil
	}
	return b.backend.commit(ctx, b)
}
