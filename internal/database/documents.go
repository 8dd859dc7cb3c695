package database

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/utils"
)

// Stored document shapes. Field names match the collections written by the
// rest of the practice's tooling, so they are camelCase in both Firestore and
// the SQLite JSON column. Money is stored as a float and read back rounded to
// two decimal places.

func invalid(collection, id string, err error) error {
	return fmt.Errorf("%w: %s/%s: %v", ErrInvalidDocument, collection, id, err)
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

func toFloat(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type clientDoc struct {
	Name         string `firestore:"name" json:"name"`
	// LegacyName is the capitalised field some older client documents carry.
	LegacyName   string `firestore:"Name,omitempty" json:"-"`
	PartnerID    string `firestore:"partnerId" json:"partnerId"`
	State        string `firestore:"state" json:"state"`
	GSTIN        string `firestore:"gstin,omitempty" json:"gstin,omitempty"`
	PAN          string `firestore:"pan,omitempty" json:"pan,omitempty"`
	ContactName  string `firestore:"contactName,omitempty" json:"contactName,omitempty"`
	Email        string `firestore:"email,omitempty" json:"email,omitempty"`
	Phone        string `firestore:"phone,omitempty" json:"phone,omitempty"`
	AddressLine1 string `firestore:"addressLine1,omitempty" json:"addressLine1,omitempty"`
	AddressLine2 string `firestore:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City         string `firestore:"city,omitempty" json:"city,omitempty"`
	PostalCode   string `firestore:"postalCode,omitempty" json:"postalCode,omitempty"`
	Country      string `firestore:"country,omitempty" json:"country,omitempty"`
}

func (d *clientDoc) toModel(id string) (*models.Client, error) {
	if d.Name == "" {
		d.Name = d.LegacyName
	}
	if d.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	return &models.Client{
		ID:           id,
		Name:         d.Name,
		PartnerID:    d.PartnerID,
		State:        d.State,
		GSTIN:        utils.ToPtrNil(d.GSTIN),
		PAN:          utils.ToPtrNil(d.PAN),
		ContactName:  utils.ToPtrNil(d.ContactName),
		Email:        utils.ToPtrNil(d.Email),
		Phone:        utils.ToPtrNil(d.Phone),
		AddressLine1: utils.ToPtrNil(d.AddressLine1),
		AddressLine2: utils.ToPtrNil(d.AddressLine2),
		City:         utils.ToPtrNil(d.City),
		PostalCode:   utils.ToPtrNil(d.PostalCode),
		Country:      utils.ToPtrNil(d.Country),
	}, nil
}

func newClientDoc(c *models.Client) *clientDoc {
	return &clientDoc{
		Name:         c.Name,
		PartnerID:    c.PartnerID,
		State:        c.State,
		GSTIN:        utils.FromPtr(c.GSTIN),
		PAN:          utils.FromPtr(c.PAN),
		ContactName:  utils.FromPtr(c.ContactName),
		Email:        utils.FromPtr(c.Email),
		Phone:        utils.FromPtr(c.Phone),
		AddressLine1: utils.FromPtr(c.AddressLine1),
		AddressLine2: utils.FromPtr(c.AddressLine2),
		City:         utils.FromPtr(c.City),
		PostalCode:   utils.FromPtr(c.PostalCode),
		Country:      utils.FromPtr(c.Country),
	}
}

type firmDoc struct {
	Name          string `firestore:"name" json:"name"`
	GSTN          string `firestore:"gstn,omitempty" json:"gstn,omitempty"`
	State         string `firestore:"state" json:"state"`
	PAN           string `firestore:"pan,omitempty" json:"pan,omitempty"`
	AddressLine1  string `firestore:"addressLine1,omitempty" json:"addressLine1,omitempty"`
	AddressLine2  string `firestore:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	City          string `firestore:"city,omitempty" json:"city,omitempty"`
	PostalCode    string `firestore:"postalCode,omitempty" json:"postalCode,omitempty"`
	InvoicePrefix string `firestore:"invoicePrefix,omitempty" json:"invoicePrefix,omitempty"`
	BankName      string `firestore:"bankName,omitempty" json:"bankName,omitempty"`
	AccountName   string `firestore:"accountName,omitempty" json:"accountName,omitempty"`
	AccountNumber string `firestore:"accountNumber,omitempty" json:"accountNumber,omitempty"`
	IFSC          string `firestore:"ifsc,omitempty" json:"ifsc,omitempty"`
}

func (d *firmDoc) toModel(id string) (*models.Firm, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if d.State == "" {
		return nil, fmt.Errorf("missing state")
	}
	return &models.Firm{
		ID:            id,
		Name:          d.Name,
		GSTN:          d.GSTN,
		State:         d.State,
		PAN:           utils.ToPtrNil(d.PAN),
		AddressLine1:  utils.ToPtrNil(d.AddressLine1),
		AddressLine2:  utils.ToPtrNil(d.AddressLine2),
		City:          utils.ToPtrNil(d.City),
		PostalCode:    utils.ToPtrNil(d.PostalCode),
		InvoicePrefix: d.InvoicePrefix,
		BankName:      utils.ToPtrNil(d.BankName),
		AccountName:   utils.ToPtrNil(d.AccountName),
		AccountNumber: utils.ToPtrNil(d.AccountNumber),
		IFSC:          utils.ToPtrNil(d.IFSC),
	}, nil
}

func newFirmDoc(f *models.Firm) *firmDoc {
	return &firmDoc{
		Name:          f.Name,
		GSTN:          f.GSTN,
		State:         f.State,
		PAN:           utils.FromPtr(f.PAN),
		AddressLine1:  utils.FromPtr(f.AddressLine1),
		AddressLine2:  utils.FromPtr(f.AddressLine2),
		City:          utils.FromPtr(f.City),
		PostalCode:    utils.FromPtr(f.PostalCode),
		InvoicePrefix: f.InvoicePrefix,
		BankName:      utils.FromPtr(f.BankName),
		AccountName:   utils.FromPtr(f.AccountName),
		AccountNumber: utils.FromPtr(f.AccountNumber),
		IFSC:          utils.FromPtr(f.IFSC),
	}
}

type employeeDoc struct {
	Name  string `firestore:"name" json:"name"`
	Email string `firestore:"email,omitempty" json:"email,omitempty"`
	Role  string `firestore:"role,omitempty" json:"role,omitempty"`
}

func (d *employeeDoc) toModel(id string) (*models.Employee, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	role := models.RoleStaff
	if d.Role != "" {
		r, err := models.ParseRole(d.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	return &models.Employee{ID: id, Name: d.Name, Email: d.Email, Role: role}, nil
}

func newEmployeeDoc(e *models.Employee) *employeeDoc {
	return &employeeDoc{Name: e.Name, Email: e.Email, Role: string(e.Role)}
}

type engagementTypeDoc struct {
	Name        string `firestore:"name" json:"name"`
	SalesItemID string `firestore:"salesItemId,omitempty" json:"salesItemId,omitempty"`
}

func (d *engagementTypeDoc) toModel(id string) (*models.EngagementType, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	return &models.EngagementType{ID: id, Name: d.Name, SalesItemID: d.SalesItemID}, nil
}

func newEngagementTypeDoc(t *models.EngagementType) *engagementTypeDoc {
	return &engagementTypeDoc{Name: t.Name, SalesItemID: t.SalesItemID}
}

type taxRateDoc struct {
	Name string  `firestore:"name" json:"name"`
	Rate float64 `firestore:"rate" json:"rate"`
}

func (d *taxRateDoc) toModel(id string) (*models.TaxRate, error) {
	if d.Rate < 0 || d.Rate > 100 {
		return nil, fmt.Errorf("rate %v out of range", d.Rate)
	}
	return &models.TaxRate{ID: id, Name: d.Name, Rate: decimal.NewFromFloat(d.Rate)}, nil
}

func newTaxRateDoc(t *models.TaxRate) *taxRateDoc {
	return &taxRateDoc{Name: t.Name, Rate: t.Rate.InexactFloat64()}
}

type hsnSacCodeDoc struct {
	Code        string `firestore:"code" json:"code"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
	TaxRateID   string `firestore:"taxRateId,omitempty" json:"taxRateId,omitempty"`
}

func (d *hsnSacCodeDoc) toModel(id string) (*models.HsnSacCode, error) {
	if d.Code == "" {
		return nil, fmt.Errorf("missing code")
	}
	return &models.HsnSacCode{ID: id, Code: d.Code, Description: d.Description, TaxRateID: d.TaxRateID}, nil
}

func newHsnSacCodeDoc(c *models.HsnSacCode) *hsnSacCodeDoc {
	return &hsnSacCodeDoc{Code: c.Code, Description: c.Description, TaxRateID: c.TaxRateID}
}

type salesItemDoc struct {
	Name        string  `firestore:"name" json:"name"`
	Description string  `firestore:"description,omitempty" json:"description,omitempty"`
	Rate        float64 `firestore:"rate" json:"rate"`
	TaxRateID   string  `firestore:"taxRateId,omitempty" json:"taxRateId,omitempty"`
	SacCodeID   string  `firestore:"sacCodeId,omitempty" json:"sacCodeId,omitempty"`
}

func (d *salesItemDoc) toModel(id string) (*models.SalesItem, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if d.Rate < 0 {
		return nil, fmt.Errorf("negative rate")
	}
	return &models.SalesItem{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Rate:        money(d.Rate),
		TaxRateID:   d.TaxRateID,
		SacCodeID:   d.SacCodeID,
	}, nil
}

func newSalesItemDoc(s *models.SalesItem) *salesItemDoc {
	return &salesItemDoc{
		Name:        s.Name,
		Description: s.Description,
		Rate:        toFloat(s.Rate),
		TaxRateID:   s.TaxRateID,
		SacCodeID:   s.SacCodeID,
	}
}

type engagementDoc struct {
	ClientID           string     `firestore:"clientId" json:"clientId"`
	Type               string     `firestore:"type" json:"type"`
	Remarks            string     `firestore:"remarks,omitempty" json:"remarks,omitempty"`
	Status             string     `firestore:"status" json:"status"`
	BillStatus         string     `firestore:"billStatus,omitempty" json:"billStatus,omitempty"`
	BillSubmissionDate *time.Time `firestore:"billSubmissionDate,omitempty" json:"billSubmissionDate,omitempty"`
	Fees               *float64   `firestore:"fees,omitempty" json:"fees,omitempty"`
	AssignedTo         []string   `firestore:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	ReportedTo         string     `firestore:"reportedTo,omitempty" json:"reportedTo,omitempty"`
	DueDate            *time.Time `firestore:"dueDate,omitempty" json:"dueDate,omitempty"`
	CreatedAt          time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

func (d *engagementDoc) toModel(id string) (*models.Engagement, error) {
	if d.ClientID == "" {
		return nil, fmt.Errorf("missing clientId")
	}
	status, err := models.ParseEngagementStatus(d.Status)
	if err != nil {
		return nil, err
	}
	billStatus, err := models.ParseBillStatus(d.BillStatus)
	if err != nil {
		return nil, err
	}

	e := &models.Engagement{
		ID:                 id,
		ClientID:           d.ClientID,
		TypeID:             d.Type,
		Remarks:            d.Remarks,
		Status:             status,
		BillStatus:         billStatus,
		BillSubmissionDate: d.BillSubmissionDate,
		AssignedTo:         d.AssignedTo,
		ReportedTo:         d.ReportedTo,
		DueDate:            d.DueDate,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.Fees != nil {
		e.Fees = decimal.NewNullDecimal(money(*d.Fees))
	}
	return e, nil
}

// hasBillStatus compares parsed values, so a stored "to bill" matches To Bill.
func (d *engagementDoc) hasBillStatus(want models.BillStatus) bool {
	got, err := models.ParseBillStatus(d.BillStatus)
	return err == nil && got == want
}

func newEngagementDoc(e *models.Engagement) *engagementDoc {
	d := &engagementDoc{
		ClientID:           e.ClientID,
		Type:               e.TypeID,
		Remarks:            e.Remarks,
		Status:             string(e.Status),
		BillStatus:         string(e.BillStatus),
		BillSubmissionDate: e.BillSubmissionDate,
		AssignedTo:         e.AssignedTo,
		ReportedTo:         e.ReportedTo,
		DueDate:            e.DueDate,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	if e.Fees.Valid {
		d.Fees = utils.ToPtr(toFloat(e.Fees.Decimal))
	}
	return d
}

type pendingInvoiceDoc struct {
	EngagementID string    `firestore:"engagementId" json:"engagementId"`
	ClientID     string    `firestore:"clientId" json:"clientId"`
	AssignedTo   []string  `firestore:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	ReportedTo   string    `firestore:"reportedTo,omitempty" json:"reportedTo,omitempty"`
	PartnerID    string    `firestore:"partnerId,omitempty" json:"partnerId,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
}

func (d *pendingInvoiceDoc) toModel(id string) (*models.PendingInvoice, error) {
	if d.EngagementID == "" {
		return nil, fmt.Errorf("missing engagementId")
	}
	return &models.PendingInvoice{
		ID:           id,
		EngagementID: d.EngagementID,
		ClientID:     d.ClientID,
		AssignedTo:   d.AssignedTo,
		ReportedTo:   d.ReportedTo,
		PartnerID:    d.PartnerID,
		CreatedAt:    d.CreatedAt,
	}, nil
}

func newPendingInvoiceDoc(p *models.PendingInvoice) *pendingInvoiceDoc {
	return &pendingInvoiceDoc{
		EngagementID: p.EngagementID,
		ClientID:     p.ClientID,
		AssignedTo:   p.AssignedTo,
		ReportedTo:   p.ReportedTo,
		PartnerID:    p.PartnerID,
		CreatedAt:    p.CreatedAt,
	}
}

type lineItemDoc struct {
	SalesItemID       string  `firestore:"salesItemId,omitempty" json:"salesItemId,omitempty"`
	Description       string  `firestore:"description" json:"description"`
	Quantity          float64 `firestore:"quantity" json:"quantity"`
	Rate              float64 `firestore:"rate" json:"rate"`
	Discount          float64 `firestore:"discount" json:"discount"`
	TaxRateID         string  `firestore:"taxRateId,omitempty" json:"taxRateId,omitempty"`
	TaxRate           float64 `firestore:"taxRate" json:"taxRate"`
	SacCodeID         string  `firestore:"sacCodeId,omitempty" json:"sacCodeId,omitempty"`
	SacCode           string  `firestore:"sacCode,omitempty" json:"sacCode,omitempty"`
	Amount            float64 `firestore:"amount" json:"amount"`
	AllocatedDiscount float64 `firestore:"allocatedDiscount" json:"allocatedDiscount"`
	TaxableAmount     float64 `firestore:"taxableAmount" json:"taxableAmount"`
	CGST              float64 `firestore:"cgst" json:"cgst"`
	SGST              float64 `firestore:"sgst" json:"sgst"`
	IGST              float64 `firestore:"igst" json:"igst"`
	Total             float64 `firestore:"total" json:"total"`
}

type invoiceDoc struct {
	InvoiceNumber      string        `firestore:"invoiceNumber" json:"invoiceNumber"`
	EngagementID       string        `firestore:"engagementId" json:"engagementId"`
	ClientID           string        `firestore:"clientId" json:"clientId"`
	FirmID             string        `firestore:"firmId" json:"firmId"`
	IssueDate          time.Time     `firestore:"issueDate" json:"issueDate"`
	Status             string        `firestore:"status" json:"status"`
	FirmState          string        `firestore:"firmState" json:"firmState"`
	FirmGSTN           string        `firestore:"firmGstn,omitempty" json:"firmGstn,omitempty"`
	PlaceOfSupply      string        `firestore:"placeOfSupply" json:"placeOfSupply"`
	LineItems          []lineItemDoc `firestore:"lineItems" json:"lineItems"`
	AdditionalDiscount float64       `firestore:"additionalDiscount" json:"additionalDiscount"`
	SubTotal           float64       `firestore:"subTotal" json:"subTotal"`
	TotalDiscount      float64       `firestore:"totalDiscount" json:"totalDiscount"`
	TaxableAmount      float64       `firestore:"taxableAmount" json:"taxableAmount"`
	CGST               float64       `firestore:"cgst" json:"cgst"`
	SGST               float64       `firestore:"sgst" json:"sgst"`
	IGST               float64       `firestore:"igst" json:"igst"`
	TotalTax           float64       `firestore:"totalTax" json:"totalTax"`
	TotalAmount        float64       `firestore:"totalAmount" json:"totalAmount"`
	Notes              string        `firestore:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy          string        `firestore:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt          time.Time     `firestore:"createdAt" json:"createdAt"`
}

func (d *invoiceDoc) toModel(id string) (*models.Invoice, error) {
	if d.EngagementID == "" {
		return nil, fmt.Errorf("missing engagementId")
	}
	if d.ClientID == "" {
		return nil, fmt.Errorf("missing clientId")
	}
	status, err := models.ParseInvoiceStatus(d.Status)
	if err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		ID:                 id,
		InvoiceNumber:      d.InvoiceNumber,
		EngagementID:       d.EngagementID,
		ClientID:           d.ClientID,
		FirmID:             d.FirmID,
		IssueDate:          d.IssueDate,
		Status:             status,
		FirmState:          d.FirmState,
		FirmGSTN:           d.FirmGSTN,
		PlaceOfSupply:      d.PlaceOfSupply,
		LineItems:          make([]models.LineItem, len(d.LineItems)),
		AdditionalDiscount: money(d.AdditionalDiscount),
		SubTotal:           money(d.SubTotal),
		TotalDiscount:      money(d.TotalDiscount),
		TaxableAmount:      money(d.TaxableAmount),
		CGST:               money(d.CGST),
		SGST:               money(d.SGST),
		IGST:               money(d.IGST),
		TotalTax:           money(d.TotalTax),
		TotalAmount:        money(d.TotalAmount),
		Notes:              utils.ToPtrNil(d.Notes),
		CreatedBy:          d.CreatedBy,
		CreatedAt:          d.CreatedAt,
	}
	for i, l := range d.LineItems {
		if l.Quantity < 0 {
			return nil, fmt.Errorf("line %d: negative quantity", i+1)
		}
		inv.LineItems[i] = models.LineItem{
			SalesItemID:       l.SalesItemID,
			Description:       l.Description,
			Quantity:          decimal.NewFromFloat(l.Quantity),
			Rate:              money(l.Rate),
			Discount:          money(l.Discount),
			TaxRateID:         l.TaxRateID,
			TaxRate:           decimal.NewFromFloat(l.TaxRate),
			SacCodeID:         l.SacCodeID,
			SacCode:           l.SacCode,
			Amount:            money(l.Amount),
			AllocatedDiscount: money(l.AllocatedDiscount),
			TaxableAmount:     money(l.TaxableAmount),
			CGST:              money(l.CGST),
			SGST:              money(l.SGST),
			IGST:              money(l.IGST),
			Total:             money(l.Total),
		}
	}
	return inv, nil
}

func newInvoiceDoc(inv *models.Invoice) *invoiceDoc {
	d := &invoiceDoc{
		InvoiceNumber:      inv.InvoiceNumber,
		EngagementID:       inv.EngagementID,
		ClientID:           inv.ClientID,
		FirmID:             inv.FirmID,
		IssueDate:          inv.IssueDate,
		Status:             string(inv.Status),
		FirmState:          inv.FirmState,
		FirmGSTN:           inv.FirmGSTN,
		PlaceOfSupply:      inv.PlaceOfSupply,
		LineItems:          make([]lineItemDoc, len(inv.LineItems)),
		AdditionalDiscount: toFloat(inv.AdditionalDiscount),
		SubTotal:           toFloat(inv.SubTotal),
		TotalDiscount:      toFloat(inv.TotalDiscount),
		TaxableAmount:      toFloat(inv.TaxableAmount),
		CGST:               toFloat(inv.CGST),
		SGST:               toFloat(inv.SGST),
		IGST:               toFloat(inv.IGST),
		TotalTax:           toFloat(inv.TotalTax),
		TotalAmount:        toFloat(inv.TotalAmount),
		Notes:              utils.FromPtr(inv.Notes),
		CreatedBy:          inv.CreatedBy,
		CreatedAt:          inv.CreatedAt,
	}
	for i, l := range inv.LineItems {
		d.LineItems[i] = lineItemDoc{
			SalesItemID:       l.SalesItemID,
			Description:       l.Description,
			Quantity:          l.Quantity.InexactFloat64(),
			Rate:              toFloat(l.Rate),
			Discount:          toFloat(l.Discount),
			TaxRateID:         l.TaxRateID,
			TaxRate:           l.TaxRate.InexactFloat64(),
			SacCodeID:         l.SacCodeID,
			SacCode:           l.SacCode,
			Amount:            toFloat(l.Amount),
			AllocatedDiscount: toFloat(l.AllocatedDiscount),
			TaxableAmount:     toFloat(l.TaxableAmount),
			CGST:              toFloat(l.CGST),
			SGST:              toFloat(l.SGST),
			IGST:              toFloat(l.IGST),
			Total:             toFloat(l.Total),
		}
	}
	return d
}

type timeEntryDoc struct {
	EmployeeID   string     `firestore:"employeeId" json:"employeeId"`
	EngagementID string     `firestore:"engagementId" json:"engagementId"`
	ClientID     string     `firestore:"clientId" json:"clientId"`
	StartTime    time.Time  `firestore:"startTime" json:"startTime"`
	EndTime      *time.Time `firestore:"endTime,omitempty" json:"endTime,omitempty"`
	Description  string     `firestore:"description,omitempty" json:"description,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

func (d *timeEntryDoc) toModel(id string) (*models.TimeEntry, error) {
	if d.EmployeeID == "" {
		return nil, fmt.Errorf("missing employeeId")
	}
	if d.EndTime != nil && d.EndTime.Before(d.StartTime) {
		return nil, fmt.Errorf("ends before it starts")
	}
	return &models.TimeEntry{
		ID:           id,
		EmployeeID:   d.EmployeeID,
		EngagementID: d.EngagementID,
		ClientID:     d.ClientID,
		StartTime:    d.StartTime,
		EndTime:      d.EndTime,
		Description:  utils.ToPtrNil(d.Description),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func newTimeEntryDoc(e *models.TimeEntry) *timeEntryDoc {
	return &timeEntryDoc{
		EmployeeID:   e.EmployeeID,
		EngagementID: e.EngagementID,
		ClientID:     e.ClientID,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		Description:  utils.FromPtr(e.Description),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
