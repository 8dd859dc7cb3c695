package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Client struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PartnerID    string  `json:"partner_id"`
	State        string  `json:"state"`
	GSTIN        *string `json:"gstin,omitempty"`
	PAN          *string `json:"pan,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Country      *string `json:"country,omitempty"`
}

// Firm is an issuing entity of the practice. A firm without a GSTN invoices
// as an unregistered dealer.
type Firm struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	GSTN          string  `json:"gstn"`
	State         string  `json:"state"`
	PAN           *string `json:"pan,omitempty"`
	AddressLine1  *string `json:"address_line1,omitempty"`
	AddressLine2  *string `json:"address_line2,omitempty"`
	City          *string `json:"city,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	InvoicePrefix string  `json:"invoice_prefix"`
	BankName      *string `json:"bank_name,omitempty"`
	AccountName   *string `json:"account_name,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
	IFSC          *string `json:"ifsc,omitempty"`
}

func (f *Firm) Registered() bool {
	return f.GSTN != ""
}

type Employee struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

type EngagementType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SalesItemID string `json:"sales_item_id,omitempty"`
}

type TaxRate struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}

type HsnSacCode struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	TaxRateID   string `json:"tax_rate_id,omitempty"`
}

type SalesItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	TaxRateID   string          `json:"tax_rate_id,omitempty"`
	SacCodeID   string          `json:"sac_code_id,omitempty"`
}

type Engagement struct {
	ID                 string              `json:"id"`
	ClientID           string              `json:"client_id"`
	TypeID             string              `json:"type"`
	Remarks            string              `json:"remarks,omitempty"`
	Status             EngagementStatus    `json:"status"`
	BillStatus         BillStatus          `json:"bill_status,omitempty"`
	BillSubmissionDate *time.Time          `json:"bill_submission_date,omitempty"`
	Fees               decimal.NullDecimal `json:"fees"`
	AssignedTo         []string            `json:"assigned_to,omitempty"`
	ReportedTo         string              `json:"reported_to,omitempty"`
	DueDate            *time.Time          `json:"due_date,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// IsUnbilled reports whether the engagement is completed work that has not
// entered the billing lifecycle.
func (e *Engagement) IsUnbilled() bool {
	return e.Status == EngagementCompleted && e.BillStatus == BillStatusNone
}

func (e *Engagement) CanSubmitForBilling() bool {
	return e.IsUnbilled()
}

// PendingInvoice is the work-queue row for an engagement in "To Bill". The
// people fields are copied at submission time and never re-derived.
type PendingInvoice struct {
	ID           string    `json:"id"`
	EngagementID string    `json:"engagement_id"`
	ClientID     string    `json:"client_id"`
	AssignedTo   []string  `json:"assigned_to,omitempty"`
	ReportedTo   string    `json:"reported_to,omitempty"`
	PartnerID    string    `json:"partner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type LineItem struct {
	SalesItemID string          `json:"sales_item_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRateID   string          `json:"tax_rate_id,omitempty"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	SacCodeID   string          `json:"sac_code_id,omitempty"`
	SacCode     string          `json:"sac_code,omitempty"`

	Amount            decimal.Decimal `json:"amount"`
	AllocatedDiscount decimal.Decimal `json:"allocated_discount"`
	TaxableAmount     decimal.Decimal `json:"taxable_amount"`
	CGST              decimal.Decimal `json:"cgst"`
	SGST              decimal.Decimal `json:"sgst"`
	IGST              decimal.Decimal `json:"igst"`
	Total             decimal.Decimal `json:"total"`
}

type Invoice struct {
	ID                 string          `json:"id"`
	InvoiceNumber      string          `json:"invoice_number"`
	EngagementID       string          `json:"engagement_id"`
	ClientID           string          `json:"client_id"`
	FirmID             string          `json:"firm_id"`
	IssueDate          time.Time       `json:"issue_date"`
	Status             InvoiceStatus   `json:"status"`
	FirmState          string          `json:"firm_state"`
	FirmGSTN           string          `json:"firm_gstn,omitempty"`
	PlaceOfSupply      string          `json:"place_of_supply"`
	LineItems          []LineItem      `json:"line_items"`
	AdditionalDiscount decimal.Decimal `json:"additional_discount"`
	SubTotal           decimal.Decimal `json:"sub_total"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	TaxableAmount      decimal.Decimal `json:"taxable_amount"`
	CGST               decimal.Decimal `json:"cgst"`
	SGST               decimal.Decimal `json:"sgst"`
	IGST               decimal.Decimal `json:"igst"`
	TotalTax           decimal.Decimal `json:"total_tax"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Notes              *string         `json:"notes,omitempty"`
	CreatedBy          string          `json:"created_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

type TimeEntry struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employee_id"`
	EngagementID string     `json:"engagement_id"`
	ClientID     string     `json:"client_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Description  *string    `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ActivityEntry struct {
	EngagementID string         `json:"engagement_id"`
	ClientID     string         `json:"client_id"`
	Type         ActivityType   `json:"type"`
	UserID       string         `json:"user_id"`
	UserName     string         `json:"user_name"`
	Details      map[string]any `json:"details,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Actor is the employee on whose behalf an operation runs.
type Actor struct {
	UserID   string
	UserName string
	Role     Role
}

func (a Actor) CanBill() bool {
	switch a.Role {
	case RolePartner, RoleAdmin, RoleAccounts:
		return true
	}
	return false
}

func (a Actor) CanForceBillStatus() bool {
	return a.Role == RolePartner || a.Role == RoleAdmin
}

func NewUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
