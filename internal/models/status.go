package models

import (
	"fmt"
	"strings"
)

type EngagementStatus string

const (
	EngagementPending           EngagementStatus = "Pending"
	EngagementAwaitingDocuments EngagementStatus = "Awaiting Documents"
	EngagementInProcess         EngagementStatus = "In Process"
	EngagementPartnerReview     EngagementStatus = "Partner Review"
	EngagementOnHold            EngagementStatus = "On Hold"
	EngagementCompleted         EngagementStatus = "Completed"
	EngagementCancelled         EngagementStatus = "Cancelled"
)

var engagementStatuses = []EngagementStatus{
	EngagementPending,
	EngagementAwaitingDocuments,
	EngagementInProcess,
	EngagementPartnerReview,
	EngagementOnHold,
	EngagementCompleted,
	EngagementCancelled,
}

func ParseEngagementStatus(s string) (EngagementStatus, error) {
	for _, status := range engagementStatuses {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown engagement status %q", s)
}

// BillStatus is only meaningful on a Completed engagement. The zero value
// means the engagement has not been submitted for billing.
type BillStatus string

const (
	BillStatusNone              BillStatus = ""
	BillStatusToBill            BillStatus = "To Bill"
	BillStatusPendingCollection BillStatus = "Pending Collection"
	BillStatusCollected         BillStatus = "Collected"
)

func ParseBillStatus(s string) (BillStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return BillStatusNone, nil
	case "to bill", "to-bill", "tobill":
		return BillStatusToBill, nil
	case "pending collection", "pending-collection":
		return BillStatusPendingCollection, nil
	case "collected":
		return BillStatusCollected, nil
	}
	return "", fmt.Errorf("unknown bill status %q", s)
}

func (b BillStatus) String() string {
	if b == BillStatusNone {
		return "None"
	}
	return string(b)
}

type InvoiceStatus string

const (
	InvoicePending       InvoiceStatus = "Pending"
	InvoicePaid          InvoiceStatus = "Paid"
	InvoicePartiallyPaid InvoiceStatus = "Partially Paid"
	InvoiceCancelled     InvoiceStatus = "Cancelled"
)

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	for _, status := range []InvoiceStatus{InvoicePending, InvoicePaid, InvoicePartiallyPaid, InvoiceCancelled} {
		if strings.EqualFold(string(status), strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown invoice status %q", s)
}

type Role string

const (
	RolePartner  Role = "partner"
	RoleAdmin    Role = "admin"
	RoleAccounts Role = "accounts"
	RoleStaff    Role = "staff"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RolePartner, RoleAdmin, RoleAccounts, RoleStaff:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type ActivityType string

const (
	ActivityBillingSubmitted  ActivityType = "billing_submitted"
	ActivityInvoiceGenerated  ActivityType = "invoice_generated"
	ActivityBillStatusChanged ActivityType = "bill_status_changed"
)
