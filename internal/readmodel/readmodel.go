// Package readmodel joins engagements and pending invoices to the names of
// the clients, employees and engagement types they reference. The reference
// collections are cached for a TTL; a reference that cannot be resolved
// renders as a placeholder instead of failing the view.
package readmodel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
)

const (
	UnknownClient = "Unknown Client"
	NotAvailable  = "N/A"
)

type EngagementView struct {
	Engagement     *models.Engagement
	Client         *models.Client
	ClientName     string
	TypeName       string
	AssignedNames  []string
	ReportedToName string
	PartnerName    string
}

type PendingInvoiceView struct {
	PendingInvoice *models.PendingInvoice
	// Engagement is nil when the referenced engagement no longer exists.
	Engagement     *models.Engagement
	ClientName     string
	TypeName       string
	AssignedNames  []string
	ReportedToName string
	PartnerName    string
}

type lookups struct {
	clients   map[string]*models.Client
	employees map[string]*models.Employee
	types     map[string]*models.EngagementType
	firms     map[string]*models.Firm
	loadedAt  time.Time
}

type Service struct {
	db  database.DB
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	current *lookups
}

func New(db database.DB, ttl time.Duration) *Service {
	return &Service{db: db, ttl: ttl, now: time.Now}
}

// Invalidate drops the cache so the next read reloads every collection.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *Service) load(ctx context.Context) (*lookups, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.now().Sub(s.current.loadedAt) < s.ttl {
		return s.current, nil
	}

	var (
		clients   []*models.Client
		employees []*models.Employee
		types     []*models.EngagementType
		firms     []*models.Firm
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, err = s.db.ListClients(gctx)
		return err
	})
	g.Go(func() (err error) {
		employees, err = s.db.ListEmployees(gctx)
		return err
	})
	g.Go(func() (err error) {
		types, err = s.db.ListEngagementTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		firms, err = s.db.ListFirms(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}

	l := &lookups{
		clients:   make(map[string]*models.Client, len(clients)),
		employees: make(map[string]*models.Employee, len(employees)),
		types:     make(map[string]*models.EngagementType, len(types)),
		firms:     make(map[string]*models.Firm, len(firms)),
		loadedAt:  s.now(),
	}
	for _, c := range clients {
		l.clients[c.ID] = c
	}
	for _, e := range employees {
		l.employees[e.ID] = e
	}
	for _, t := range types {
		l.types[t.ID] = t
	}
	for _, f := range firms {
		l.firms[f.ID] = f
	}
	s.current = l
	return l, nil
}

func (l *lookups) clientName(id string) string {
	if c, ok := l.clients[id]; ok {
		return c.Name
	}
	return UnknownClient
}

func (l *lookups) employeeName(id string) string {
	if e, ok := l.employees[id]; ok {
		return e.Name
	}
	return NotAvailable
}

func (l *lookups) employeeNames(ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = l.employeeName(id)
	}
	return names
}

func (l *lookups) typeName(id string) string {
	if t, ok := l.types[id]; ok {
		return t.Name
	}
	return NotAvailable
}

func (l *lookups) partnerName(clientID string) string {
	if c, ok := l.clients[clientID]; ok {
		return l.employeeName(c.PartnerID)
	}
	return NotAvailable
}

func (s *Service) ClientName(ctx context.Context, id string) (string, error) {
	l, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return l.clientName(id), nil
}

func (s *Service) EmployeeName(ctx context.Context, id string) (string, error) {
	l, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return l.employeeName(id), nil
}

func (s *Service) TypeName(ctx context.Context, id string) (string, error) {
	l, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return l.typeName(id), nil
}

// FirmName falls back to N/A like the other reference lookups.
func (s *Service) FirmName(ctx context.Context, id string) (string, error) {
	l, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if f, ok := l.firms[id]; ok {
		return f.Name, nil
	}
	return NotAvailable, nil
}

func (s *Service) Client(ctx context.Context, id string) (*models.Client, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return l.clients[id], nil
}

func (s *Service) EngagementView(ctx context.Context, id string) (*EngagementView, error) {
	e, err := s.db.GetEngagement(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.EngagementViews(ctx, []*models.Engagement{e})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// EngagementViews joins each engagement to its names, keeping input order.
func (s *Service) EngagementViews(ctx context.Context, engagements []*models.Engagement) ([]*EngagementView, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*EngagementView, len(engagements))
	for i, e := range engagements {
		views[i] = &EngagementView{
			Engagement:     e,
			Client:         l.clients[e.ClientID],
			ClientName:     l.clientName(e.ClientID),
			TypeName:       l.typeName(e.TypeID),
			AssignedNames:  l.employeeNames(e.AssignedTo),
			ReportedToName: l.employeeName(e.ReportedTo),
			PartnerName:    l.partnerName(e.ClientID),
		}
	}
	return views, nil
}

// PendingInvoiceViews is the billing queue sorted by client name. People are
// named from the fields copied onto the queue row at submission.
func (s *Service) PendingInvoiceViews(ctx context.Context) ([]*PendingInvoiceView, error) {
	l, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var (
		pending     []*models.PendingInvoice
		engagements []*models.Engagement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		pending, err = s.db.ListPendingInvoices(gctx)
		return err
	})
	g.Go(func() (err error) {
		engagements, err = s.db.ListEngagements(gctx, database.EngagementFilter{Status: models.EngagementCompleted})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load billing queue: %w", err)
	}

	byID := make(map[string]*models.Engagement, len(engagements))
	for _, e := range engagements {
		byID[e.ID] = e
	}

	views := make([]*PendingInvoiceView, len(pending))
	for i, p := range pending {
		v := &PendingInvoiceView{
			PendingInvoice: p,
			Engagement:     byID[p.EngagementID],
			ClientName:     l.clientName(p.ClientID),
			TypeName:       NotAvailable,
			AssignedNames:  l.employeeNames(p.AssignedTo),
			ReportedToName: l.employeeName(p.ReportedTo),
			PartnerName:    l.employeeName(p.PartnerID),
		}
		if v.Engagement != nil {
			v.TypeName = l.typeName(v.Engagement.TypeID)
		}
		views[i] = v
	}
	sort.SliceStable(views, func(i, j int) bool {
		return strings.ToLower(views[i].ClientName) < strings.ToLower(views[j].ClientName)
	})
	return views, nil
}
