package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jesses-code-adventures/practice/internal/models"
)

// Fixture is a YAML seed file. Entries use the stored documents' field
// names plus an id, and go through the same schema checks as reads.
type Fixture struct {
	Clients         []map[string]any `yaml:"clients"`
	Firms           []map[string]any `yaml:"firms"`
	Employees       []map[string]any `yaml:"employees"`
	EngagementTypes []map[string]any `yaml:"engagementTypes"`
	TaxRates        []map[string]any `yaml:"taxRates"`
	HsnSacCodes     []map[string]any `yaml:"hsnSacCodes"`
	SalesItems      []map[string]any `yaml:"salesItems"`
	Engagements     []map[string]any `yaml:"engagements"`
}

func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

// Stage validates every entry and adds it to b, returning how many were
// staged. Nothing is written until the batch commits, so one bad entry
// leaves the store untouched.
func (f *Fixture) Stage(b *Batch, now time.Time) (int, error) {
	var n int
	count := func(c int, err error) error {
		n += c
		return err
	}

	err := errors.Join(
		count(stage(CollectionClients, f.Clients, (*clientDoc).toModel, func(c *models.Client) { b.SaveClient(c) })),
		count(stage(CollectionFirms, f.Firms, (*firmDoc).toModel, func(m *models.Firm) { b.SaveFirm(m) })),
		count(stage(CollectionEmployees, f.Employees, (*employeeDoc).toModel, func(e *models.Employee) { b.SaveEmployee(e) })),
		count(stage(CollectionEngagementTypes, f.EngagementTypes, (*engagementTypeDoc).toModel, func(t *models.EngagementType) { b.SaveEngagementType(t) })),
		count(stage(CollectionTaxRates, f.TaxRates, (*taxRateDoc).toModel, func(r *models.TaxRate) { b.SaveTaxRate(r) })),
		count(stage(CollectionHsnSacCodes, f.HsnSacCodes, (*hsnSacCodeDoc).toModel, func(c *models.HsnSacCode) { b.SaveHsnSacCode(c) })),
		count(stage(CollectionSalesItems, f.SalesItems, (*salesItemDoc).toModel, func(s *models.SalesItem) { b.SaveSalesItem(s) })),
		count(stage(CollectionEngagements, f.Engagements, (*engagementDoc).toModel, func(e *models.Engagement) {
			if e.CreatedAt.IsZero() {
				e.CreatedAt = now
			}
			if e.UpdatedAt.IsZero() {
				e.UpdatedAt = e.CreatedAt
			}
			b.SaveEngagement(e)
		})),
	)
	return n, err
}

var dateFields = map[string]bool{
	"billSubmissionDate": true,
	"dueDate":            true,
	"createdAt":          true,
	"updatedAt":          true,
}

func parseFixtureDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func stage[D any, M any](collection string, entries []map[string]any, toModel func(*D, string) (M, error), save func(M)) (int, error) {
	for i, entry := range entries {
		id, _ := entry["id"].(string)
		if id == "" {
			return 0, fmt.Errorf("%w: %s[%d]: missing id", ErrInvalidDocument, collection, i)
		}

		fields := make(map[string]any, len(entry))
		for k, v := range entry {
			if k == "id" {
				continue
			}
			// YAML hands timestamps to map values as plain strings
			if s, ok := v.(string); ok && dateFields[k] {
				t, err := parseFixtureDate(s)
				if err != nil {
					return 0, invalid(collection, id, fmt.Errorf("%s: %w", k, err))
				}
				v = t
			}
			fields[k] = v
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return 0, invalid(collection, id, err)
		}

		var doc D
		if err := jsonDocument(raw).DataTo(&doc); err != nil {
			return 0, invalid(collection, id, err)
		}
		m, err := toModel(&doc, id)
		if err != nil {
			return 0, invalid(collection, id, err)
		}
		save(m)
	}
	return len(entries), nil
}
