// Package normalize maps schema.org JobPosting payloads into the six
// sub-records persisted by the loader.
package normalize

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"jobpostings-etl/internal/config"
	"jobpostings-etl/internal/domain"
	"jobpostings-etl/internal/logger"
	"jobpostings-etl/internal/metrics"
)

// Stager receives a snapshot of every normalized record.
type Stager interface {
	Write(ctx context.Context, index int, rec domain.Record) error
}

type Normalizer struct {
	Stager        Stager
	Policy        string // config.PolicyAbort | config.PolicySkip
	StrictNumbers bool
	Log           *logger.Logger
	Metrics       *metrics.Metrics

	warn rate.Sometimes
}

func New(stager Stager, cfg config.NormalizeConfig, log *logger.Logger, m *metrics.Metrics) *Normalizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Normalizer{
		Stager:        stager,
		Policy:        cfg.OnMalformed,
		StrictNumbers: cfg.StrictNumbers,
		Log:           log,
		Metrics:       m,
		warn:          rate.Sometimes{First: 10, Interval: 5 * time.Second},
	}
}

// Normalize maps payloads in order. Under the abort policy the first
// malformed payload is returned as a *MalformedRecordError; under skip it is
// logged and left out, and later records keep their original index.
func (n *Normalizer) Normalize(ctx context.Context, payloads []string) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(payloads))
	skipped := 0

	for i, payload := range payloads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, coercions, err := Map(i, payload)
		if err == nil && len(coercions) > 0 {
			err = n.handleCoercions(i, coercions)
		}
		if err != nil {
			if n.Policy != config.PolicySkip {
				return nil, err
			}
			skipped++
			n.Metrics.Skipped(skipReason(err))
			n.warn.Do(func() {
				n.Log.Warn("[normalize] skipping record", "index", i, "err", err)
			})
			continue
		}

		out = append(out, rec)
		n.Metrics.Normalized()
		n.stage(ctx, rec)
	}

	if skipped > 0 {
		n.Log.Warn("[normalize] skipped malformed records", "skipped", skipped, "kept", len(out))
	}
	n.Log.Info("[normalize] done", "records", len(out))
	return out, nil
}

func (n *Normalizer) handleCoercions(index int, errs []*FieldCoercionError) error {
	for _, e := range errs {
		n.Metrics.CoercionFailed(e.Field)
	}
	if n.StrictNumbers {
		return &MalformedRecordError{Index: index, Err: errs[0]}
	}
	for _, e := range errs {
		n.Log.Debug("[normalize] numeric field dropped", "index", e.Index, "field", e.Field, "value", e.Value)
	}
	return nil
}

// stage is best-effort: the load stage does not depend on snapshots.
func (n *Normalizer) stage(ctx context.Context, rec domain.Record) {
	if n.Stager == nil {
		return
	}
	if err := n.Stager.Write(ctx, rec.Index, rec); err != nil {
		n.Metrics.StagingFailed()
		n.warn.Do(func() {
			n.Log.Warn("[staging] write failed", "index", rec.Index, "err", err)
		})
	}
}

func skipReason(err error) string {
	var fce *FieldCoercionError
	switch {
	case errors.As(err, &fce):
		return "coercion"
	case errors.Is(err, ErrNotObject):
		return "not_object"
	default:
		return "invalid_json"
	}
}

// Map decomposes one payload. Numeric fields that cannot be coerced come
// back as absent values plus one FieldCoercionError each.
func Map(index int, payload string) (domain.Record, []*FieldCoercionError, error) {
	doc, err := ParseDoc(payload)
	if err != nil {
		return domain.Record{}, nil, &MalformedRecordError{Index: index, Err: err}
	}

	var coercions []*FieldCoercionError
	num := func(path string) domain.Number {
		v, raw, ok := doc.Number(path)
		if !ok {
			coercions = append(coercions, &FieldCoercionError{Index: index, Field: path, Value: raw})
		}
		return v
	}

	rec := domain.Record{
		Index: index,
		Job: domain.Job{
			Title:          doc.String("title"),
			Industry:       doc.String("industry"),
			Description:    StripTags(doc.String("description")),
			EmploymentType: doc.String("employmentType"),
			DatePosted:     doc.String("datePosted"),
		},
		Company: domain.Company{
			Name: doc.String("hiringOrganization.name"),
			Link: doc.String("hiringOrganization.sameAs"),
		},
		Education: domain.Education{
			RequiredCredential: doc.String("educationRequirements.credentialCategory"),
		},
		Experience: domain.Experience{
			MonthsOfExperience: num("experienceRequirements.monthsOfExperience"),
			SeniorityLevel:     doc.String("experienceRequirements.seniority_level"),
		},
		Salary: domain.Salary{
			Currency: doc.String("salary.currency"),
			MinValue: num("salary.min_value"),
			MaxValue: num("salary.max_value"),
			Unit:     doc.String("salary.unit"),
		},
		Location: domain.Location{
			Country:       doc.String("jobLocation.address.addressCountry"),
			Locality:      doc.String("jobLocation.address.addressLocality"),
			Region:        doc.String("jobLocation.address.addressRegion"),
			PostalCode:    doc.String("jobLocation.address.postalCode"),
			StreetAddress: doc.String("jobLocation.address.streetAddress"),
			Latitude:      num("jobLocation.latitude"),
			Longitude:     num("jobLocation.longitude"),
		},
	}
	return rec, coercions, nil
}
