// Package form turns the twelve form controls into a domain.Snapshot.
package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/heart-failure-risk-portal/internal/domain"
)

// Collector knows the form's fields and their bounds
type Collector struct {
	specs  []domain.FieldSpec
	byFeat map[domain.Feature]domain.FieldSpec
}

// NewCollector builds a collector over specs, which must cover every
// feature exactly once.
func NewCollector(specs []domain.FieldSpec) (*Collector, error) {
	c := &Collector{
		specs:  make([]domain.FieldSpec, len(specs)),
		byFeat: make(map[domain.Feature]domain.FieldSpec, len(specs)),
	}
	copy(c.specs, specs)
	for _, spec := range specs {
		if _, dup := c.byFeat[spec.Feature]; dup {
			return nil, fmt.Errorf("field %s defined twice", spec.Name)
		}
		if !spec.InRange(spec.Default) {
			return nil, fmt.Errorf("field %s: default %v outside [%v, %v]", spec.Name, spec.Default, spec.Min, spec.Max)
		}
		c.byFeat[spec.Feature] = spec
	}
	if len(c.byFeat) != domain.FeatureCount {
		return nil, fmt.Errorf("form has %d fields, want %d", len(c.byFeat), domain.FeatureCount)
	}
	return c, nil
}

// Fields returns the field specs in display order
func (c *Collector) Fields() []domain.FieldSpec {
	out := make([]domain.FieldSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Defaults returns the snapshot an untouched form would submit
func (c *Collector) Defaults() domain.Snapshot {
	var s domain.Snapshot
	for _, spec := range c.specs {
		s.Set(spec.Feature, spec.Default)
	}
	return s
}

// Collect reads a submitted form. Absent or empty fields take their
// default; anything present must parse and lie within the field's bounds.
func (c *Collector) Collect(values url.Values) (domain.Snapshot, error) {
	s := c.Defaults()
	for _, spec := range c.specs {
		raw := strings.TrimSpace(values.Get(spec.Name))
		if raw == "" {
			continue
		}
		v, err := parse(spec, raw)
		if err != nil {
			return domain.Snapshot{}, err
		}
		s.Set(spec.Feature, v)
	}
	return s, nil
}

// Check verifies every field of an already decoded snapshot
func (c *Collector) Check(s domain.Snapshot) error {
	for _, spec := range c.specs {
		if err := checkValue(spec, s.Value(spec.Feature)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeJSON decodes exactly one JSON object onto s. Fields missing from
// data keep the value already in s; unknown fields and trailing data are
// errors. The result still needs Check.
func DecodeJSON(data []byte, s *domain.Snapshot) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(s); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

func parse(spec domain.FieldSpec, raw string) (float64, error) {
	if spec.Kind == domain.KindReal {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, domain.NewValidationError(spec.Name, "must be a number", raw)
		}
		return v, checkValue(spec, v)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError(spec.Name, "must be a whole number", raw)
	}
	v := float64(n)
	return v, checkValue(spec, v)
}

func checkValue(spec domain.FieldSpec, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.NewValidationError(spec.Name, "must be a finite number", v)
	}
	if spec.Kind == domain.KindFlag && v != 0 && v != 1 {
		if len(spec.Options) == 2 {
			return domain.NewValidationError(spec.Name, fmt.Sprintf("must be 0 (%s) or 1 (%s)", spec.Options[0], spec.Options[1]), v)
		}
		return domain.NewValidationError(spec.Name, "must be 0 or 1", v)
	}
	if !spec.InRange(v) {
		return domain.NewValidationError(spec.Name, fmt.Sprintf("must be between %s and %s", format(spec, spec.Min), format(spec, spec.Max)), v)
	}
	return nil
}

// FormatValue renders a field value the way the form control shows it
func FormatValue(spec domain.FieldSpec, v float64) string {
	return format(spec, v)
}

func format(spec domain.FieldSpec, v float64) string {
	if spec.Kind == domain.KindReal {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatInt(int64(v), 10)
}
