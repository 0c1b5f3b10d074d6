package api

import (
	"embed"
	"html/template"

	"github.com/heart-failure-risk-portal/internal/domain"
	"github.com/heart-failure-risk-portal/internal/form"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"isFlag": func(k domain.Kind) bool { return k == domain.KindFlag },
}

var sectionTitles = []struct {
	section domain.Section
	title   string
}{
	{domain.SectionPersonal, "Personal Information"},
	{domain.SectionClinical, "Clinical Measurements"},
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageField struct {
	Name    string
	Label   string
	Kind    domain.Kind
	Min     string
	Max     string
	Step    string
	Value   string
	Options []option
}

type pageSection struct {
	Title  string
	Fields []pageField
}

// page is the data behind templates/index.html
type page struct {
	Sections      []pageSection
	Outcome       *domain.Outcome
	Error         string
	CorrelationID string
}

// newPage lays the fields out by section, showing value(spec) in each control
func newPage(specs []domain.FieldSpec, value func(domain.FieldSpec) string) *page {
	p := &page{}
	for _, st := range sectionTitles {
		section := pageSection{Title: st.title}
		for _, spec := range specs {
			if spec.Section != st.section {
				continue
			}
			section.Fields = append(section.Fields, newPageField(spec, value(spec)))
		}
		if len(section.Fields) > 0 {
			p.Sections = append(p.Sections, section)
		}
	}
	return p
}

func newPageField(spec domain.FieldSpec, value string) pageField {
	f := pageField{
		Name:  spec.Name,
		Label: spec.Label,
		Kind:  spec.Kind,
		Min:   form.FormatValue(spec, spec.Min),
		Max:   form.FormatValue(spec, spec.Max),
		Step:  "1",
		Value: value,
	}
	if spec.Kind == domain.KindReal {
		f.Step = "any"
	}
	for i, label := range spec.Options {
		v := form.FormatValue(spec, float64(i))
		f.Options = append(f.Options, option{Value: v, Label: label, Selected: v == value})
	}
	return f
}

// snapshotValues shows a decoded snapshot
func snapshotValues(s domain.Snapshot) func(domain.FieldSpec) string {
	return func(spec domain.FieldSpec) string {
		return form.FormatValue(spec, s.Value(spec.Feature))
	}
}

// rawValues echoes what the user typed so a rejected submission can be corrected
func rawValues(values map[string][]string, defaults domain.Snapshot) func(domain.FieldSpec) string {
	fallback := snapshotValues(defaults)
	return func(spec domain.FieldSpec) string {
		if v := values[spec.Name]; len(v) > 0 && v[0] != "" {
			return v[0]
		}
		return fallback(spec)
	}
}
