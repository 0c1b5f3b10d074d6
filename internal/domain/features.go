package domain

import "fmt"

// Feature identifies one clinical measurement by its position in the
// feature vector. The numeric value is the index the pre-fitted scaler and
// classifier were trained against, so the constants must never be reordered.
type Feature int

const (
	FeatureAge Feature = iota
	FeatureAnaemia
	FeatureCreatininePhosphokinase
	FeatureDiabetes
	FeatureEjectionFraction
	FeatureHighBloodPressure
	FeaturePlatelets
	FeatureSerumCreatinine
	FeatureSerumSodium
	FeatureSex
	FeatureSmoking
	FeatureTime
)

// FeatureCount is the length of every feature vector.
const FeatureCount = 12

var featureNames = [FeatureCount]string{
	"age",
	"anaemia",
	"creatinine_phosphokinase",
	"diabetes",
	"ejection_fraction",
	"high_blood_pressure",
	"platelets",
	"serum_creatinine",
	"serum_sodium",
	"sex",
	"smoking",
	"time",
}

// String returns the canonical snake_case name of the feature
func (f Feature) String() string {
	if f < 0 || int(f) >= FeatureCount {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

// FeatureNames returns the canonical feature names in vector order.
func FeatureNames() []string {
	names := make([]string, FeatureCount)
	copy(names, featureNames[:])
	return names
}

// ParseFeature looks a feature up by its canonical name
func ParseFeature(name string) (Feature, bool) {
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// FeatureVector is the ordered input handed to the scaler. Being an array,
// it always holds exactly FeatureCount elements.
type FeatureVector [FeatureCount]float64

// Slice returns a copy of the vector as a slice
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// Snapshot is the state of all twelve form controls at the moment the user
// submitted the form. Flags hold 0 or 1; sex is 0 for female and 1 for male.
type Snapshot struct {
	Age                     int     `json:"age" form:"age"`
	Anaemia                 int     `json:"anaemia" form:"anaemia"`
	CreatininePhosphokinase int     `json:"creatinine_phosphokinase" form:"creatinine_phosphokinase"`
	Diabetes                int     `json:"diabetes" form:"diabetes"`
	EjectionFraction        int     `json:"ejection_fraction" form:"ejection_fraction"`
	HighBloodPressure       int     `json:"high_blood_pressure" form:"high_blood_pressure"`
	Platelets               float64 `json:"platelets" form:"platelets"`
	SerumCreatinine         float64 `json:"serum_creatinine" form:"serum_creatinine"`
	SerumSodium             int     `json:"serum_sodium" form:"serum_sodium"`
	Sex                     int     `json:"sex" form:"sex"`
	Smoking                 int     `json:"smoking" form:"smoking"`
	Time                    int     `json:"time" form:"time"`
}

// Vector assembles the feature vector in the order the artifacts expect.
func (s Snapshot) Vector() FeatureVector {
	return FeatureVector{
		float64(s.Age),
		float64(s.Anaemia),
		float64(s.CreatininePhosphokinase),
		float64(s.Diabetes),
		float64(s.EjectionFraction),
		float64(s.HighBloodPressure),
		s.Platelets,
		s.SerumCreatinine,
		float64(s.SerumSodium),
		float64(s.Sex),
		float64(s.Smoking),
		float64(s.Time),
	}
}

// Value returns a single field of the snapshot as a float64.
func (s Snapshot) Value(f Feature) float64 {
	switch f {
	case FeatureAge:
		return float64(s.Age)
	case FeatureAnaemia:
		return float64(s.Anaemia)
	case FeatureCreatininePhosphokinase:
		return float64(s.CreatininePhosphokinase)
	case FeatureDiabetes:
		return float64(s.Diabetes)
	case FeatureEjectionFraction:
		return float64(s.EjectionFraction)
	case FeatureHighBloodPressure:
		return float64(s.HighBloodPressure)
	case FeaturePlatelets:
		return s.Platelets
	case FeatureSerumCreatinine:
		return s.SerumCreatinine
	case FeatureSerumSodium:
		return float64(s.SerumSodium)
	case FeatureSex:
		return float64(s.Sex)
	case FeatureSmoking:
		return float64(s.Smoking)
	case FeatureTime:
		return float64(s.Time)
	}
	return 0
}

// Set assigns a single field. Integer-valued fields truncate v; callers are
// expected to have checked the field kind beforehand.
func (s *Snapshot) Set(f Feature, v float64) {
	switch f {
	case FeatureAge:
		s.Age = int(v)
	case FeatureAnaemia:
		s.Anaemia = int(v)
	case FeatureCreatininePhosphokinase:
		s.CreatininePhosphokinase = int(v)
	case FeatureDiabetes:
		s.Diabetes = int(v)
	case FeatureEjectionFraction:
		s.EjectionFraction = int(v)
	case FeatureHighBloodPressure:
		s.HighBloodPressure = int(v)
	case FeaturePlatelets:
		s.Platelets = v
	case FeatureSerumCreatinine:
		s.SerumCreatinine = v
	case FeatureSerumSodium:
		s.SerumSodium = int(v)
	case FeatureSex:
		s.Sex = int(v)
	case FeatureSmoking:
		s.Smoking = int(v)
	case FeatureTime:
		s.Time = int(v)
	}
}

// Kind describes how a field is entered and stored
type Kind string

const (
	KindInteger Kind = "integer"
	KindReal    Kind = "real"
	KindFlag    Kind = "flag"
)

// Section groups fields on the form
type Section string

const (
	SectionPersonal Section = "personal"
	SectionClinical Section = "clinical"
)

// FieldSpec describes one form control.
type FieldSpec struct {
	Feature Feature  `json:"-"`
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Default float64  `json:"default"`
	Options []string `json:"options,omitempty"` // flags only: label for 0, label for 1
	Section Section  `json:"section"`
}

// InRange reports whether v lies within the field's bounds
func (f FieldSpec) InRange(v float64) bool {
	return v >= f.Min && v <= f.Max
}

var (
	noYes      = []string{"No", "Yes"}
	femaleMale = []string{"Female", "Male"}
)

// DefaultFieldSpecs returns the form controls in display order, with the
// bounds and defaults the portal ships with.
func DefaultFieldSpecs() []FieldSpec {
	specs := []FieldSpec{
		{Feature: FeatureAge, Label: "Age (Years)", Kind: KindInteger, Min: 1, Max: 120, Default: 60, Section: SectionPersonal},
		{Feature: FeatureSex, Label: "Sex", Kind: KindFlag, Min: 0, Max: 1, Default: 0, Options: femaleMale, Section: SectionPersonal},
		{Feature: FeatureAnaemia, Label: "Anaemia", Kind: KindFlag, Min: 0, Max: 1, Default: 0, Options: noYes, Section: SectionPersonal},
		{Feature: FeatureDiabetes, Label: "Diabetes", Kind: KindFlag, Min: 0, Max: 1, Default: 0, Options: noYes, Section: SectionPersonal},
		{Feature: FeatureSmoking, Label: "Smoking", Kind: KindFlag, Min: 0, Max: 1, Default: 0, Options: noYes, Section: SectionPersonal},
		{Feature: FeatureHighBloodPressure, Label: "High Blood Pressure", Kind: KindFlag, Min: 0, Max: 1, Default: 0, Options: noYes, Section: SectionPersonal},
		{Feature: FeatureTime, Label: "Follow-up Time (Days)", Kind: KindInteger, Min: 0, Max: 300, Default: 130, Section: SectionPersonal},
		{Feature: FeatureEjectionFraction, Label: "Ejection Fraction (%)", Kind: KindInteger, Min: 0, Max: 100, Default: 45, Section: SectionClinical},
		{Feature: FeaturePlatelets, Label: "Platelets (kiloplatelets/mL)", Kind: KindReal, Min: 0, Max: 1000000, Default: 250000, Section: SectionClinical},
		{Feature: FeatureSerumSodium, Label: "Serum Sodium (mEq/L)", Kind: KindInteger, Min: 0, Max: 200, Default: 138, Section: SectionClinical},
		{Feature: FeatureSerumCreatinine, Label: "Serum Creatinine (mg/dL)", Kind: KindReal, Min: 0, Max: 10, Default: 1.1, Section: SectionClinical},
		{Feature: FeatureCreatininePhosphokinase, Label: "Creatinine Phosphokinase (mcg/L)", Kind: KindInteger, Min: 0, Max: 8000, Default: 600, Section: SectionClinical},
	}
	for i := range specs {
		specs[i].Name = specs[i].Feature.String()
	}
	return specs
}
