package prediction

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/glycorisk/riskdash/internal/models"
)

// Form holds the form exactly as entered. Numbers and Choices are keyed by
// the backend field name.
type Form struct {
	PatientID string
	Numbers   map[string]string
	Choices   map[string]string
	Checks    map[string]bool
}

// NewForm returns an empty form with the select defaults filled in.
func NewForm() Form {
	f := Form{
		Numbers: make(map[string]string, len(Fields)),
		Choices: make(map[string]string, len(Selects)),
		Checks:  make(map[string]bool, len(Flags)),
	}
	for _, s := range Selects {
		f.Choices[s.Name] = s.Default
	}
	return f
}

// FormFromValues reads a submitted HTML form. Checkboxes count as set when
// their value is "on", "true" or "1".
func FormFromValues(v url.Values) Form {
	f := NewForm()
	f.PatientID = strings.TrimSpace(v.Get("patient_id"))
	for _, fd := range Fields {
		f.Numbers[fd.Name] = strings.TrimSpace(v.Get(fd.Name))
	}
	for _, s := range Selects {
		if c := strings.TrimSpace(v.Get(s.Name)); c != "" {
			f.Choices[s.Name] = c
		}
	}
	for _, fl := range Flags {
		switch strings.ToLower(v.Get(fl.Name)) {
		case "on", "true", "1":
			f.Checks[fl.Name] = true
		}
	}
	return f
}

// FieldError is one rejected input.
type FieldError struct {
	Field  string
	Label  string
	Reason string
}

// ValidationError lists every rejected input of a Build call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Label+" "+f.Reason)
	}
	return strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, label, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Label: label, Reason: reason})
}

// Build produces the request body. Blank optional fields take their
// defaults; blank or unparsable required fields, and select values the
// backend would reject, are returned together as a *ValidationError.
func (f Form) Build() (models.PredictionInput, error) {
	verr := &ValidationError{}
	var in models.PredictionInput

	if f.PatientID == "" {
		verr.add("patient_id", "Patient", "is required")
	} else if id, err := strconv.ParseInt(f.PatientID, 10, 64); err != nil || id <= 0 {
		verr.add("patient_id", "Patient", "must be a patient id")
	} else {
		in.PatientID = id
	}

	values := make(map[string]float64, len(Fields))
	for _, fd := range Fields {
		raw := strings.TrimSpace(f.Numbers[fd.Name])
		if raw == "" {
			if fd.Required {
				verr.add(fd.Name, fd.Label, "is required")
				continue
			}
			values[fd.Name] = fd.Default
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			verr.add(fd.Name, fd.Label, "must be a number")
			continue
		}
		if fd.Kind == Int {
			v = math.Trunc(v)
		}
		values[fd.Name] = v
	}

	choices := make(map[string]string, len(Selects))
	for _, s := range Selects {
		c := f.Choices[s.Name]
		if c == "" {
			c = s.Default
		}
		if !slices.Contains(s.Options, c) {
			verr.add(s.Name, s.Label, fmt.Sprintf("must be one of %s", strings.Join(s.Options, ", ")))
			continue
		}
		choices[s.Name] = c
	}

	if len(verr.Fields) > 0 {
		return models.PredictionInput{}, verr
	}

	h := &in.HealthFeatures
	h.Age = int(values["age"])
	h.Gender = choices["gender"]
	h.Ethnicity = choices["ethnicity"]
	h.EducationLevel = choices["education_level"]
	h.IncomeLevel = choices["income_level"]
	h.EmploymentStatus = choices["employment_status"]
	h.SmokingStatus = choices["smoking_status"]
	h.AlcoholConsumptionPerWeek = values["alcohol_consumption_per_week"]
	h.PhysicalActivityMinutesPerWeek = int(values["physical_activity_minutes_per_week"])
	h.DietScore = values["diet_score"]
	h.SleepHoursPerDay = values["sleep_hours_per_day"]
	h.ScreenTimeHoursPerDay = values["screen_time_hours_per_day"]
	h.FamilyHistoryDiabetes = f.Checks["family_history_diabetes"]
	h.HypertensionHistory = f.Checks["hypertension_history"]
	h.CardiovascularHistory = f.Checks["cardiovascular_history"]
	h.BMI = values["bmi"]
	h.WaistToHipRatio = values["waist_to_hip_ratio"]
	h.SystolicBP = int(values["systolic_bp"])
	h.DiastolicBP = int(values["diastolic_bp"])
	h.HeartRate = int(values["heart_rate"])
	h.CholesterolTotal = values["cholesterol_total"]
	h.HDLCholesterol = values["hdl_cholesterol"]
	h.LDLCholesterol = values["ldl_cholesterol"]
	h.Triglycerides = values["triglycerides"]
	h.GlucoseFasting = values["glucose_fasting"]
	h.GlucosePostprandial = values["glucose_postprandial"]
	h.InsulinLevel = values["insulin_level"]
	h.HbA1c = values["hba1c"]
	h.DiabetesRiskScore = values["diabetes_risk_score"]

	return in, nil
}

// numericValues maps each numeric field of h to its value.
func numericValues(h models.HealthFeatures) map[string]float64 {
	return map[string]float64{
		"age":                                float64(h.Age),
		"alcohol_consumption_per_week":       h.AlcoholConsumptionPerWeek,
		"physical_activity_minutes_per_week": float64(h.PhysicalActivityMinutesPerWeek),
		"diet_score":                         h.DietScore,
		"sleep_hours_per_day":                h.SleepHoursPerDay,
		"screen_time_hours_per_day":          h.ScreenTimeHoursPerDay,
		"bmi":                                h.BMI,
		"waist_to_hip_ratio":                 h.WaistToHipRatio,
		"systolic_bp":                        float64(h.SystolicBP),
		"diastolic_bp":                       float64(h.DiastolicBP),
		"heart_rate":                         float64(h.HeartRate),
		"cholesterol_total":                  h.CholesterolTotal,
		"hdl_cholesterol":                    h.HDLCholesterol,
		"ldl_cholesterol":                    h.LDLCholesterol,
		"triglycerides":                      h.Triglycerides,
		"glucose_fasting":                    h.GlucoseFasting,
		"glucose_postprandial":               h.GlucosePostprandial,
		"insulin_level":                      h.InsulinLevel,
		"hba1c":                              h.HbA1c,
		"diabetes_risk_score":                h.DiabetesRiskScore,
	}
}

// Advisories lists the values of in that fall outside the backend's accepted
// ranges, in form order.
func Advisories(in models.PredictionInput) []string {
	values := numericValues(in.HealthFeatures)

	var out []string
	for _, fd := range Fields {
		v := values[fd.Name]
		if v < fd.Min || v > fd.Max {
			out = append(out, fmt.Sprintf("%s should be between %s and %s (got %s)",
				fd.Label, formatNumber(fd.Min), formatNumber(fd.Max), formatNumber(v)))
		}
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RiskColor maps a risk level to its display color.
func RiskColor(level string) string {
	switch strings.ToLower(level) {
	case "low":
		return "#28a745"
	case "medium":
		return "#ffc107"
	case "high":
		return "#dc3545"
	default:
		return "#6c757d"
	}
}
