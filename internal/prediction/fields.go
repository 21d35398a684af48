// Package prediction turns the raw prediction form into the request body the
// backend expects.
//
// Nine numeric fields are required. Every other numeric field falls back to a
// fixed default when left blank, and the selects default to the first-visit
// answers. Backend ranges are reported as advisories; they never block a
// submission.
package prediction

// Kind tells how a numeric field is parsed.
type Kind int

const (
	Float Kind = iota
	Int
)

// Field describes one numeric input of the form.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	// Default is used when an optional field is left blank.
	Default  float64
	Min, Max float64
}

// Fields lists the numeric inputs in form order.
var Fields = []Field{
	{Name: "age", Label: "Age", Kind: Int, Required: true, Min: 18, Max: 120},
	{Name: "alcohol_consumption_per_week", Label: "Alcohol (drinks/week)", Default: 0, Min: 0, Max: 50},
	{Name: "physical_activity_minutes_per_week", Label: "Physical activity (min/week)", Kind: Int, Required: true, Min: 0, Max: 3000},
	{Name: "diet_score", Label: "Diet score", Default: 5, Min: 0, Max: 10},
	{Name: "sleep_hours_per_day", Label: "Sleep (hours/day)", Default: 7, Min: 0, Max: 24},
	{Name: "screen_time_hours_per_day", Label: "Screen time (hours/day)", Default: 4, Min: 0, Max: 24},
	{Name: "bmi", Label: "BMI", Required: true, Min: 10, Max: 60},
	{Name: "waist_to_hip_ratio", Label: "Waist-to-hip ratio", Default: 0.85, Min: 0.5, Max: 1.5},
	{Name: "systolic_bp", Label: "Systolic BP", Kind: Int, Required: true, Min: 70, Max: 250},
	{Name: "diastolic_bp", Label: "Diastolic BP", Kind: Int, Required: true, Min: 40, Max: 150},
	{Name: "heart_rate", Label: "Heart rate", Kind: Int, Default: 70, Min: 30, Max: 200},
	{Name: "cholesterol_total", Label: "Total cholesterol", Required: true, Min: 100, Max: 500},
	{Name: "hdl_cholesterol", Label: "HDL cholesterol", Required: true, Min: 20, Max: 150},
	{Name: "ldl_cholesterol", Label: "LDL cholesterol", Default: 100, Min: 30, Max: 400},
	{Name: "triglycerides", Label: "Triglycerides", Default: 150, Min: 25, Max: 500},
	{Name: "glucose_fasting", Label: "Fasting glucose", Required: true, Min: 50, Max: 300},
	{Name: "glucose_postprandial", Label: "Postprandial glucose", Default: 120, Min: 60, Max: 400},
	{Name: "insulin_level", Label: "Insulin level", Default: 10, Min: 1, Max: 50},
	{Name: "hba1c", Label: "HbA1c", Default: 5.5, Min: 3, Max: 15},
	{Name: "diabetes_risk_score", Label: "Diabetes risk score", Default: 0, Min: 0, Max: 100},
}

// Select describes one enumerated input and its allowed values.
type Select struct {
	Name    string
	Label   string
	Options []string
	Default string
}

var Selects = []Select{
	{Name: "gender", Label: "Gender", Options: []string{"Male", "Female", "Other"}, Default: "Male"},
	{Name: "ethnicity", Label: "Ethnicity", Options: []string{"White", "Black", "Asian", "Hispanic", "Other"}, Default: "Other"},
	{Name: "education_level", Label: "Education", Options: []string{"No formal", "Highschool", "Graduate", "Postgraduate"}, Default: "Highschool"},
	{Name: "income_level", Label: "Income", Options: []string{"Low", "Lower-Middle", "Middle", "Upper-Middle", "High"}, Default: "Middle"},
	{Name: "employment_status", Label: "Employment", Options: []string{"Employed", "Unemployed", "Retired", "Student"}, Default: "Employed"},
	{Name: "smoking_status", Label: "Smoking", Options: []string{"Never", "Former", "Current"}, Default: "Never"},
}

// Flags are the yes/no medical history inputs.
var Flags = []struct{ Name, Label string }{
	{Name: "family_history_diabetes", Label: "Family history of diabetes"},
	{Name: "hypertension_history", Label: "Hypertension"},
	{Name: "cardiovascular_history", Label: "Cardiovascular disease"},
}
