package models

// HealthFeatures are the 29 inputs of a risk prediction.
type HealthFeatures struct {
	Age                            int     `json:"age"`
	Gender                         string  `json:"gender"`
	Ethnicity                      string  `json:"ethnicity"`
	EducationLevel                 string  `json:"education_level"`
	IncomeLevel                    string  `json:"income_level"`
	EmploymentStatus               string  `json:"employment_status"`
	SmokingStatus                  string  `json:"smoking_status"`
	AlcoholConsumptionPerWeek      float64 `json:"alcohol_consumption_per_week"`
	PhysicalActivityMinutesPerWeek int     `json:"physical_activity_minutes_per_week"`
	DietScore                      float64 `json:"diet_score"`
	SleepHoursPerDay               float64 `json:"sleep_hours_per_day"`
	ScreenTimeHoursPerDay          float64 `json:"screen_time_hours_per_day"`
	FamilyHistoryDiabetes          bool    `json:"family_history_diabetes"`
	HypertensionHistory            bool    `json:"hypertension_history"`
	CardiovascularHistory          bool    `json:"cardiovascular_history"`
	BMI                            float64 `json:"bmi"`
	WaistToHipRatio                float64 `json:"waist_to_hip_ratio"`
	SystolicBP                     int     `json:"systolic_bp"`
	DiastolicBP                    int     `json:"diastolic_bp"`
	HeartRate                      int     `json:"heart_rate"`
	CholesterolTotal               float64 `json:"cholesterol_total"`
	HDLCholesterol                 float64 `json:"hdl_cholesterol"`
	LDLCholesterol                 float64 `json:"ldl_cholesterol"`
	Triglycerides                  float64 `json:"triglycerides"`
	GlucoseFasting                 float64 `json:"glucose_fasting"`
	GlucosePostprandial            float64 `json:"glucose_postprandial"`
	InsulinLevel                   float64 `json:"insulin_level"`
	HbA1c                          float64 `json:"hba1c"`
	DiabetesRiskScore              float64 `json:"diabetes_risk_score"`
}

// PredictionInput is the body of POST /predictions/.
type PredictionInput struct {
	PatientID int64 `json:"patient_id"`
	HealthFeatures
}

// Prediction is one entry of the prediction history. Age, Gender and BMI are
// filled only by backends that include them in list responses.
type Prediction struct {
	ID                 int64     `json:"id"`
	PatientID          int64     `json:"patient_id"`
	DoctorID           *int64    `json:"doctor_id,omitempty"`
	RiskProbability    float64   `json:"risk_probability"` // percent, 0-100
	RiskLevel          string    `json:"risk_level"`
	PredictionClass    int       `json:"prediction_class"`
	RiskInterpretation string    `json:"risk_interpretation"`
	CreatedAt          Timestamp `json:"created_at"`

	Age    *int     `json:"age,omitempty"`
	Gender *string  `json:"gender,omitempty"`
	BMI    *float64 `json:"bmi,omitempty"`
}

// PredictionDetail is a prediction together with every input it was made from.
type PredictionDetail struct {
	ID                 int64     `json:"id"`
	PatientID          int64     `json:"patient_id"`
	DoctorID           *int64    `json:"doctor_id,omitempty"`
	RiskProbability    float64   `json:"risk_probability"` // percent, 0-100
	RiskLevel          string    `json:"risk_level"`
	PredictionClass    int       `json:"prediction_class"`
	RiskInterpretation string    `json:"risk_interpretation"`
	CreatedAt          Timestamp `json:"created_at"`
	HealthFeatures
}
