package models

type Patient struct {
	ID               int64     `json:"id"`
	PatientCode      string    `json:"patient_code"`
	UserID           *int64    `json:"user_id,omitempty"`
	DateOfBirth      string    `json:"date_of_birth,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	CreatedAt        Timestamp `json:"created_at"`
}

// PatientInput is the body of create and update calls. The backend ignores
// patient_code and date_of_birth on update.
type PatientInput struct {
	PatientCode      string `json:"patient_code"`
	DateOfBirth      string `json:"date_of_birth,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergency_contact,omitempty"`
}

// Input returns the editable fields of p.
func (p Patient) Input() PatientInput {
	return PatientInput{
		PatientCode:      p.PatientCode,
		DateOfBirth:      p.DateOfBirth,
		Phone:            p.Phone,
		Address:          p.Address,
		EmergencyContact: p.EmergencyContact,
	}
}
