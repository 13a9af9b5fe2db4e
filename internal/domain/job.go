package domain

// Job is the parent sub-record of a normalized posting. Every other
// sub-record is persisted with the id generated for its Job row.
type Job struct {
	Title          string `json:"title"`
	Industry       string `json:"industry"`
	Description    string `json:"description"`
	EmploymentType string `json:"employment_type"`
	DatePosted     string `json:"date_posted"`
}

type Company struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type Education struct {
	RequiredCredential string `json:"required_credential"`
}

type Experience struct {
	MonthsOfExperience Number `json:"months_of_experience"`
	SeniorityLevel     string `json:"seniority_level"`
}

type Salary struct {
	Currency string `json:"currency"`
	MinValue Number `json:"min_value"`
	MaxValue Number `json:"max_value"`
	Unit     string `json:"unit"`
}

type Location struct {
	Country       string `json:"country"`
	Locality      string `json:"locality"`
	Region        string `json:"region"`
	PostalCode    string `json:"postal_code"`
	StreetAddress string `json:"street_address"`
	Latitude      Number `json:"latitude"`
	Longitude     Number `json:"longitude"`
}

// Record is one posting decomposed into its six sub-records. Index is the
// posting's position in the extracted sequence; it names the staging
// snapshot and is never used as a database key.
type Record struct {
	Index      int        `json:"-"`
	Job        Job        `json:"job"`
	Company    Company    `json:"company"`
	Education  Education  `json:"education"`
	Experience Experience `json:"experience"`
	Salary     Salary     `json:"salary"`
	Location   Location   `json:"location"`
}
