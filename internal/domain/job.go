package domain

import "time"

type JobType string

const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypeInternship JobType = "INTERNSHIP"
)

type JobStatus string

const (
	JobStatusActive   JobStatus = "ACTIVE"
	JobStatusInactive JobStatus = "INACTIVE"
	JobStatusClosed   JobStatus = "CLOSED"
)

type Job struct {
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Company             string     `json:"company"`
	Location            string     `json:"location"`
	JobType             JobType    `json:"jobType"`
	Status              JobStatus  `json:"status"`
	ExperienceLevel     string     `json:"experienceLevel"`
	Department          string     `json:"department"`
	Category            string     `json:"category"`
	Description         string     `json:"description"`
	Requirements        string     `json:"requirements"`
	Responsibilities    string     `json:"responsibilities"`
	Benefits            string     `json:"benefits"`
	SalaryMin           *float64   `json:"salaryMin"`
	SalaryMax           *float64   `json:"salaryMax"`
	SalaryCurrency      *string    `json:"salaryCurrency"`
	WorkMode            string     `json:"workMode"`
	EducationLevel      string     `json:"educationLevel"`
	Skills              string     `json:"skills"` // 以逗号分隔
	CompanyInfo         string     `json:"companyInfo"`
	CompanyLogoURL      string     `json:"companyLogoUrl"`
	PostedBy            int64      `json:"postedBy"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
	StartDate           *time.Time `json:"startDate"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
	Version             int32      `json:"-"`
}

// JobFilter 中为空的字段表示不按该字段过滤
type JobFilter struct {
	Company  string
	Location string
	JobType  JobType
	Status   JobStatus
	PostedBy *int64
}

type SimilarJob struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Match   int    `json:"match"`
}

type MatchFactor struct {
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}

type Company struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
}

type JobDetail struct {
	ID           string        `json:"id"`
	Role         string        `json:"role"`
	Company      Company       `json:"company"`
	Location     string        `json:"location"`
	Compensation string        `json:"compensation"`
	Type         string        `json:"type"`
	PostedAt     string        `json:"postedAt"`
	Keywords     []string      `json:"keywords"`
	Description  string        `json:"description"`
	Requirements []string      `json:"requirements"`
	CompanyInfo  string        `json:"companyInfo"`
	SimilarJobs  []SimilarJob  `json:"similarJobs"`
	MatchScore   int           `json:"matchScore"`
	MatchFactors []MatchFactor `json:"matchFactors"`
	Saved        bool          `json:"saved"`
}

type JobMatch struct {
	JobID        int64         `json:"jobId"`
	MatchScore   int           `json:"matchScore"`
	MatchFactors []MatchFactor `json:"matchFactors"`
}
