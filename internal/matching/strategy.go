package matching

import "github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"

// Strategy scores how well a job fits a viewer. viewerID is nil for
// anonymous requests.
type Strategy interface {
	Score(job *domain.Job, viewerID *int64) int
	Factors(job *domain.Job, viewerID *int64) []domain.MatchFactor
}

const (
	placeholderScore       = 75
	placeholderFactorScore = 0.8
)

// Placeholder returns fixed values until viewer profiles carry enough data
// for a real comparison.
type Placeholder struct{}

func (Placeholder) Score(job *domain.Job, viewerID *int64) int {
	if job == nil || viewerID == nil {
		return 0
	}
	return placeholderScore
}

func (Placeholder) Factors(job *domain.Job, viewerID *int64) []domain.MatchFactor {
	factors := make([]domain.MatchFactor, 0)
	if job == nil || viewerID == nil {
		return factors
	}

	keywords := Keywords(job.Skills)
	for _, k := range keywords {
		factors = append(factors, domain.MatchFactor{
			Label:  k,
			Weight: 1.0 / float64(len(keywords)),
			Score:  placeholderFactorScore,
		})
	}
	return factors
}
