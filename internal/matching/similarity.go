package matching

import (
	"sort"
	"strings"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

const (
	categoryPoints = 40
	jobTypePoints  = 30
	skillsPoints   = 30

	// NeutralScore 是两个职位没有任何可比较字段时的相似度
	NeutralScore = 50
)

// Similarity rates how alike candidate is to anchor on a 0..100 scale.
//
// A factor only counts when both jobs carry it. The skills factor is the share
// of the anchor's skills found in the candidate, so Similarity(a, b) and
// Similarity(b, a) differ whenever the skill lists have different lengths.
func Similarity(anchor, candidate *domain.Job) int {
	if anchor == nil || candidate == nil {
		return 0
	}

	score := 0
	factors := 0

	if anchor.Category != "" && candidate.Category != "" {
		factors++
		if strings.EqualFold(anchor.Category, candidate.Category) {
			score += categoryPoints
		}
	}

	if anchor.JobType != "" && candidate.JobType != "" {
		factors++
		if anchor.JobType == candidate.JobType {
			score += jobTypePoints
		}
	}

	if strings.TrimSpace(anchor.Skills) != "" && strings.TrimSpace(candidate.Skills) != "" {
		factors++
		// 分母是 anchor 的原始关键词个数，重复的关键词各算一次
		anchorSkills := Keywords(anchor.Skills)
		candidateSkills := skillSet(candidate.Skills)

		common := 0
		for _, skill := range anchorSkills {
			if _, ok := candidateSkills[strings.ToLower(skill)]; ok {
				common++
			}
		}
		if len(anchorSkills) > 0 {
			score += int(float64(common) / float64(len(anchorSkills)) * skillsPoints)
		}
	}

	if factors == 0 {
		return NeutralScore
	}
	return min(100, score)
}

// Rank orders corpus the way the similar-jobs query does: active jobs other
// than the anchor, same category first, then same job type, then newest.
// The result is truncated to limit.
func Rank(anchor *domain.Job, corpus []*domain.Job, limit int) []*domain.Job {
	if anchor == nil || limit <= 0 {
		return []*domain.Job{}
	}

	ranked := make([]*domain.Job, 0, len(corpus))
	for _, job := range corpus {
		if job.ID == anchor.ID || job.Status != domain.JobStatusActive {
			continue
		}
		ranked = append(ranked, job)
	}

	tier := func(job *domain.Job) int {
		t := 0
		if anchor.Category != "" && strings.EqualFold(job.Category, anchor.Category) {
			t += 2
		}
		if anchor.JobType != "" && job.JobType == anchor.JobType {
			t++
		}
		return t
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := tier(ranked[i]), tier(ranked[j])
		if ti != tj {
			return ti > tj
		}
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		}
		return ranked[i].ID > ranked[j].ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
