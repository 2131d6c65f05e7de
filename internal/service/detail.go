package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/matching"
)

const (
	DefaultSimilarLimit = 5
	MaxSimilarLimit     = 50
)

// SimilarJobs 返回与指定职位最相似的在招职位
func (s *Service) SimilarJobs(ctx context.Context, id int64, limit int) ([]domain.SimilarJob, error) {
	anchor, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.similarTo(ctx, anchor, limit)
}

func (s *Service) similarTo(ctx context.Context, anchor *domain.Job, limit int) ([]domain.SimilarJob, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	limit = min(limit, MaxSimilarLimit)

	candidates, err := s.store.FindSimilarJobs(ctx, anchor, limit)
	if err != nil {
		return nil, err
	}

	similar := make([]domain.SimilarJob, 0, len(candidates))
	for _, c := range candidates {
		similar = append(similar, domain.SimilarJob{
			ID:      strconv.FormatInt(c.ID, 10),
			Title:   c.Title,
			Company: c.Company,
			Match:   matching.Similarity(anchor, c),
		})
	}
	return similar, nil
}

// JobMatch 计算职位与浏览者的匹配度，viewerID 为 nil 时分数为 0
func (s *Service) JobMatch(ctx context.Context, id int64, viewerID *int64) (*domain.JobMatch, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.JobMatch{
		JobID:        job.ID,
		MatchScore:   s.matcher.Score(job, viewerID),
		MatchFactors: s.matcher.Factors(job, viewerID),
	}, nil
}

// JobDetail 组装职位详情页需要的全部数据
func (s *Service) JobDetail(ctx context.Context, id int64, viewerID *int64) (*domain.JobDetail, error) {
	job, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	similar, err := s.similarTo(ctx, job, DefaultSimilarLimit)
	if err != nil {
		return nil, err
	}

	return &domain.JobDetail{
		ID:   strconv.FormatInt(job.ID, 10),
		Role: job.Title,
		Company: domain.Company{
			Name:    job.Company,
			LogoURL: job.CompanyLogoURL,
		},
		Location:     job.Location,
		Compensation: FormatCompensation(job.SalaryMin, job.SalaryMax, job.SalaryCurrency),
		Type:         FormatJobType(job.JobType),
		PostedAt:     FormatPostedAt(job.CreatedAt, s.now()),
		Keywords:     matching.Keywords(job.Skills),
		Description:  job.Description,
		Requirements: RequirementLines(job.Requirements),
		CompanyInfo:  job.CompanyInfo,
		SimilarJobs:  similar,
		MatchScore:   s.matcher.Score(job, viewerID),
		MatchFactors: s.matcher.Factors(job, viewerID),
		Saved:        false,
	}, nil
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"CNY": "¥",
	"JPY": "¥",
	"INR": "₹",
}

func formatAmount(v float64) string {
	if v >= 1000 {
		k := v / 1000
		if k == float64(int64(k)) {
			return fmt.Sprintf("%dk", int64(k))
		}
		return strconv.FormatFloat(k, 'f', 1, 64) + "k"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatCompensation 把薪资区间格式化为 "$150k-$190k" 这样的字符串
func FormatCompensation(salaryMin, salaryMax *float64, currency *string) string {
	if salaryMin == nil && salaryMax == nil {
		return "Not specified"
	}

	prefix, suffix := "", ""
	if currency != nil {
		if symbol, ok := currencySymbols[*currency]; ok {
			prefix = symbol
		} else if *currency != "" {
			suffix = " " + *currency
		}
	}

	switch {
	case salaryMin != nil && salaryMax != nil:
		return prefix + formatAmount(*salaryMin) + "-" + prefix + formatAmount(*salaryMax) + suffix
	case salaryMin != nil:
		return "From " + prefix + formatAmount(*salaryMin) + suffix
	default:
		return "Up to " + prefix + formatAmount(*salaryMax) + suffix
	}
}

var jobTypeLabels = map[domain.JobType]string{
	domain.JobTypeFullTime:   "Full-time",
	domain.JobTypePartTime:   "Part-time",
	domain.JobTypeContract:   "Contract",
	domain.JobTypeInternship: "Internship",
}

func FormatJobType(t domain.JobType) string {
	if label, ok := jobTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatPostedAt 返回相对时间，例如 "3 days ago"
func FormatPostedAt(postedAt, now time.Time) string {
	d := now.Sub(postedAt)
	days := int(d.Hours() / 24)

	switch {
	case d < time.Hour:
		return "Just now"
	case days < 1:
		return plural(int(d.Hours()), "hour")
	case days < 7:
		return plural(days, "day")
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

// RequirementLines 按行拆分职位要求，去掉列表符号和空行
func RequirementLines(requirements string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(requirements, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•·")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
