package handler

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/auth"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

type jobRequest struct {
	Title               string     `json:"title" validate:"required,min=3,max=200"`
	Company             string     `json:"company" validate:"required,min=2,max=100"`
	Location            string     `json:"location" validate:"max=100"`
	JobType             string     `json:"jobType" validate:"required,oneof=FULL_TIME PART_TIME CONTRACT INTERNSHIP"`
	Status              string     `json:"status" validate:"required,oneof=ACTIVE INACTIVE CLOSED"`
	ExperienceLevel     string     `json:"experienceLevel" validate:"omitempty,oneof=ENTRY MID SENIOR EXECUTIVE"`
	Department          string     `json:"department" validate:"max=100"`
	Category            string     `json:"category" validate:"max=100"`
	Description         string     `json:"description" validate:"required,min=50,max=5000"`
	Requirements        string     `json:"requirements" validate:"max=5000"`
	Responsibilities    string     `json:"responsibilities" validate:"max=5000"`
	Benefits            string     `json:"benefits" validate:"max=3000"`
	SalaryMin           *float64   `json:"salaryMin" validate:"omitempty,gt=0"`
	SalaryMax           *float64   `json:"salaryMax" validate:"omitempty,gt=0"`
	SalaryCurrency      *string    `json:"salaryCurrency" validate:"omitempty,len=3,alpha,uppercase"`
	WorkMode            string     `json:"workMode" validate:"omitempty,oneof=REMOTE ONSITE HYBRID"`
	EducationLevel      string     `json:"educationLevel" validate:"omitempty,oneof=HIGH_SCHOOL BACHELOR MASTER PHD"`
	Skills              string     `json:"skills" validate:"max=500"`
	CompanyInfo         string     `json:"companyInfo" validate:"max=5000"`
	CompanyLogoURL      string     `json:"companyLogoUrl" validate:"max=500"`
	PostedBy            *int64     `json:"postedBy" validate:"required"`
	ApplicationDeadline *time.Time `json:"applicationDeadline" validate:"omitempty,gt"`
	StartDate           *time.Time `json:"startDate" validate:"omitempty,gt"`
}

func (req *jobRequest) toJob() *domain.Job {
	job := &domain.Job{
		Title:               req.Title,
		Company:             req.Company,
		Location:            req.Location,
		JobType:             domain.JobType(req.JobType),
		Status:              domain.JobStatus(req.Status),
		ExperienceLevel:     req.ExperienceLevel,
		Department:          req.Department,
		Category:            req.Category,
		Description:         req.Description,
		Requirements:        req.Requirements,
		Responsibilities:    req.Responsibilities,
		Benefits:            req.Benefits,
		SalaryMin:           req.SalaryMin,
		SalaryMax:           req.SalaryMax,
		SalaryCurrency:      req.SalaryCurrency,
		WorkMode:            req.WorkMode,
		EducationLevel:      req.EducationLevel,
		Skills:              req.Skills,
		CompanyInfo:         req.CompanyInfo,
		CompanyLogoURL:      req.CompanyLogoURL,
		ApplicationDeadline: req.ApplicationDeadline,
		StartDate:           req.StartDate,
	}
	if req.PostedBy != nil {
		job.PostedBy = *req.PostedBy
	}
	return job
}

// futureDateFields 只在创建时要求是未来时间，更新已有职位时不再检查
var futureDateFields = []string{"applicationDeadline", "startDate"}

func withoutFutureDateErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	remaining := make(validator.ValidationErrors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		if fe.Tag() == "gt" && slices.Contains(futureDateFields, fe.Field()) {
			continue
		}
		remaining = append(remaining, fe)
	}
	if len(remaining) == 0 {
		return nil
	}
	return remaining
}

func viewerID(r *http.Request) *int64 {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		return id.UserID
	}
	return nil
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.JobFilter{
		Company:  q.Get("company"),
		Location: q.Get("location"),
		JobType:  domain.JobType(q.Get("jobType")),
		Status:   domain.JobStatus(q.Get("status")),
	}
	if postedBy := q.Get("postedBy"); postedBy != "" {
		id, err := strconv.ParseInt(postedBy, 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "Invalid value '"+postedBy+"' for parameter 'postedBy'. Expected type: integer")
			return
		}
		filter.PostedBy = &id
	}

	jobs, err := h.service.ListJobs(r.Context(), filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, jobs)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.service.GetJob(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, job)
}

func (h *Handler) GetJobDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.service.JobDetail(r.Context(), id, viewerID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, detail)
}

func (h *Handler) GetSimilarJobs(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "Invalid value '"+l+"' for parameter 'limit'. Expected type: integer")
			return
		}
		limit = n
	}

	similar, err := h.service.SimilarJobs(r.Context(), id, limit)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, similar)
}

func (h *Handler) GetJobMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	match, err := h.service.JobMatch(r.Context(), id, viewerID(r))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, match)
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	actor, _ := auth.IdentityFrom(r.Context())
	job, err := h.service.CreateJob(r.Context(), actor, req.toJob())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, job)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req jobRequest
	if err := h.readJSON(r, &req); err != nil {
		h.malformedBody(w, r)
		return
	}
	if err := withoutFutureDateErrors(h.validate.Struct(req)); err != nil {
		h.validationFailed(w, r, err)
		return
	}

	actor, _ := auth.IdentityFrom(r.Context())
	job, err := h.service.UpdateJob(r.Context(), actor, id, req.toJob())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, job)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	actor, _ := auth.IdentityFrom(r.Context())
	if err := h.service.DeleteJob(r.Context(), actor, id); err != nil {
		h.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
