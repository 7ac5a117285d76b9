package farol

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	JobsPath = "/jobs"

	JobIDField          = "ID"
	JobCompanyIDField   = "CompanyID"
	JobCompanyNameField = "CompanyName"
)

type Jobs struct {
	Items []*Job
}

type Job struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Requirements   string   `json:"requirements,omitempty"`
	Benefits       string   `json:"benefits,omitempty"`
	Location       string   `json:"location,omitempty"`
	RemoteWork     bool     `json:"remote_work"`
	SalaryMin      float64  `json:"salary_min,omitempty"`
	SalaryMax      float64  `json:"salary_max,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	CompanyID      int      `json:"company_id,omitempty"`
	IsActive       bool     `json:"is_active"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
	Company        *Company `json:"company,omitempty"`
	// Number of applications the posting received, when the API reports it.
	ApplicationCount int `json:"application_count,omitempty"`

	// AI is filled by the optional AI fit step; the API never sends it.
	AI *AIAssessment `json:"ai,omitempty"`
}

type Company struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
	Location    string `json:"location,omitempty"`
	IsInclusive bool   `json:"is_inclusive"`
}

type AIAssessment struct {
	Fit     bool    `json:"fit"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
	Raw     string  `json:"-"`
	Error   string  `json:"error,omitempty"`
}

// JobFilters are passed to /jobs as query parameters. Zero values are omitted.
type JobFilters struct {
	Title          string `param:"title" mapstructure:"title"`
	Location       string `param:"location" mapstructure:"location"`
	RemoteWork     *bool  `param:"remote_work" mapstructure:"remote_work"`
	EmploymentType string `param:"employment_type" mapstructure:"employment_type"`
	// Salary bounds are whole currency units; the API rejects fractions.
	SalaryMin int `param:"salary_min" mapstructure:"salary_min"`
	SalaryMax int `param:"salary_max" mapstructure:"salary_max"`
	CompanyID int `param:"company_id" mapstructure:"company_id"`
	// Limit caps the total number of jobs fetched across pages. It is not sent as is.
	Limit int `param:"-" mapstructure:"limit"`
}

// GetJobs walks every page of /jobs matching the filters.
func (c *Client) GetJobs(ctx context.Context, filters *JobFilters) (*Jobs, error) {
	if filters == nil {
		filters = &JobFilters{}
	}

	items, err := c.GetItems(ctx, c.endpoint(JobsPath), buildParams(filters), filters.Limit)
	if err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}

	jobs, err := decodeJobs(items)
	if err != nil {
		return nil, err
	}

	return &Jobs{Items: jobs}, nil
}

func (c *Client) GetJob(ctx context.Context, id int) (*Job, error) {
	var job Job
	if err := c.getJSON(ctx, c.endpoint(fmt.Sprintf("%s/%d", JobsPath, id)), nil, &job); err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}

	return &job, nil
}

func decodeJobs(items []Item) ([]*Job, error) {
	var jobs []*Job

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &jobs,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	return jobs, nil
}

func buildParams(filters *JobFilters) url.Values {
	q := url.Values{}
	value := reflect.ValueOf(filters).Elem()
	fields := reflect.VisibleFields(value.Type())

	for _, field := range fields {
		key := field.Tag.Get("param")
		if key == "" || key == "-" {
			continue
		}

		fv := value.FieldByIndex(field.Index)
		switch fv.Kind() {
		case reflect.Pointer:
			if fv.IsNil() {
				continue
			}
			q.Set(key, fmt.Sprintf("%v", fv.Elem().Interface()))
		default:
			s := fmt.Sprintf("%v", fv.Interface())
			if s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}

func (j *Job) CompanyName() string {
	if j.Company == nil {
		return ""
	}
	return j.Company.Name
}

func (j *Job) IsInclusive() bool {
	return j.Company != nil && j.Company.IsInclusive
}

func (j *Job) GetStringField(name string) string {
	switch name {
	case JobIDField:
		return strconv.Itoa(j.ID)
	case JobCompanyIDField:
		if j.Company != nil && j.Company.ID != 0 {
			return strconv.Itoa(j.Company.ID)
		}
		return strconv.Itoa(j.CompanyID)
	case JobCompanyNameField:
		return strings.ToLower(strings.TrimSpace(j.CompanyName()))
	default:
		return ""
	}
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id int) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

func (j *Jobs) IDs() []int {
	ids := make([]int, 0, len(j.Items))
	for _, job := range j.Items {
		ids = append(ids, job.ID)
	}
	return ids
}

// Exclude drops every job whose field equals one of targets and returns the
// dropped ids. Order of the remaining jobs is preserved.
func (j *Jobs) Exclude(name string, targets []string) []int {
	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if name == JobCompanyNameField {
			target = strings.ToLower(strings.TrimSpace(target))
		}
		if target == "" {
			continue
		}
		set[target] = struct{}{}
	}

	return j.excludeFunc(func(job *Job) bool {
		_, ok := set[job.GetStringField(name)]
		return ok
	})
}

// ExcludeInactive drops postings that are no longer open.
func (j *Jobs) ExcludeInactive() []int {
	return j.excludeFunc(func(job *Job) bool { return !job.IsActive })
}

// ExcludeNonInclusive drops postings whose company is not flagged inclusive.
func (j *Jobs) ExcludeNonInclusive() []int {
	return j.excludeFunc(func(job *Job) bool { return !job.IsInclusive() })
}

func (j *Jobs) excludeFunc(drop func(*Job) bool) []int {
	var excluded []int
	kept := j.Items[:0]
	for _, job := range j.Items {
		if drop(job) {
			excluded = append(excluded, job.ID)
			continue
		}
		kept = append(kept, job)
	}
	j.Items = kept
	return excluded
}
