package farol

import (
	"context"
	"fmt"
)

const myApplicationsPath = JobsPath + "/my-applications"

type Applications []*Application

type Application struct {
	ID          int    `json:"id"`
	CandidateID int    `json:"candidate_id"`
	JobID       int    `json:"job_id"`
	Status      string `json:"status"`
	CoverLetter string `json:"cover_letter,omitempty"`
	ResumeURL   string `json:"resume_url,omitempty"`
	AppliedAt   string `json:"applied_at"`
	Job         *Job   `json:"job,omitempty"`
}

type ApplicationCreate struct {
	CoverLetter string `json:"cover_letter,omitempty"`
	ResumeURL   string `json:"resume_url,omitempty"`
}

type applicationsResponse struct {
	Applications Applications `json:"applications"`
}

// GetMyApplications lists the applications of the authenticated candidate.
func (c *Client) GetMyApplications(ctx context.Context) (Applications, error) {
	var response applicationsResponse
	if err := c.getJSON(ctx, c.endpoint(myApplicationsPath), nil, &response); err != nil {
		return nil, fmt.Errorf("get my applications: %w", err)
	}

	return response.Applications, nil
}

func (a Applications) JobIDs() []int {
	ids := make([]int, 0, len(a))
	for _, application := range a {
		ids = append(ids, application.JobID)
	}
	return ids
}

// ApplyToJob submits an application for the job.
func (c *Client) ApplyToJob(ctx context.Context, jobID int, application ApplicationCreate) error {
	endpoint := c.endpoint(fmt.Sprintf("%s/%d/apply", JobsPath, jobID))
	if err := c.postJSON(ctx, endpoint, application, nil); err != nil {
		return fmt.Errorf("apply to job %d: %w", jobID, err)
	}

	return nil
}

// Apply submits the same application to every job in the list, stopping at the first failure.
func (c *Client) Apply(ctx context.Context, jobs *Jobs, application ApplicationCreate) error {
	for _, job := range jobs.Items {
		if err := c.ApplyToJob(ctx, job.ID, application); err != nil {
			return err
		}
	}

	return nil
}
