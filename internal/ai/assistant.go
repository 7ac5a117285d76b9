package ai

import (
	"context"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

type FitAssessment struct {
	Fit     bool
	Score   float64
	Reason  string
	Message string
	Raw     string
}

// Matcher judges whether a job suits a candidate and drafts a cover letter.
type Matcher interface {
	Evaluate(ctx context.Context, profile *farol.Profile, job *farol.Job) (*FitAssessment, error)
}

// Annotation converts the assessment into the form stored on a job.
func (a *FitAssessment) Annotation() *farol.AIAssessment {
	if a == nil {
		return nil
	}

	return &farol.AIAssessment{
		Fit:     a.Fit,
		Score:   a.Score,
		Reason:  a.Reason,
		Message: a.Message,
		Raw:     a.Raw,
	}
}

// Failure records an evaluation error on a job so it stays visible in reports.
func Failure(err error) *farol.AIAssessment {
	if err == nil {
		return nil
	}
	return &farol.AIAssessment{Error: err.Error()}
}
