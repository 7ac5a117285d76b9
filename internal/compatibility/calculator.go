package compatibility

import (
	"math"
	"strings"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

// Neutral values used when an input is missing.
const (
	neutralSkills        = 50
	neutralLocation      = 75
	neutralAccessibility = 75
	neutralExperience    = 50
)

// Calculator scores jobs against candidate profiles. It is stateless and safe
// for concurrent use.
type Calculator struct {
	tables  *Tables
	weights Weights
}

func NewCalculator(tables *Tables) *Calculator {
	if tables == nil {
		tables = DefaultTables()
	}

	return &Calculator{tables: tables, weights: DefaultWeights}
}

func (c *Calculator) Tables() *Tables {
	return c.tables
}

// Calculate never fails: missing data degrades each factor to a neutral value.
// A nil profile is scored as DefaultProfile.
func (c *Calculator) Calculate(profile *farol.Profile, job *farol.Job) Score {
	if profile == nil {
		profile = DefaultProfile()
	}
	if job == nil {
		job = &farol.Job{}
	}

	in := newInputs(profile, job)

	factors := Factors{
		Skills:        c.skills(in),
		Location:      c.location(in),
		Accessibility: c.accessibility(in),
		Experience:    c.experience(in),
		Preferences:   c.preferences(in),
	}

	return Score{
		JobID:   job.ID,
		Score:   c.weights.Combine(factors),
		Factors: factors,
		Details: c.details(in, factors),
	}
}

// inputs holds the lowercased texts each factor reads.
type inputs struct {
	profile *farol.Profile
	job     *farol.Job

	// title + description + requirements
	jobSkillsText string
	// title + description
	jobLevelText string
	// description + requirements + benefits
	jobInclusionText string
	profileText      string
}

func newInputs(profile *farol.Profile, job *farol.Job) inputs {
	return inputs{
		profile:          profile,
		job:              job,
		jobSkillsText:    lowerJoin(job.Title, job.Description, job.Requirements),
		jobLevelText:     lowerJoin(job.Title, job.Description),
		jobInclusionText: lowerJoin(job.Description, job.Requirements, job.Benefits),
		profileText:      strings.ToLower(profile.ExperienceSummary),
	}
}

func (c *Calculator) skills(in inputs) int {
	if in.profile.ExperienceSummary == "" {
		return neutralSkills
	}

	matched, missing := c.matchCategories(in.jobSkillsText, in.profileText)
	total := len(matched) + len(missing)
	if total == 0 {
		return neutralSkills
	}

	return int(math.Round(float64(100*len(matched)) / float64(total)))
}

// matchCategories splits the categories present in the job text into those
// the profile also mentions and those it does not, in table order.
func (c *Calculator) matchCategories(jobText, profileText string) (matched, missing []string) {
	matched = []string{}
	missing = []string{}

	for _, category := range c.tables.Skills {
		if !containsAny(jobText, category.Keywords) {
			continue
		}
		if containsAny(profileText, category.Keywords) {
			matched = append(matched, category.Name)
		} else {
			missing = append(missing, category.Name)
		}
	}

	return matched, missing
}

func (c *Calculator) location(in inputs) int {
	if in.profile.Location == "" || in.job.Location == "" {
		return neutralLocation
	}

	profileLocation := strings.ToLower(in.profile.Location)
	jobLocation := strings.ToLower(in.job.Location)

	// Same city: either side contains the other's first comma segment.
	if strings.Contains(profileLocation, firstSegment(jobLocation)) ||
		strings.Contains(jobLocation, firstSegment(profileLocation)) {
		return 100
	}

	profileState := lastSegment(profileLocation)
	jobState := lastSegment(jobLocation)
	if profileState != "" && jobState != "" && profileState == jobState {
		return 80
	}

	if in.job.RemoteWork {
		return 90
	}

	return 30
}

func (c *Calculator) accessibility(in inputs) int {
	if !in.profile.HasDisability {
		return neutralAccessibility
	}

	if in.job.IsInclusive() {
		return 100
	}

	if containsAny(in.jobInclusionText, c.tables.Accessibility) {
		return 85
	}

	return 40
}

func (c *Calculator) experience(in inputs) int {
	if in.profile.ExperienceSummary == "" {
		return neutralExperience
	}

	return levelFit(c.level(in.jobLevelText), c.level(in.profileText))
}

// level classifies text: junior phrases win over senior ones, anything else is pleno.
func (c *Calculator) level(text string) Level {
	switch {
	case containsAny(text, c.tables.Experience.Junior):
		return LevelJunior
	case containsAny(text, c.tables.Experience.Senior):
		return LevelSenior
	default:
		return LevelPleno
	}
}

// levelFit scores a job level against a candidate level. The table is not
// symmetric: junior job/pleno candidate is 80, pleno job/junior candidate is 60.
func levelFit(job, candidate Level) int {
	switch {
	case job == candidate:
		return 100
	case job == LevelPleno && candidate == LevelSenior:
		return 90
	case job == LevelJunior && candidate == LevelPleno:
		return 80
	case job == LevelSenior && candidate == LevelPleno:
		return 70
	case job == LevelPleno && candidate == LevelJunior:
		return 60
	default:
		return 50
	}
}

func (c *Calculator) preferences(in inputs) int {
	if in.job.RemoteWork {
		return 90
	}
	return 70
}

func (c *Calculator) details(in inputs, factors Factors) Details {
	matched, missing := c.matchCategories(in.jobSkillsText, in.profileText)

	return Details{
		SkillsMatch:          matched,
		SkillsMissing:        missing,
		LocationMatch:        factors.Location > 70,
		AccessibilitySupport: in.job.IsInclusive(),
		ExperienceLevel:      c.level(in.jobSkillsText),
		RemoteWorkMatch:      in.job.RemoteWork,
	}
}

func lowerJoin(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

func firstSegment(location string) string {
	segment, _, _ := strings.Cut(location, ",")
	return segment
}

func lastSegment(location string) string {
	idx := strings.LastIndex(location, ",")
	return strings.TrimSpace(location[idx+1:])
}
