package compatibility

import "github.com/farol-inclusivo/farol-matcher/internal/farol"

// Level is the seniority bucket used by the experience factor.
type Level string

const (
	LevelJunior Level = "junior"
	LevelPleno  Level = "pleno"
	LevelSenior Level = "senior"
)

// Score is the compatibility of one job with one candidate.
type Score struct {
	JobID   int     `json:"jobId"`
	Score   int     `json:"score"`
	Factors Factors `json:"factors"`
	Details Details `json:"details"`
}

// Factors are the five sub-scores, each in [0,100].
type Factors struct {
	Skills        int `json:"skills"`
	Location      int `json:"location"`
	Accessibility int `json:"accessibility"`
	Experience    int `json:"experience"`
	Preferences   int `json:"preferences"`
}

type Details struct {
	SkillsMatch          []string `json:"skillsMatch"`
	SkillsMissing        []string `json:"skillsMissing"`
	LocationMatch        bool     `json:"locationMatch"`
	AccessibilitySupport bool     `json:"accessibilitySupport"`
	ExperienceLevel      Level    `json:"experienceLevel"`
	RemoteWorkMatch      bool     `json:"remoteWorkMatch"`
}

// Weights of each factor in percentage points. They sum to 100.
type Weights struct {
	Skills        int
	Location      int
	Accessibility int
	Experience    int
	Preferences   int
}

var DefaultWeights = Weights{
	Skills:        35,
	Location:      15,
	Accessibility: 25,
	Experience:    15,
	Preferences:   10,
}

// Combine returns the weighted score rounded half up and clamped to [0,100].
// Integer arithmetic keeps x.5 results from drifting with float error.
func (w Weights) Combine(f Factors) int {
	weighted := f.Skills*w.Skills +
		f.Location*w.Location +
		f.Accessibility*w.Accessibility +
		f.Experience*w.Experience +
		f.Preferences*w.Preferences

	return clamp((weighted + 50) / 100)
}

// JobWithCompatibility is a job decorated with its score.
type JobWithCompatibility struct {
	*farol.Job
	Compatibility *Score `json:"compatibility,omitempty"`
}

// ScoreValue returns the score, treating a missing one as 0.
func (j *JobWithCompatibility) ScoreValue() int {
	if j == nil || j.Compatibility == nil {
		return 0
	}
	return j.Compatibility.Score
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
