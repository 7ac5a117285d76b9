package compatibility

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

func scored(id, score int) *JobWithCompatibility {
	return &JobWithCompatibility{
		Job:           &farol.Job{ID: id},
		Compatibility: &Score{JobID: id, Score: score},
	}
}

func ids(jobs []*JobWithCompatibility) []int {
	out := make([]int, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, job.ID)
	}
	return out
}

func TestNewServiceStartsWithDefaultProfile(t *testing.T) {
	svc := NewService(nil, nil)

	assert.True(t, svc.UsesDefaultProfile())
	assert.Equal(t, DefaultProfile(), svc.Profile())
}

func TestUpdateProfileKeepsCopy(t *testing.T) {
	svc := NewService(nil, zap.NewNop())
	profile := &farol.Profile{ID: 5, Location: "Recife, PE", ExperienceSummary: "dev sênior"}

	svc.UpdateProfile(profile)
	profile.Location = "Manaus, AM"

	assert.False(t, svc.UsesDefaultProfile())
	assert.Equal(t, "Recife, PE", svc.Profile().Location)

	returned := svc.Profile()
	returned.Location = "Belém, PA"
	assert.Equal(t, "Recife, PE", svc.Profile().Location)

	svc.UpdateProfile(nil)
	assert.True(t, svc.UsesDefaultProfile())
	assert.Equal(t, "São Paulo, SP", svc.Profile().Location)
}

func TestCalculateJobMatchesCalculator(t *testing.T) {
	calc := NewCalculator(nil)
	svc := NewService(calc, nil)
	job := frontendJob(true)

	assert.Equal(t, calc.Calculate(nil, job), svc.CalculateJob(job))

	profile := &farol.Profile{HasDisability: true, ExperienceSummary: "React júnior"}
	svc.UpdateProfile(profile)
	assert.Equal(t, calc.Calculate(profile, job), svc.CalculateJob(job))
}

func TestCalculateJobsPreservesOrder(t *testing.T) {
	svc := NewService(nil, nil)
	jobs := []*farol.Job{
		{ID: 3, Title: "Frontend"},
		{ID: 1, Title: "Python backend", Location: "São Paulo, SP"},
		{ID: 2, Title: "Designer Figma"},
	}

	result := svc.CalculateJobs(jobs)

	require.Len(t, result, 3)
	assert.Equal(t, []int{3, 1, 2}, ids(result))
	for i, job := range result {
		assert.Same(t, jobs[i], job.Job)
		require.NotNil(t, job.Compatibility)
		assert.Equal(t, job.ID, job.Compatibility.JobID)
	}

	assert.Empty(t, svc.CalculateJobs(nil))
	assert.NotNil(t, svc.CalculateJobs(nil))
}

func TestSortJobs(t *testing.T) {
	svc := NewService(nil, nil)
	jobs := []*JobWithCompatibility{
		scored(1, 40),
		scored(2, 90),
		{Job: &farol.Job{ID: 3}},
		scored(4, 90),
		scored(5, 0),
	}

	sorted := svc.SortJobs(jobs)

	assert.Equal(t, []int{2, 4, 1, 3, 5}, ids(sorted))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(jobs), "input must not be reordered")
	assert.Equal(t, ids(sorted), ids(svc.SortJobs(sorted)))

	empty := svc.SortJobs(nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestFilterJobs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	svc := NewService(nil, zap.New(core))

	jobs := []*JobWithCompatibility{
		scored(1, 40),
		scored(2, 90),
		{Job: &farol.Job{ID: 3}},
		scored(4, 60),
	}

	assert.Equal(t, []int{1, 2, 3, 4}, ids(svc.FilterJobs(jobs, 0)))
	assert.Equal(t, []int{2, 4}, ids(svc.FilterJobs(jobs, 60)))
	assert.Empty(t, svc.FilterJobs(jobs, 101))
	assert.NotNil(t, svc.FilterJobs(nil, 50))

	entries := logs.FilterMessage("jobs below minimum compatibility dropped").All()
	require.Len(t, entries, 2)
	assert.EqualValues(t, 2, entries[0].ContextMap()["dropped"])
	assert.EqualValues(t, 4, entries[1].ContextMap()["dropped"])
}

func TestServiceConcurrentUpdates(t *testing.T) {
	svc := NewService(nil, nil)
	jobs := []*farol.Job{frontendJob(true), frontendJob(false)}

	profiles := []*farol.Profile{
		nil,
		{HasDisability: true, ExperienceSummary: "React"},
		{Location: "Recife, PE", ExperienceSummary: "Python sênior"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			svc.UpdateProfile(profiles[i%len(profiles)])
		}(i)
		go func() {
			defer wg.Done()
			result := svc.CalculateJobs(jobs)
			assert.Len(t, result, len(jobs))
		}()
	}
	wg.Wait()
}
