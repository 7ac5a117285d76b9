package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/farol-inclusivo/farol-matcher/internal/compatibility"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
	"github.com/farol-inclusivo/farol-matcher/internal/filtering"
)

const (
	profileSourceAPI     = "api"
	profileSourceDefault = "default"
)

type scoreRequest struct {
	Profile *farol.Profile `json:"profile"`
	Job     *farol.Job     `json:"job" binding:"required"`
}

type scoreResponse struct {
	compatibility.Score
	Band  compatibility.Band `json:"band"`
	Label string             `json:"label"`
}

type batchRequest struct {
	Profile  *farol.Profile `json:"profile"`
	Jobs     []*farol.Job   `json:"jobs" binding:"required,dive,required"`
	MinScore *int           `json:"min_score" binding:"omitempty,min=0,max=100"`
	Sort     bool           `json:"sort"`
}

type jobsResponse struct {
	ProfileSource string                                `json:"profile_source"`
	Count         int                                   `json:"count"`
	Jobs          []*compatibility.JobWithCompatibility `json:"jobs"`
}

type matchesQuery struct {
	MinScore       int    `form:"min_score" binding:"min=0,max=100"`
	Limit          int    `form:"limit" binding:"min=0"`
	Title          string `form:"title"`
	Location       string `form:"location"`
	RemoteWork     *bool  `form:"remote_work"`
	EmploymentType string `form:"employment_type"`
	SalaryMin      int    `form:"salary_min" binding:"min=0"`
}

func newScoreResponse(score compatibility.Score) scoreResponse {
	band := compatibility.BandFor(score.Score)
	return scoreResponse{Score: score, Band: band, Label: band.Label()}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) service(profile *farol.Profile) (*compatibility.Service, string) {
	svc := compatibility.NewService(s.calculator, s.logger)
	svc.UpdateProfile(profile)

	if svc.UsesDefaultProfile() {
		return svc, profileSourceDefault
	}
	return svc, profileSourceAPI
}

func (s *Server) scoreJob(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, _ := s.service(req.Profile)
	c.JSON(http.StatusOK, newScoreResponse(svc.CalculateJob(req.Job)))
}

func (s *Server) scoreBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, source := s.service(req.Profile)

	scored := svc.CalculateJobs(req.Jobs)
	if req.MinScore != nil {
		scored = svc.FilterJobs(scored, *req.MinScore)
	}
	if req.Sort {
		scored = svc.SortJobs(scored)
	}

	c.JSON(http.StatusOK, jobsResponse{ProfileSource: source, Count: len(scored), Jobs: scored})
}

// matches scores the open jobs of the Farol API for the caller, using their
// bearer token for both the profile and the job list.
func (s *Server) matches(c *gin.Context) {
	if s.upstream == nil {
		abortWithError(c, http.StatusServiceUnavailable, codeUnavailable, "farol api is not configured", nil)
		return
	}

	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "bearer token is required", nil)
		return
	}

	var query matchesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.UpstreamTimeout)
	defer cancel()

	client := s.upstream.WithToken(token)
	log := s.logger.With(zap.String("request_id", c.GetString(ctxRequestID)))

	var (
		profile *farol.Profile
		jobs    *farol.Jobs
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := client.GetMyProfile(gctx)
		if errors.Is(err, farol.ErrNotFound) || errors.Is(err, farol.ErrForbidden) {
			log.Info("no candidate profile, scoring against the default persona", zap.Error(err))
			return nil
		}
		profile = p
		return err
	})
	g.Go(func() error {
		j, err := client.GetJobs(gctx, &farol.JobFilters{
			Title:          query.Title,
			Location:       query.Location,
			RemoteWork:     query.RemoteWork,
			EmploymentType: query.EmploymentType,
			SalaryMin:      query.SalaryMin,
		})
		jobs = j
		return err
	})

	if err := g.Wait(); err != nil {
		log.Warn("farol api request failed", zap.Error(err))
		upstreamError(c, err)
		return
	}

	jobs, err := filtering.New([]filtering.Filter{filtering.NewInactive(log)}, log).RunFilters(ctx, jobs)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, codeInternal, err.Error(), nil)
		return
	}

	svc, source := s.service(profile)
	scored := svc.SortJobs(svc.FilterJobs(svc.CalculateJobs(jobs.Items), query.MinScore))
	if query.Limit > 0 && len(scored) > query.Limit {
		scored = scored[:query.Limit]
	}

	c.JSON(http.StatusOK, jobsResponse{ProfileSource: source, Count: len(scored), Jobs: scored})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
