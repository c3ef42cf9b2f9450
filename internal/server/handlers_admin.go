package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spigell/recruitai/internal/ai"
	"github.com/spigell/recruitai/internal/job"
	"github.com/spigell/recruitai/internal/summary"
	"go.uber.org/zap"
)

type unlockRequest struct {
	Secret string `json:"secret"`
}

type tierUsage struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) unlockAdmin(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	status := s.checkSecret(req.Secret)
	if status != http.StatusOK {
		s.logger.Warn("admin unlock rejected", zap.String("client", c.ClientIP()), zap.Int("status", status))
		s.abort(c, status, http.StatusText(status))
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) getJob(c *gin.Context) {
	c.JSON(http.StatusOK, s.currentJob().Draft())
}

func (s *Server) putJob(c *gin.Context) {
	var draft job.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		s.abort(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	cfg, err := job.New(draft)
	if err != nil {
		s.abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.setJob(cfg)
	s.logger.Info("job configuration updated", zap.String("company", cfg.CompanyName), zap.String("title", cfg.JobTitle))

	c.JSON(http.StatusOK, cfg.Draft())
}

func (s *Server) summarizeJob(c *gin.Context) {
	cfg := s.currentJob()

	text, err := s.deps.Summary.Generate(c.Request.Context(), cfg.JobDescription, summary.Additional(cfg), cfg.Language)
	if err != nil {
		s.fail(c, err, nil)
		return
	}

	if text != "" {
		s.setJob(cfg.WithSummary(text))
	}

	c.JSON(http.StatusOK, gin.H{"summary": text})
}

func (s *Server) quotaStatus(c *gin.Context) {
	state, err := s.deps.Quota.Usage(c.Request.Context())
	if err != nil {
		s.fail(c, err, nil)
		return
	}

	tiers := make(map[ai.Tier]tierUsage, len(ai.Tiers()))
	for _, tier := range ai.Tiers() {
		limit, err := s.deps.Quota.Limit(tier)
		if err != nil {
			s.fail(c, err, nil)
			return
		}
		used := state.Counts[tier]
		tiers[tier] = tierUsage{Limit: limit, Used: used, Remaining: max(limit-used, 0)}
	}

	c.JSON(http.StatusOK, gin.H{"date": state.Date, "tiers": tiers})
}

// publicJob is the candidate-facing job card.
func (s *Server) publicJob(c *gin.Context) {
	cfg := s.currentJob()
	c.JSON(http.StatusOK, gin.H{
		"companyName":    cfg.CompanyName,
		"companyLogoUrl": cfg.CompanyLogoURL,
		"jobTitle":       cfg.JobTitle,
		"jobSummary":     cfg.JobSummary,
		"salary":         cfg.Salary,
		"schedule":       cfg.Schedule,
		"experience":     cfg.Experience,
		"language":       cfg.Language,
		"officeLocation": cfg.OfficeLocation,
	})
}
