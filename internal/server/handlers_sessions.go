package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spigell/recruitai/internal/failure"
	"github.com/spigell/recruitai/internal/interview"
	"github.com/spigell/recruitai/internal/locale"
	"github.com/spigell/recruitai/internal/report"
	"go.uber.org/zap"
)

type sessionView struct {
	ID    string           `json:"id"`
	State interview.State  `json:"state"`
	Turns []interview.Turn `json:"turns"`
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

type reportView struct {
	*report.Report
	Level               int    `json:"level"`
	LevelLabel          string `json:"levelLabel"`
	RecommendationLabel string `json:"recommendationLabel"`
	Degraded            bool   `json:"degraded"`
}

func viewOf(o *interview.Orchestrator) sessionView {
	return sessionView{ID: o.ID(), State: o.State(), Turns: o.Turns()}
}

func (s *Server) createSession(c *gin.Context) {
	o, err := interview.New(s.currentJob(), interview.Deps{
		Chat:     s.deps.Chat,
		Quota:    s.deps.Quota,
		Location: s.deps.Location,
		Logger:   s.logger,
		Now:      s.now,
	})
	if err != nil {
		s.fail(c, failure.Initialization("create session", err), nil)
		return
	}

	if _, err := o.Initialize(c.Request.Context()); err != nil {
		s.fail(c, err, nil)
		return
	}

	s.sessions.add(o)
	c.JSON(http.StatusCreated, viewOf(o))
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.sessions.get(c.Param("id"))
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess.orch))
}

func (s *Server) sendMessage(c *gin.Context) {
	sess, err := s.sessions.get(c.Param("id"))
	if err != nil {
		s.fail(c, err, nil)
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, interview.ErrEmptyMessage, nil)
		return
	}

	reply, err := sess.orch.SendCandidateMessage(c.Request.Context(), req.Text)
	if err != nil {
		extra := gin.H{}
		if reply.Interviewer != nil {
			extra["turn"] = reply.Interviewer
			extra["turns"] = sess.orch.Turns()
		}
		s.fail(c, err, extra)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidate": reply.Candidate,
		"turn":      reply.Interviewer,
		"completed": reply.Completed,
		"turns":     sess.orch.Turns(),
	})
}

func (s *Server) generateReport(c *gin.Context) {
	sess, err := s.sessions.get(c.Param("id"))
	if err != nil {
		s.fail(c, err, nil)
		return
	}
	if sess.orch.State() != interview.StateCompleted {
		s.fail(c, errNotCompleted, nil)
		return
	}

	cfg := sess.orch.Config()
	rep, err := s.deps.Reports.Generate(c.Request.Context(), cfg, sess.orch.Turns())
	if err != nil {
		s.fail(c, err, gin.H{"message": locale.For(cfg.Language).QuotaReport})
		return
	}
	if rep.Degraded() {
		s.logger.Warn("serving degraded report", zap.String("session_id", sess.orch.ID()), zap.Error(rep.Failure))
	}

	sess.setReport(rep)

	text := locale.For(cfg.Language)
	level := report.Level(rep.Score)
	label, ok := text.Recommendations[string(rep.Recommendation)]
	if !ok {
		label = string(rep.Recommendation)
	}

	c.JSON(http.StatusOK, reportView{
		Report:              rep,
		Level:               level,
		LevelLabel:          text.Levels[level],
		RecommendationLabel: label,
		Degraded:            rep.Degraded(),
	})
}

func (s *Server) exportReport(c *gin.Context) {
	sess, err := s.sessions.get(c.Param("id"))
	if err != nil {
		s.fail(c, err, nil)
		return
	}

	rep := sess.lastReport()
	if rep == nil {
		s.fail(c, errNoReport, nil)
		return
	}

	cfg := sess.orch.Config()
	now := s.now()

	var buf bytes.Buffer
	if err := report.Export(&buf, cfg, rep, sess.orch.Turns(), now); err != nil {
		s.fail(c, err, nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(cfg.JobTitle, now)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
