package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/heart-failure-risk-portal/internal/domain"
	"github.com/heart-failure-risk-portal/internal/form"
	"github.com/heart-failure-risk-portal/internal/middleware"
	"github.com/heart-failure-risk-portal/internal/service"
)

// maxBodyBytes bounds submissions; twelve numbers fit comfortably
const maxBodyBytes = 16 << 10

// assessResponse is the JSON rendering of one assessment
type assessResponse struct {
	Risk          domain.RiskLevel   `json:"risk"`
	Label         domain.Label       `json:"label"`
	Headline      string             `json:"headline"`
	Advice        string             `json:"advice"`
	Features      map[string]float64 `json:"features"`
	CorrelationID string             `json:"correlation_id"`
}

func newAssessResponse(a *service.Assessment) assessResponse {
	features := make(map[string]float64, domain.FeatureCount)
	for i, v := range a.Features {
		features[domain.Feature(i).String()] = v
	}
	return assessResponse{
		Risk:          a.Outcome.Risk,
		Label:         a.Outcome.Label,
		Headline:      a.Outcome.Headline,
		Advice:        a.Outcome.Advice,
		Features:      features,
		CorrelationID: a.CorrelationID,
	}
}

// handleIndex renders the form with its defaults
func (s *Server) handleIndex(c *gin.Context) {
	p := newPage(s.collector.Fields(), snapshotValues(s.collector.Defaults()))
	p.CorrelationID = c.GetString(middleware.CorrelationIDKey)
	c.HTML(http.StatusOK, "index.html", p)
}

// handleAssessForm handles a form submission and re-renders the page with
// the outcome or the reason no outcome could be produced
func (s *Server) handleAssessForm(c *gin.Context) {
	correlationID := c.GetString(middleware.CorrelationIDKey)
	specs := s.collector.Fields()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.Request.ParseForm(); err != nil {
		p := newPage(specs, snapshotValues(s.collector.Defaults()))
		p.Error = "The form submission could not be read."
		p.CorrelationID = correlationID
		c.HTML(http.StatusBadRequest, "index.html", p)
		return
	}

	snapshot, err := s.collector.Collect(c.Request.PostForm)
	if err != nil {
		p := newPage(specs, rawValues(c.Request.PostForm, s.collector.Defaults()))
		p.Error = validationMessage(specs, err)
		p.CorrelationID = correlationID
		c.HTML(http.StatusUnprocessableEntity, "index.html", p)
		return
	}

	p := newPage(specs, snapshotValues(snapshot))
	p.CorrelationID = correlationID

	assessment, err := s.inference.Assess(c.Request.Context(), snapshot)
	if err != nil {
		s.logTransformFailure(correlationID, err)
		p.Error = "The risk could not be computed. Please try again later."
		c.HTML(http.StatusInternalServerError, "index.html", p)
		return
	}

	p.Outcome = &assessment.Outcome
	c.HTML(http.StatusOK, "index.html", p)
}

// handleAssessJSON assesses a JSON snapshot. Omitted fields take their
// form defaults.
func (s *Server) handleAssessJSON(c *gin.Context) {
	correlationID := c.GetString(middleware.CorrelationIDKey)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(domain.CodeInvalidInput, "Request body could not be read", "", correlationID))
		return
	}

	snapshot := s.collector.Defaults()
	if err := form.DecodeJSON(body, &snapshot); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(domain.CodeInvalidInput, "Invalid JSON snapshot", err.Error(), correlationID))
		return
	}

	if err := s.collector.Check(snapshot); err != nil {
		c.JSON(http.StatusUnprocessableEntity, domain.NewAPIError(domain.CodeValidation, "Input validation failed", err.Error(), correlationID))
		return
	}

	assessment, err := s.inference.Assess(c.Request.Context(), snapshot)
	if err != nil {
		s.logTransformFailure(correlationID, err)
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(domain.CodeTransform, "Risk could not be computed", "", correlationID))
		return
	}

	c.JSON(http.StatusOK, newAssessResponse(assessment))
}

// handleFields returns the form schema
func (s *Server) handleFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields":        s.collector.Fields(),
		"feature_order": domain.FeatureNames(),
	})
}

func (s *Server) logTransformFailure(correlationID string, err error) {
	s.logger.WithFields(logrus.Fields{
		"correlation_id": correlationID,
		"error":          err.Error(),
	}).Error("Risk assessment failed")
}

func validationMessage(specs []domain.FieldSpec, err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		label := verr.Field
		for _, spec := range specs {
			if spec.Name == verr.Field {
				label = spec.Label
			}
		}
		return "Please check the form: " + label + " " + verr.Message + "."
	}
	return "Please check the form values."
}
