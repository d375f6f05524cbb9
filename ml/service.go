package ml

import (
	"context"
	"time"

	"github.com/oleamind/terroir/logging"
	"github.com/oleamind/terroir/predict"
)

// Config configures one Service instance.
type Config struct {
	APIURL         string
	APITimeout     time.Duration
	ABTrafficSplit float64
	ExperimentID   string
	ModelVersion   string
}

// Service implements predict.Enhancer: the full C8 serving path. Control
// always returns the formula prediction untouched. Treatment attempts an
// external model call when APIURL is configured, silently falling back to
// the formula prediction (with a logged fallback event) on any failure;
// when no external service is configured, treatment gets the heuristic
// enhancement instead.
type Service struct {
	cfg        Config
	client     *Client
	experiments *ExperimentAggregator
	log        *logging.Logger
	now        func() time.Time
}

var _ predict.Enhancer = (*Service)(nil)

// NewService builds a Service. now defaults to time.Now; tests may override
// it for deterministic feature extraction.
func NewService(cfg Config, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	var client *Client
	if cfg.APIURL != "" {
		client = NewClient(cfg.APIURL, cfg.APITimeout)
	}
	return &Service{
		cfg:         cfg,
		client:      client,
		experiments: NewExperimentAggregator(),
		log:         log,
		now:         time.Now,
	}
}

// Enhance implements predict.Enhancer.
func (s *Service) Enhance(ctx context.Context, in predict.Input, raw predict.Result) (predict.Result, error) {
	group := Assign(in.UserID, s.cfg.ExperimentID, s.cfg.ABTrafficSplit)
	assignment := Assignment{UserID: in.UserID, ExperimentID: s.cfg.ExperimentID, Group: group, ModelVersion: s.cfg.ModelVersion}

	if group == GroupControl {
		s.experiments.Record(assignment, raw.Primary.Value)
		return raw, nil
	}

	var enhanced predict.Result
	if s.client != nil {
		features := ExtractFeatures(in, raw, s.now())
		resp, err := s.client.Predict(ctx, ModelRequest{Features: features[:], FeatureNames: FeatureNames[:]})
		if err != nil {
			s.log.Warn("ml: external model call failed, falling back to formula prediction")
			enhanced = raw
		} else {
			enhanced = raw
			enhanced.Primary.Value = resp.PredictedValue
			enhanced.Confidence = clampConfidence(resp.Confidence)
			enhanced.Info.PredictorVersion = raw.Info.PredictorVersion + "+ml:" + s.cfg.ModelVersion
		}
	} else {
		enhanced = ApplyHeuristic(in, raw)
	}

	s.experiments.Record(assignment, enhanced.Primary.Value)
	return enhanced, nil
}

// Experiments exposes the aggregator so a caller can pull A/B evidence.
func (s *Service) Experiments() *ExperimentAggregator { return s.experiments }

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
