package metrics

import (
	"context"
	"time"

	"github.com/policyops/policy-rag/internal/core/domain"
	"github.com/policyops/policy-rag/internal/core/ports"
)

// InstrumentedQueryService records pipeline metrics around the ask path
// without the core use case knowing about prometheus.
type InstrumentedQueryService struct {
	next     ports.QueryService
	pipeline *PipelineMetrics
}

func InstrumentQueryService(next ports.QueryService, pipeline *PipelineMetrics) *InstrumentedQueryService {
	return &InstrumentedQueryService{next: next, pipeline: pipeline}
}

func (s *InstrumentedQueryService) Ask(ctx context.Context, question, promptVersion string) (*domain.Answer, error) {
	start := time.Now()
	answer, err := s.next.Ask(ctx, question, promptVersion)
	s.pipeline.ObserveQuery(answer, time.Since(start), err)
	return answer, err
}
