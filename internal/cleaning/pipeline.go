// =============================================================================
// Sales Aggregator - Cleaning Pipeline
// =============================================================================
//
// The pipeline applies cleaning steps in registration order, feeding the
// output of each step into the next. Order matters: duplicate removal sorts
// by date, so it must run after date normalization has parsed every date.
//
// USAGE:
//   p := cleaning.NewPipeline(logger).
//       Add(cleaning.NewNullRemoval("transaction_id", "date", "customer_id")).
//       Add(cleaning.NewDateNormalization("date")).
//       Add(cleaning.NewDuplicateRemoval("transaction_id"))
//
//   cleaned := p.Clean(records)
//
// =============================================================================

package cleaning

import (
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
)

// StepReport records the effect of one step.
type StepReport struct {
	Step    string
	RowsIn  int
	RowsOut int
	Removed int
}

// Pipeline is an ordered list of cleaning steps.
type Pipeline struct {
	steps  []Step
	logger *zap.Logger
}

// NewPipeline creates an empty pipeline. A nil logger disables logging.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		steps:  make([]Step, 0),
		logger: logger.With(zap.String("component", "cleaning")),
	}
}

// DefaultPipeline builds the standard step order from configuration:
// null removal, then date normalization, then duplicate removal.
func DefaultPipeline(cfg *config.MainConfig, logger *zap.Logger) *Pipeline {
	dates := NewDateNormalization(cfg.DateColumn, cfg.DateLayouts...)
	dates.Canonical = cfg.CanonicalDateLayout

	dupes := NewDuplicateRemoval(cfg.DuplicateKeys...)
	dupes.DateColumn = cfg.DateColumn
	dupes.Keep = cfg.DuplicateKeep

	return NewPipeline(logger).
		Add(NewNullRemoval(cfg.CriticalColumns...)).
		Add(dates).
		Add(dupes)
}

// Add appends a step to the pipeline.
func (p *Pipeline) Add(step Step) *Pipeline {
	p.steps = append(p.steps, step)
	return p
}

// Steps returns the step names in execution order.
func (p *Pipeline) Steps() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Clean runs every step over a copy of rs.
func (p *Pipeline) Clean(rs *types.RecordSet) *types.RecordSet {
	out, _ := p.CleanWithReport(rs)
	return out
}

// CleanWithReport runs every step over a copy of rs and reports how many
// rows each step removed.
func (p *Pipeline) CleanWithReport(rs *types.RecordSet) (*types.RecordSet, []StepReport) {
	current := rs.Clone()
	reports := make([]StepReport, 0, len(p.steps))

	for _, step := range p.steps {
		before := current.Len()
		current = step.Clean(current)
		after := current.Len()

		report := StepReport{
			Step:    step.Name(),
			RowsIn:  before,
			RowsOut: after,
			Removed: before - after,
		}
		reports = append(reports, report)

		p.logger.Info("Cleaning step applied",
			zap.String("step", report.Step),
			zap.Int("rows_in", report.RowsIn),
			zap.Int("rows_out", report.RowsOut),
			zap.Int("removed", report.Removed))
	}

	return current, reports
}
