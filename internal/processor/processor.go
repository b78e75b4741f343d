// =============================================================================
// Sales Aggregator - Processing Orchestrator
// =============================================================================
//
// This module runs one end-to-end aggregation over all configured branch
// files. It owns no file-format or cleaning logic itself; every stage is an
// injected collaborator so tests can replace any of them.
//
// PROCESSING PIPELINE:
//   1. Validate that every input file exists
//   2. Load and concatenate the inputs, in input order
//   3. Validate the required columns
//   4. Clean the rows (null, date, duplicate removal)
//   5. Derive total_amount = quantity × price
//   6. Aggregate totals per branch
//   7. Persist the branch summary
//
// FAILURE MODEL:
//   Any error aborts the run before step 7, so a failed run never writes or
//   modifies the output file. Row-level problems are not errors; the cleaning
//   steps drop those rows and the counts appear in the result.
//
// =============================================================================

package processor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-aggregator/internal/calculator"
	"github.com/ginjaninja78/sales-aggregator/internal/cleaning"
	"github.com/ginjaninja78/sales-aggregator/internal/config"
	"github.com/ginjaninja78/sales-aggregator/internal/repository"
	"github.com/ginjaninja78/sales-aggregator/internal/types"
	"github.com/ginjaninja78/sales-aggregator/internal/validation"
	"github.com/ginjaninja78/sales-aggregator/pkg/utils"
)

// CombinedSource names the concatenated input in schema errors.
const CombinedSource = "combined input"

// =============================================================================
// COLLABORATORS
// =============================================================================

// Repository loads inputs and persists the summary.
type Repository interface {
	ReadMultiple(paths []string) (*types.RecordSet, error)
	WriteSummary(path string, summaries []types.BranchSummary) error
}

// Cleaner applies the cleaning steps.
type Cleaner interface {
	CleanWithReport(rs *types.RecordSet) (*types.RecordSet, []cleaning.StepReport)
}

// Calculator derives amounts and branch totals.
type Calculator interface {
	DeriveAmount(rs *types.RecordSet) (*types.RecordSet, error)
	AggregateByBranch(rs *types.RecordSet) []types.BranchSummary
}

// Validator performs the structural checks.
type Validator interface {
	ValidateFilesExist(paths []string) error
	ValidateColumns(rs *types.RecordSet, required []string, source string) error
}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a successful run.
type Result struct {
	// RunID identifies the run in logs and in the {run_id} placeholder.
	RunID string

	// InputFiles are the files that were loaded, in load order.
	InputFiles []string

	// OutputFile is the path the summary was written to, with placeholders
	// expanded.
	OutputFile string

	// Summary holds one entry per branch, sorted by branch.
	Summary []types.BranchSummary

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	// RowsLoaded is the number of rows read from all inputs.
	RowsLoaded int

	// RowsCleaned is the number of rows left after cleaning.
	RowsCleaned int

	// Branches is the number of distinct branches in the summary.
	Branches int

	// Steps reports the rows removed by each cleaning step.
	Steps []cleaning.StepReport

	// GrandTotal is the sum of all branch totals.
	GrandTotal decimal.Decimal

	// ProcessingTime is the wall time of the run.
	ProcessingTime time.Duration
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor runs the aggregation pipeline.
type Processor struct {
	cfg       *config.MainConfig
	repo      Repository
	cleaner   Cleaner
	calc      Calculator
	validator Validator
	logger    *zap.Logger

	now      func() time.Time
	newRunID func() string
}

// New creates a processor from explicit collaborators. A nil logger disables
// logging.
func New(cfg *config.MainConfig, repo Repository, cleaner Cleaner, calc Calculator, validator Validator, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		cfg:       cfg,
		repo:      repo,
		cleaner:   cleaner,
		calc:      calc,
		validator: validator,
		logger:    logger.With(zap.String("component", "processor")),
		now:       time.Now,
		newRunID:  func() string { return uuid.New().String() },
	}
}

// NewDefault wires the file repository, the default cleaning pipeline, the
// calculator and the validator from configuration.
func NewDefault(cfg *config.MainConfig, logger *zap.Logger) *Processor {
	return New(
		cfg,
		repository.NewFileRepository(cfg.CSVSettings, logger),
		cleaning.DefaultPipeline(cfg, logger),
		calculator.NewFromConfig(cfg),
		validation.NewValidator(logger),
		logger,
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Process executes the pipeline and returns the persisted summary.
func (p *Processor) Process() (*Result, error) {
	startTime := p.now()
	runID := p.newRunID()
	logger := p.logger.With(zap.String("run_id", runID))

	logger.Info("Starting processing", zap.Strings("inputs", p.cfg.InputFiles))

	// =========================================================================
	// STEPS 1-3: VALIDATE AND LOAD
	// =========================================================================

	combined, err := p.load(logger)
	if err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 4: CLEAN
	// =========================================================================

	cleaned, reports := p.cleaner.CleanWithReport(combined)
	logger.Info("Cleaning complete",
		zap.Int("rows_in", combined.Len()),
		zap.Int("rows_out", cleaned.Len()))

	// =========================================================================
	// STEP 5: DERIVE AMOUNTS
	// =========================================================================

	withAmounts, err := p.calc.DeriveAmount(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to derive amounts: %w", err)
	}

	// =========================================================================
	// STEP 6: AGGREGATE
	// =========================================================================

	summary := p.calc.AggregateByBranch(withAmounts)
	for _, s := range summary {
		logger.Info(fmt.Sprintf("Branch %s: %s", s.Branch, s.Total.StringFixed(2)),
			zap.String("branch", s.Branch),
			zap.String("total", s.Total.StringFixed(2)),
			zap.Int("transactions", s.Transactions))
	}

	// =========================================================================
	// STEP 7: PERSIST
	// =========================================================================

	outputPath := utils.GenerateOutputFileName(p.cfg.OutputFile, startTime, map[string]string{"run_id": runID})
	if err := p.repo.WriteSummary(outputPath, summary); err != nil {
		return nil, err
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result := &Result{
		RunID:      runID,
		InputFiles: append([]string(nil), p.cfg.InputFiles...),
		OutputFile: outputPath,
		Summary:    summary,
		Stats: ProcessingStats{
			RowsLoaded:     combined.Len(),
			RowsCleaned:    cleaned.Len(),
			Branches:       len(summary),
			Steps:          reports,
			GrandTotal:     calculator.GrandTotal(summary),
			ProcessingTime: p.now().Sub(startTime),
		},
	}

	logger.Info("Processing complete",
		zap.String("output", outputPath),
		zap.Int("branches", result.Stats.Branches),
		zap.Duration("elapsed", result.Stats.ProcessingTime))

	return result, nil
}

// Preflight runs the validation and load stages without cleaning or
// writing anything. It returns the number of rows that would be processed.
func (p *Processor) Preflight() (int, error) {
	combined, err := p.load(p.logger)
	if err != nil {
		return 0, err
	}
	return combined.Len(), nil
}

// load checks that the inputs exist, reads them and checks the schema.
func (p *Processor) load(logger *zap.Logger) (*types.RecordSet, error) {
	if err := p.validator.ValidateFilesExist(p.cfg.InputFiles); err != nil {
		return nil, err
	}

	combined, err := p.repo.ReadMultiple(p.cfg.InputFiles)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded input files",
		zap.Int("files", len(p.cfg.InputFiles)),
		zap.Int("rows", combined.Len()))

	if err := p.validator.ValidateColumns(combined, p.cfg.RequiredColumns, CombinedSource); err != nil {
		return nil, err
	}

	return combined, nil
}
