// Package pipeline runs the load → search → render flow shared by the CLI
// and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a graph document from a file and normalize it
//  2. Search: run the configured strategy between two nodes
//  3. Render: produce artifacts (JSON, text report, DOT, SVG, PNG, PDF)
//
// Search results and artifacts are cached by content hash, so repeating a
// query over an unchanged document skips the search entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	doc, hash, err := runner.Load(ctx, "romania.yaml")
//	opts := pipeline.Options{Start: "Arad", Goal: "Bucharest", Formats: []string{"json", "svg"}}
//	result, err := runner.Execute(ctx, doc, hash, opts)
//	svg := result.Artifacts["svg"]
//
// [Runner.Batch] runs many start/goal pairs over one document concurrently.
package pipeline

import (
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/pathtrace/pkg/cache"
	"github.com/matzehuels/pathtrace/pkg/errors"
	pio "github.com/matzehuels/pathtrace/pkg/io"
	"github.com/matzehuels/pathtrace/pkg/search"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultAlgorithm is used when neither the options nor the document
	// config name one.
	DefaultAlgorithm = "astar"

	// DefaultConcurrency bounds Batch when no limit is given.
	DefaultConcurrency = 4

	// DefaultPNGScale is the PNG resolution multiplier.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatText: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one search through the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	Start     string   `json:"start" validate:"required,max=256"`
	Goal      string   `json:"goal" validate:"required,max=256"`
	Algorithm string   `json:"algorithm,omitempty" validate:"omitempty,algorithm"`
	Weight    float64  `json:"weight,omitempty" validate:"gte=0"`
	Directed  bool     `json:"directed,omitempty"`
	Formats   []string `json:"formats,omitempty" validate:"dive,format"`
	Detailed  bool     `json:"detailed,omitempty"` // expansion order in DOT labels
	Refresh   bool     `json:"refresh,omitempty"`  // bypass cached results

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" validate:"-"`

	validated bool
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the pipeline's custom tags
// ("algorithm" and "format") registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
			_, err := search.ParseKind(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("format", func(fl validator.FieldLevel) bool {
			return ValidFormats[fl.Field().String()]
		})
	})
	return validate
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(slices.Sorted(maps.Keys(ValidFormats)), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ApplyDocumentDefaults fills unset fields from a document's config section.
// Explicit options always win.
func (o *Options) ApplyDocumentDefaults(d pio.Defaults) {
	if o.Start == "" {
		o.Start = d.Start
	}
	if o.Goal == "" {
		o.Goal = d.Goal
	}
	if o.Algorithm == "" {
		o.Algorithm = d.Algorithm
	}
	if o.Weight == 0 {
		o.Weight = d.Weight
	}
	if d.Directed {
		o.Directed = true
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if err := Validator().Struct(o); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s", describeValidation(err))
	}
	o.validated = true
	return nil
}

// describeValidation turns validator errors into one readable line.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "algorithm":
			msgs = append(msgs, fmt.Sprintf("unknown algorithm %q", fe.Value()))
		case "format":
			msgs = append(msgs, fmt.Sprintf("invalid format %q", fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Strategy resolves Algorithm and Weight. A zero weight selects the
// algorithm's default.
func (o *Options) Strategy() (search.Strategy, error) {
	kind, err := search.ParseKind(o.Algorithm)
	if err != nil {
		return search.Strategy{}, err
	}
	s := search.NewStrategy(kind)
	if o.Weight > 0 {
		s.Weight = o.Weight
	}
	return s, nil
}

// SearchOptions converts the options into search package options.
func (o *Options) SearchOptions() ([]search.Option, error) {
	s, err := o.Strategy()
	if err != nil {
		return nil, err
	}
	opts := []search.Option{search.WithStrategy(s)}
	if o.Directed {
		opts = append(opts, search.WithDirected())
	}
	return opts, nil
}

// SearchKeyOpts returns cache key options for a search.
func (o *Options) SearchKeyOpts() cache.SearchKeyOpts {
	s, _ := o.Strategy()
	return cache.SearchKeyOpts{
		Algorithm: s.Kind.String(),
		Weight:    s.Weight,
		Directed:  o.Directed,
		Start:     o.Start,
		Goal:      o.Goal,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	style := ""
	if o.Detailed {
		style = "detailed"
	}
	return cache.ArtifactKeyOpts{Format: format, Style: style}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// DocHash is the content hash of the searched document.
	DocHash string

	// Search is the search outcome including its trace.
	Search search.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	SearchTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SearchHit bool // search result came from cache
	RenderHit bool // all artifacts came from cache
}
