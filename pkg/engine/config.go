package engine

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all parameters for a run. The first block mirrors the
// problem definition; the rest are run options.
type Config struct {
	PopulationSize       int                  `yaml:"population_size" json:"population_size" validate:"gt=0,divisibleby=4"`
	Generations          int                  `yaml:"generations" json:"generations" validate:"gte=0"`
	FunctionProb         int                  `yaml:"function_prob" json:"function_prob" validate:"gte=0"`
	TerminalProb         int                  `yaml:"terminal_prob" json:"terminal_prob" validate:"gte=0"`
	ValueSet             []float64            `yaml:"value_set" json:"value_set"`
	MaxDepth             int                  `yaml:"max_depth" json:"max_depth" validate:"gte=0,lte=32"`
	TournamentSize       int                  `yaml:"tournament_size" json:"tournament_size" validate:"gte=4,divisibleby=2,ltefield=PopulationSize"`
	IndependentVariables []string             `yaml:"independent_variables" json:"independent_variables" validate:"dive,required"`
	IndependentValues    []map[string]float64 `yaml:"independent_values" json:"independent_values" validate:"min=1"`
	DependentValues      []float64            `yaml:"dependent_values" json:"dependent_values" validate:"min=1"`
	FunctionSet          []string             `yaml:"function_set" json:"function_set" validate:"dive,oneof=Add Subtract Multiply Divide"`

	Seed           int64         `yaml:"seed" json:"seed"` // 0 = random
	Strategy       string        `yaml:"strategy" json:"strategy" validate:"required"`
	MutationChance int           `yaml:"mutation_chance" json:"mutation_chance" validate:"gte=1"`
	Workers        int           `yaml:"workers" json:"workers" validate:"gte=0"`
	ErrorCacheTTL  time.Duration `yaml:"error_cache_ttl" json:"error_cache_ttl" validate:"gte=0"` // 0 disables the cache
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts" validate:"gte=0"`
	Format         string        `yaml:"format" json:"format" validate:"oneof=text json"`
	Plot           bool          `yaml:"plot" json:"plot"`
	PlotResolution int           `yaml:"plot_resolution" json:"plot_resolution" validate:"gte=1"`
	Latex          bool          `yaml:"latex" json:"latex"` // write a LaTeX hall of fame to OutDir
	OutDir         string        `yaml:"out_dir" json:"out_dir"`
	ReportTop      int           `yaml:"report_top" json:"report_top" validate:"gte=0"`
}

// DefaultConfig returns the 2x problem with sensible run options.
func DefaultConfig() Config {
	return Config{
		PopulationSize:       200,
		Generations:          300,
		FunctionProb:         1,
		TerminalProb:         1,
		ValueSet:             []float64{-1, 0, 1, 2},
		MaxDepth:             3,
		TournamentSize:       4,
		IndependentVariables: []string{"x"},
		IndependentValues: []map[string]float64{
			{"x": 0}, {"x": 1}, {"x": 2}, {"x": 3},
		},
		DependentValues: []float64{0, 2, 4, 6},
		FunctionSet:     []string{"Add", "Multiply"},

		Seed:           0,
		Strategy:       "tournament",
		MutationChance: 20,
		Workers:        runtime.NumCPU(),
		MaxAttempts:    0,
		Format:         "text",
		PlotResolution: 100,
		OutDir:         ".",
		ReportTop:      5,
	}
}

// LoadConfig reads a YAML (or JSON) file over DefaultConfig. Fields absent
// from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	configValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = configValidate.RegisterValidation("divisibleby", validateDivisibleBy)
}

// validateDivisibleBy checks that an integer field is a multiple of the
// tag parameter, e.g. `divisibleby=4`.
func validateDivisibleBy(fl validator.FieldLevel) bool {
	n, err := strconv.ParseInt(fl.Param(), 10, 64)
	if err != nil || n == 0 {
		return false
	}
	return fl.Field().Int()%n == 0
}

// Validate checks every field and reports all failures at once, keyed by
// their config names.
func (c Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		errs = append(errs, fmt.Errorf("%s: %v fails %s", fe.Field(), fe.Value(), rule))
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
