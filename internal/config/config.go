package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-evolution/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FitnessConfig holds the cost model used by the fitness evaluator.
type FitnessConfig struct {
	TransactionCost    float64 `yaml:"transaction_cost" json:"transaction_cost" jsonschema:"title=Transaction Cost,description=Proportional cost charged on every unit of position change,minimum=0" validate:"gte=0,lt=1"`
	DrawdownWeight     float64 `yaml:"drawdown_weight" json:"drawdown_weight" jsonschema:"title=Drawdown Weight,description=Penalty per unit of maximum drawdown,minimum=0" validate:"gte=0"`
	TurnoverWeight     float64 `yaml:"turnover_weight" json:"turnover_weight" jsonschema:"title=Turnover Weight,description=Penalty per unit of average turnover per bar,minimum=0" validate:"gte=0"`
	LatencyCostPerNode float64 `yaml:"latency_cost_per_node" json:"latency_cost_per_node" jsonschema:"title=Latency Cost Per Node,description=Penalty per genome node recomputed every bar,minimum=0" validate:"gte=0"`
}

// PromotionConfig holds the gates of the candidate promotion pipeline.
type PromotionConfig struct {
	OOSTolerance      float64 `yaml:"oos_tolerance" json:"oos_tolerance" jsonschema:"title=Out-of-sample Tolerance,description=Maximum allowed relative drop from in-sample to out-of-sample score,minimum=0" validate:"gte=0"`
	StressFloor       float64 `yaml:"stress_floor" json:"stress_floor" jsonschema:"title=Stress Floor,description=Every stress score must exceed this value"`
	PromotionInterval int     `yaml:"promotion_interval" json:"promotion_interval" jsonschema:"title=Promotion Interval,description=Run the promotion pipeline every N generations (0 disables periodic promotion),minimum=0" validate:"gte=0"`
	PromotionTopK     int     `yaml:"promotion_top_k" json:"promotion_top_k" jsonschema:"title=Promotion Top K,description=Number of leaders sent through the pipeline,minimum=0" validate:"gte=0"`
}

// EvolutionConfig is the configuration surface consumed by the evolutionary core.
type EvolutionConfig struct {
	PopulationSize     int             `yaml:"population_size" json:"population_size" jsonschema:"title=Population Size,description=Number of individuals per generation,minimum=2" validate:"gte=2"`
	MaxGenerations     int             `yaml:"max_generations" json:"max_generations" jsonschema:"title=Max Generations,description=Stop after this many generations,minimum=1" validate:"gte=1"`
	MaxTreeDepth       int             `yaml:"max_tree_depth" json:"max_tree_depth" jsonschema:"title=Max Tree Depth,description=Maximum genome height (a single node has height 1),minimum=1,maximum=16" validate:"gte=1,lte=16"`
	ElitismCount       int             `yaml:"elitism_count" json:"elitism_count" jsonschema:"title=Elitism Count,description=Top individuals copied unchanged into the next generation,minimum=0" validate:"gte=0"`
	TournamentSize     int             `yaml:"tournament_size" json:"tournament_size" jsonschema:"title=Tournament Size,description=Individuals sampled per tournament,minimum=1" validate:"gte=1"`
	PCrossover         float64         `yaml:"p_crossover" json:"p_crossover" jsonschema:"title=Crossover Probability,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	PMutation          float64         `yaml:"p_mutation" json:"p_mutation" jsonschema:"title=Mutation Probability,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	PlateauPatience    int             `yaml:"plateau_patience" json:"plateau_patience" jsonschema:"title=Plateau Patience,description=Generations without improvement before the run converges (0 disables),minimum=0" validate:"gte=0"`
	PlateauEpsilon     float64         `yaml:"plateau_epsilon" json:"plateau_epsilon" jsonschema:"title=Plateau Epsilon,description=Minimum best-score gain that counts as improvement,minimum=0" validate:"gte=0"`
	RandomSeed         int64           `yaml:"random_seed" json:"random_seed" jsonschema:"title=Random Seed,description=Seed all random sub-streams are derived from"`
	Parallelism        int             `yaml:"parallelism" json:"parallelism" jsonschema:"title=Parallelism,description=Number of concurrent fitness evaluations,minimum=1" validate:"gte=1"`
	EvaluationTimeout  time.Duration   `yaml:"evaluation_timeout" json:"evaluation_timeout" jsonschema:"title=Evaluation Timeout,description=Per-evaluation time budget (0 disables)" validate:"gte=0"`
	MinIndicatorPeriod int             `yaml:"min_indicator_period" json:"min_indicator_period" jsonschema:"title=Min Indicator Period,minimum=2" validate:"gte=2"`
	MaxIndicatorPeriod int             `yaml:"max_indicator_period" json:"max_indicator_period" jsonschema:"title=Max Indicator Period,minimum=2" validate:"gte=2"`
	Fitness            FitnessConfig   `yaml:"fitness" json:"fitness" jsonschema:"title=Fitness,description=Cost model of the fitness evaluator"`
	Promotion          PromotionConfig `yaml:"promotion" json:"promotion" jsonschema:"title=Promotion,description=Gates of the promotion pipeline"`
}

// DefaultConfig returns a configuration that runs a small search out of the box.
func DefaultConfig() EvolutionConfig {
	return EvolutionConfig{
		PopulationSize:     50,
		MaxGenerations:     50,
		MaxTreeDepth:       5,
		ElitismCount:       2,
		TournamentSize:     3,
		PCrossover:         0.8,
		PMutation:          0.2,
		PlateauPatience:    10,
		PlateauEpsilon:     1e-9,
		RandomSeed:         42,
		Parallelism:        4,
		EvaluationTimeout:  2 * time.Second,
		MinIndicatorPeriod: 2,
		MaxIndicatorPeriod: 50,
		Fitness: FitnessConfig{
			TransactionCost:    0.0005,
			DrawdownWeight:     0.5,
			TurnoverWeight:     0.1,
			LatencyCostPerNode: 0.0001,
		},
		Promotion: PromotionConfig{
			OOSTolerance:      0.5,
			StressFloor:       -0.25,
			PromotionInterval: 10,
			PromotionTopK:     3,
		},
	}
}

// EmptyConfig returns an EvolutionConfig with every field at its zero value.
// It is what the schema generator reflects over.
func EmptyConfig() EvolutionConfig {
	return EvolutionConfig{}
}

// TestConfig returns the small, fast configuration used throughout the tests.
func TestConfig(seed int64) EvolutionConfig {
	cfg := DefaultConfig()
	cfg.PopulationSize = 20
	cfg.MaxGenerations = 10
	cfg.MaxTreeDepth = 4
	cfg.RandomSeed = seed
	cfg.Parallelism = 4
	cfg.PlateauPatience = 0
	cfg.MaxIndicatorPeriod = 20
	cfg.EvaluationTimeout = 0

	return cfg
}

// Parse decodes a YAML document on top of DefaultConfig and validates it.
func Parse(data []byte) (EvolutionConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EvolutionConfig{}, errors.WrapConfigurationError("", "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return EvolutionConfig{}, err
	}

	return cfg, nil
}

// Load reads and parses a YAML config file.
func Load(path string) (EvolutionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EvolutionConfig{}, errors.WrapConfigurationError("", fmt.Sprintf("failed to read config file %s", path), err)
	}

	return Parse(data)
}

// Validate checks field ranges and cross-field rules. Every failure is a
// ConfigurationError.
func (c *EvolutionConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		field := ""

		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			field = validationErrors[0].Namespace()
		}

		return errors.WrapConfigurationError(field, "field validation failed", err)
	}

	if c.ElitismCount >= c.PopulationSize {
		return errors.NewConfigurationErrorf("elitism_count",
			"must be less than population_size (%d >= %d)", c.ElitismCount, c.PopulationSize)
	}

	if c.TournamentSize > c.PopulationSize {
		return errors.NewConfigurationErrorf("tournament_size",
			"must not exceed population_size (%d > %d)", c.TournamentSize, c.PopulationSize)
	}

	if c.MinIndicatorPeriod > c.MaxIndicatorPeriod {
		return errors.NewConfigurationErrorf("min_indicator_period",
			"must not exceed max_indicator_period (%d > %d)", c.MinIndicatorPeriod, c.MaxIndicatorPeriod)
	}

	if c.Promotion.PromotionTopK > c.PopulationSize {
		return errors.NewConfigurationErrorf("promotion.promotion_top_k",
			"must not exceed population_size (%d > %d)", c.Promotion.PromotionTopK, c.PopulationSize)
	}

	if c.Promotion.PromotionInterval > 0 && c.Promotion.PromotionTopK == 0 {
		return errors.NewConfigurationError("promotion.promotion_top_k",
			"must be positive when promotion_interval is set")
	}

	return nil
}

// MinSeriesLength is the shortest in-sample series a run can start on: the
// longest indicator window, one bar of look-back for crosses and two bars
// for at least one position and its return.
func (c *EvolutionConfig) MinSeriesLength() int {
	return c.MaxIndicatorPeriod + 3
}

// GenerateSchema generates a JSON schema for the EvolutionConfig
func (c *EvolutionConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}

	schema := reflector.Reflect(c)

	schema.Title = "evolution-config"
	schema.Description = "Configuration schema for the strategy evolution engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the EvolutionConfig
func (c *EvolutionConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
