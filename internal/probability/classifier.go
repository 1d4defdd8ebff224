package probability

import (
	"fmt"
	"math"
	"strings"

	"github.com/yourusername/value-better/internal/models"
)

// TrainConfig controls classifier training
type TrainConfig struct {
	LearningRate float64 `mapstructure:"learning_rate" yaml:"learning_rate"`
	Epochs       int     `mapstructure:"epochs" yaml:"epochs"`
	L2           float64 `mapstructure:"l2" yaml:"l2"`
}

// DefaultTrainConfig returns the training settings used when none are configured
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{LearningRate: 0.5, Epochs: 500, L2: 0.001}
}

func (c TrainConfig) withDefaults() TrainConfig {
	d := DefaultTrainConfig()
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.L2 < 0 {
		c.L2 = d.L2
	}
	return c
}

// Classifier is a multinomial logistic regression over one-hot home team, one-hot away
// team and the three implied probabilities. Output is always in canonical order.
type Classifier struct {
	homeIndex map[string]int
	awayIndex map[string]int
	weights   [][3]float64
	bias      [3]float64
	samples   int
	cfg       TrainConfig
}

type sample struct {
	x     []float64
	label int
}

// Fit trains a classifier on completed fixtures using batch gradient descent with L2
// regularisation. Every fixture needs both team names, all three odds and a canonical
// result.
func Fit(fixtures []models.HistoricalFixture, cfg TrainConfig) (*Classifier, error) {
	if len(fixtures) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	cfg = cfg.withDefaults()

	c := &Classifier{
		homeIndex: make(map[string]int),
		awayIndex: make(map[string]int),
		cfg:       cfg,
	}
	for i, f := range fixtures {
		home, away := teamKey(f.HomeTeam), teamKey(f.AwayTeam)
		if home == "" || away == "" {
			return nil, fmt.Errorf("fixture %d: %w", i, models.ErrMissingTeam)
		}
		if _, ok := c.homeIndex[home]; !ok {
			c.homeIndex[home] = len(c.homeIndex)
		}
		if _, ok := c.awayIndex[away]; !ok {
			c.awayIndex[away] = len(c.awayIndex)
		}
	}

	samples := make([]sample, 0, len(fixtures))
	for i, f := range fixtures {
		label := f.Result.Index()
		if label < 0 {
			return nil, fmt.Errorf("fixture %d: %w: %q", i, models.ErrUnknownOutcome, f.Result)
		}
		x, err := c.features(f.Record())
		if err != nil {
			return nil, fmt.Errorf("fixture %d: %w", i, err)
		}
		samples = append(samples, sample{x: x, label: label})
	}

	c.weights = make([][3]float64, c.width())
	c.samples = len(samples)
	c.train(samples)
	return c, nil
}

func (c *Classifier) train(samples []sample) {
	n := float64(len(samples))
	grad := make([][3]float64, len(c.weights))

	for epoch := 0; epoch < c.cfg.Epochs; epoch++ {
		for j := range grad {
			grad[j] = [3]float64{}
		}
		var gradBias [3]float64

		for _, s := range samples {
			p := c.softmax(s.x)
			for k := 0; k < 3; k++ {
				diff := p[k]
				if k == s.label {
					diff -= 1
				}
				gradBias[k] += diff
				for j, xj := range s.x {
					if xj != 0 {
						grad[j][k] += xj * diff
					}
				}
			}
		}

		for j := range c.weights {
			for k := 0; k < 3; k++ {
				c.weights[j][k] -= c.cfg.LearningRate * (grad[j][k]/n + c.cfg.L2*c.weights[j][k])
			}
		}
		for k := 0; k < 3; k++ {
			c.bias[k] -= c.cfg.LearningRate * gradBias[k] / n
		}
	}
}

// Strategy implements Estimator
func (c *Classifier) Strategy() Strategy {
	return StrategyClassifier
}

// Estimate implements Estimator
func (c *Classifier) Estimate(record models.MatchRecord) (models.Distribution, error) {
	return c.Predict(record)
}

// Predict returns the class probabilities for a fixture. A team not seen in the same
// position during training returns ErrUnknownCategory.
func (c *Classifier) Predict(record models.MatchRecord) (models.Distribution, error) {
	x, err := c.features(record)
	if err != nil {
		return models.Distribution{}, err
	}
	return models.DistributionFromValues(c.softmax(x)), nil
}

// Samples returns the number of fixtures the model was trained on
func (c *Classifier) Samples() int {
	return c.samples
}

// Teams returns the number of distinct home and away teams in the encoding
func (c *Classifier) Teams() (home, away int) {
	return len(c.homeIndex), len(c.awayIndex)
}

func (c *Classifier) width() int {
	return len(c.homeIndex) + len(c.awayIndex) + 3
}

func (c *Classifier) features(record models.MatchRecord) ([]float64, error) {
	home, ok := c.homeIndex[teamKey(record.HomeTeam)]
	if !ok {
		return nil, fmt.Errorf("%w: home team %q", ErrUnknownCategory, record.HomeTeam)
	}
	away, ok := c.awayIndex[teamKey(record.AwayTeam)]
	if !ok {
		return nil, fmt.Errorf("%w: away team %q", ErrUnknownCategory, record.AwayTeam)
	}
	implied, err := ImpliedProbabilities(record)
	if err != nil {
		return nil, err
	}

	x := make([]float64, c.width())
	x[home] = 1
	x[len(c.homeIndex)+away] = 1
	offset := len(c.homeIndex) + len(c.awayIndex)
	for i, v := range implied.Values() {
		x[offset+i] = v
	}
	return x, nil
}

func (c *Classifier) softmax(x []float64) [3]float64 {
	var z [3]float64
	for k := 0; k < 3; k++ {
		z[k] = c.bias[k]
		for j, xj := range x {
			if xj != 0 {
				z[k] += xj * c.weights[j][k]
			}
		}
	}

	maxZ := math.Max(z[0], math.Max(z[1], z[2]))
	var sum float64
	for k := range z {
		z[k] = math.Exp(z[k] - maxZ)
		sum += z[k]
	}
	for k := range z {
		z[k] /= sum
	}
	return z
}

func teamKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
