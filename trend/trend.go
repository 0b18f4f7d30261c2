// Package trend fits a baseline growth model to a regularized series and
// projects it forward with uncertainty bounds, ignoring events.
package trend

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/selamanalytics/fincast/timeseries"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUntrained        = errors.New("trend has not been fit yet")
	ErrDegenerateFit    = errors.New("insufficient observed points for the chosen model")
	ErrInvalidHorizon   = errors.New("horizon must be at least 1")
	ErrUnknownModelType = errors.New("unknown trend model type")
	ErrBadAsymptote     = errors.New("logistic asymptote must exceed every observed value")
)

const (
	MinLinearObserved   = 2
	MinLogisticObserved = 3

	// logitEps keeps the logit transform finite for values at the domain edge
	logitEps = 1e-6
)

// ModelType selects the baseline growth model.
type ModelType int

const (
	ModelLinear ModelType = iota
	ModelLogistic
)

func (m ModelType) String() string {
	switch m {
	case ModelLinear:
		return "linear"
	case ModelLogistic:
		return "logistic"
	}
	return "unknown"
}

func ParseModelType(s string) (ModelType, error) {
	switch s {
	case "linear":
		return ModelLinear, nil
	case "logistic":
		return ModelLogistic, nil
	}
	return 0, fmt.Errorf("%q, %w", s, ErrUnknownModelType)
}

type Options struct {
	Model ModelType

	// Asymptote is the logistic upper bound, e.g. 100 for a percentage
	// approaching saturation. Ignored by the linear model.
	Asymptote float64

	// Zscore scales the residual standard error into a confidence band.
	Zscore float64

	// MinUncertainty floors the residual standard error so a perfectly
	// collinear fit still produces a band that widens with horizon.
	MinUncertainty float64
}

func NewDefaultOptions() *Options {
	return &Options{
		Model:          ModelLinear,
		Asymptote:      100.0,
		Zscore:         1.96,
		MinUncertainty: 0.25,
	}
}

// Point is one projected period with its point estimate and bounds.
type Point struct {
	Period   time.Time `json:"period"`
	Estimate float64   `json:"estimate"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// Forecast holds the projection for periods strictly after the last
// historical period. Bound half-widths strictly increase with horizon.
type Forecast struct {
	IndicatorCode string `json:"indicator_code"`
	Model         string `json:"model"`
	Points        []Point `json:"points"`
}

// Periods returns the forecast period starts in order.
func (f *Forecast) Periods() []time.Time {
	t := make([]time.Time, len(f.Points))
	for i, p := range f.Points {
		t[i] = p.Period
	}
	return t
}

// Trend fits and projects a single indicator's baseline growth. The fit uses
// observed points only so interpolated gap-fill never biases the slope.
type Trend struct {
	opt *Options

	indicatorCode string
	step          timeseries.Step
	firstPeriod   time.Time
	lastPeriod    time.Time
	lastIndex     int

	intercept float64
	slope     float64
	sigma     float64
	scores    *Scores
	trained   bool
}

func New(opt *Options) (*Trend, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Trend{opt: opt}, nil
}

// Fit estimates the growth model over the observed points of the series.
func (tr *Trend) Fit(s *timeseries.Series) error {
	observed := s.Observed()
	minObs := MinLinearObserved
	if tr.opt.Model == ModelLogistic {
		minObs = MinLogisticObserved
	}
	if len(observed) < minObs {
		return fmt.Errorf("indicator %s has %d observed points and %s needs %d, %w",
			s.IndicatorCode, len(observed), tr.opt.Model, minObs, ErrDegenerateFit)
	}

	x := make([]float64, len(observed))
	y := make([]float64, len(observed))
	for i, p := range observed {
		x[i] = float64(s.Step.Between(s.Points[0].Period, p.Period))
		y[i] = p.Value
	}

	target := y
	if tr.opt.Model == ModelLogistic {
		target = make([]float64, len(y))
		for i, v := range y {
			if v >= tr.opt.Asymptote {
				return fmt.Errorf("value %.2f vs asymptote %.2f, %w", v, tr.opt.Asymptote, ErrBadAsymptote)
			}
			target[i] = logit(v, tr.opt.Asymptote)
		}
	}

	intercept, slope, err := ols(x, target)
	if err != nil {
		return err
	}
	tr.intercept = intercept
	tr.slope = slope
	tr.indicatorCode = s.IndicatorCode
	tr.step = s.Step
	tr.firstPeriod = s.Points[0].Period
	tr.lastPeriod = s.LastPeriod()
	tr.lastIndex = s.Step.Between(tr.firstPeriod, tr.lastPeriod)
	tr.trained = true

	fitted := make([]float64, len(x))
	for i, xi := range x {
		fitted[i] = tr.at(xi)
	}
	tr.sigma = residualStdErr(fitted, y)

	scores, err := NewScores(fitted, y)
	if err != nil {
		return err
	}
	tr.scores = scores

	return nil
}

// Project generates the forward projection for the given number of future
// periods. Half-widths grow as sqrt(1+h) so uncertainty compounds with
// distance from the last observed period.
func (tr *Trend) Project(horizon int) (*Forecast, error) {
	if !tr.trained {
		return nil, ErrUntrained
	}
	if horizon < 1 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrInvalidHorizon)
	}

	sigma := math.Max(tr.sigma, tr.opt.MinUncertainty)
	points := make([]Point, 0, horizon)
	for h := 0; h < horizon; h++ {
		period := tr.step.Add(tr.lastPeriod, h+1)
		est := tr.at(float64(tr.lastIndex + h + 1))
		halfWidth := tr.opt.Zscore * sigma * math.Sqrt(1.0+float64(h))

		upper := est + halfWidth
		if tr.opt.Model == ModelLogistic && upper > tr.opt.Asymptote {
			upper = tr.opt.Asymptote
		}
		points = append(points, Point{
			Period:   period,
			Estimate: est,
			Lower:    est - halfWidth,
			Upper:    upper,
		})
	}

	return &Forecast{
		IndicatorCode: tr.indicatorCode,
		Model:         tr.opt.Model.String(),
		Points:        points,
	}, nil
}

// Scores returns the fit quality against the observed points.
func (tr *Trend) Scores() Scores {
	if tr.scores == nil {
		return Scores{}
	}
	return *tr.scores
}

// at evaluates the fitted curve at period index x in value space.
func (tr *Trend) at(x float64) float64 {
	lin := tr.intercept + tr.slope*x
	if tr.opt.Model == ModelLogistic {
		return tr.opt.Asymptote / (1.0 + math.Exp(-lin))
	}
	return lin
}

func logit(v, asymptote float64) float64 {
	eps := asymptote * logitEps
	v = math.Min(math.Max(v, eps), asymptote-eps)
	return math.Log(v / (asymptote - v))
}

// ols computes a single-feature ordinary least squares fit with intercept
// using QR factorization.
func ols(x, y []float64) (intercept, slope float64, err error) {
	m := len(x)
	data := make([]float64, 0, 2*m)
	for _, xi := range x {
		data = append(data, 1.0, xi)
	}
	X := mat.NewDense(m, 2, data)
	Y := mat.NewDense(1, m, y)

	qr := new(mat.QR)
	qr.Factorize(X)

	q := new(mat.Dense)
	r := new(mat.Dense)
	qr.QTo(q)
	qr.RTo(r)

	yq := new(mat.Dense)
	yq.Mul(Y, q)

	c := make([]float64, 2)
	for i := 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < 2; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		if r.At(i, i) == 0 {
			return 0, 0, ErrDegenerateFit
		}
		c[i] /= r.At(i, i)
	}
	return c[0], c[1], nil
}

// residualStdErr computes the standard error of the fit residual with two
// degrees of freedom consumed by intercept and slope.
func residualStdErr(fitted, actual []float64) float64 {
	n := len(actual)
	if n <= 2 {
		return 0.0
	}
	var ss float64
	for i := range actual {
		d := actual[i] - fitted[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-2))
}
