package forecasting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	minGARCHObservations = 5
	persistenceCeiling   = 0.999
	paramClamp           = 30.0
)

// garchFit is a constant-mean GARCH(1,1) with normal innovations:
//
//	r[t] = mu + a[t]
//	s2[t] = omega + alpha*a[t-1]^2 + beta*s2[t-1]
type garchFit struct {
	mu                 float64
	omega, alpha, beta float64
	lastShock, lastVar float64
}

func fitGARCH(returns []float64, maxIterations int) (*garchFit, error) {
	if len(returns) < minGARCHObservations {
		return nil, fmt.Errorf("garch needs %d observations, got %d: %w",
			minGARCHObservations, len(returns), ErrInsufficientData)
	}

	mu, variance := stat.MeanVariance(returns, nil)
	if math.IsNaN(variance) || variance < degenerateVariance {
		return nil, fmt.Errorf("garch: residuals have no variance: %w", ErrDegenerateSeries)
	}

	shocks := make([]float64, len(returns))
	for i, r := range returns {
		shocks[i] = r - mu
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			omega, alpha, beta := garchParams(x, variance)
			nll, _ := garchRecursion(shocks, omega, alpha, beta, variance)
			if math.IsNaN(nll) || math.IsInf(nll, 0) {
				return math.MaxFloat64
			}
			return nll
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxIterations,
		FuncEvaluations: maxIterations * 10,
	}

	// start near alpha=0.1, beta=0.8 with omega at the matching unconditional level
	initial := []float64{math.Log(0.1), 0, math.Log(8)}
	result, err := optimize.Minimize(problem, initial, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("garch: %v: %w", err, ErrFitFailed)
	}
	if result == nil || !allFinite(result.X) {
		return nil, fmt.Errorf("garch: optimizer returned no finite estimate: %w", ErrFitFailed)
	}

	fit := &garchFit{mu: mu}
	fit.omega, fit.alpha, fit.beta = garchParams(result.X, variance)

	nll, lastVar := garchRecursion(shocks, fit.omega, fit.alpha, fit.beta, variance)
	if math.IsNaN(nll) || math.IsInf(nll, 0) || lastVar <= 0 {
		return nil, fmt.Errorf("garch: likelihood is not finite at the estimate: %w", ErrFitFailed)
	}
	fit.lastShock = shocks[len(shocks)-1]
	fit.lastVar = lastVar

	return fit, nil
}

// garchParams maps unconstrained optimizer coordinates onto omega > 0,
// alpha >= 0, beta >= 0 and alpha+beta < 1.
func garchParams(x []float64, scale float64) (omega, alpha, beta float64) {
	x0 := clamp(x[0], -paramClamp, paramClamp)
	x1 := clamp(x[1], -paramClamp, paramClamp)
	x2 := clamp(x[2], -paramClamp, paramClamp)

	e1, e2 := math.Exp(x1), math.Exp(x2)
	denom := 1 + e1 + e2

	omega = scale * math.Exp(x0)
	alpha = persistenceCeiling * e1 / denom
	beta = persistenceCeiling * e2 / denom
	return omega, alpha, beta
}

// garchRecursion returns the Gaussian negative log-likelihood and the
// conditional variance of the final observation. The recursion is backcast
// with the sample variance.
func garchRecursion(shocks []float64, omega, alpha, beta, backcast float64) (float64, float64) {
	s2 := backcast
	var nll float64
	for t, a := range shocks {
		if t > 0 {
			prev := shocks[t-1]
			s2 = omega + alpha*prev*prev + beta*s2
		}
		if s2 <= 0 {
			return math.Inf(1), 0
		}
		nll += math.Log(s2) + a*a/s2
	}
	nll = 0.5 * (nll + float64(len(shocks))*math.Log(2*math.Pi))
	return nll, s2
}

// forecastVariance returns the h-step conditional variance forecasts.
func (f *garchFit) forecastVariance(horizon int) []float64 {
	out := make([]float64, horizon)
	if horizon == 0 {
		return out
	}

	out[0] = f.omega + f.alpha*f.lastShock*f.lastShock + f.beta*f.lastVar
	for h := 1; h < horizon; h++ {
		out[h] = f.omega + (f.alpha+f.beta)*out[h-1]
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
