package linalg

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/internal/errs"
)

// LDA is a Gaussian linear discriminant classifier with a pooled,
// within-class covariance matrix — the classic textbook formulation SOAP
// refits on confidently-assigned epochs (SPEC_FULL.md §4.8).
type LDA struct {
	Classes  []int
	means    map[int][]float64
	priors   map[int]float64
	sigmaInv *mat.Dense
	p        int
}

// Fit estimates class means, priors, and the pooled covariance from X (n x
// p, rows = samples) and labels (length n, values are class ids). Returns
// DegenerateNumerics if any feature has zero within-class variance or
// fewer than 2 classes are present.
func Fit(x *mat.Dense, labels []int) (*LDA, error) {
	n, p := x.Dims()
	if n != len(labels) {
		return nil, errs.New(errs.ConstraintViolation, "linalg: Fit row/label count mismatch")
	}
	byClass := map[int][]int{}
	for i, c := range labels {
		byClass[c] = append(byClass[c], i)
	}
	if len(byClass) < 2 {
		return nil, errs.New(errs.DegenerateNumerics, "linalg: LDA requires at least 2 classes")
	}

	means := map[int][]float64{}
	for c, idxs := range byClass {
		mu := make([]float64, p)
		for _, i := range idxs {
			for j := 0; j < p; j++ {
				mu[j] += x.At(i, j)
			}
		}
		for j := range mu {
			mu[j] /= float64(len(idxs))
		}
		means[c] = mu
	}

	sigma := mat.NewDense(p, p, nil)
	for i := 0; i < n; i++ {
		c := labels[i]
		mu := means[c]
		row := make([]float64, p)
		for j := 0; j < p; j++ {
			row[j] = x.At(i, j) - mu[j]
		}
		for a := 0; a < p; a++ {
			if row[a] == 0 {
				continue
			}
			for b := 0; b < p; b++ {
				sigma.Set(a, b, sigma.At(a, b)+row[a]*row[b])
			}
		}
	}
	denom := float64(n - len(byClass))
	if denom <= 0 {
		return nil, errs.New(errs.DegenerateNumerics, "linalg: LDA has no residual degrees of freedom")
	}
	sigma.Scale(1/denom, sigma)
	for j := 0; j < p; j++ {
		if sigma.At(j, j) <= 0 {
			return nil, errs.New(errs.DegenerateNumerics, "linalg: zero-variance LDA feature at column", j)
		}
	}

	var sigmaInv mat.Dense
	if err := sigmaInv.Inverse(sigma); err != nil {
		return nil, errs.New(errs.DegenerateNumerics, "linalg: LDA covariance is singular", err)
	}

	priors := map[int]float64{}
	classes := make([]int, 0, len(byClass))
	for c, idxs := range byClass {
		priors[c] = float64(len(idxs)) / float64(n)
		classes = append(classes, c)
	}
	sort.Ints(classes)

	return &LDA{Classes: classes, means: means, priors: priors, sigmaInv: &sigmaInv, p: p}, nil
}

// Predict returns the class of highest posterior for x, plus a posterior
// distribution over l.Classes obtained by a softmax of the Gaussian
// discriminant scores.
func (l *LDA) Predict(x []float64) (label int, posterior map[int]float64) {
	scores := make(map[int]float64, len(l.Classes))
	maxScore := math.Inf(-1)
	for _, c := range l.Classes {
		s := l.discriminant(x, c)
		scores[c] = s
		if s > maxScore {
			maxScore = s
			label = c
		}
	}
	sum := 0.0
	for _, c := range l.Classes {
		scores[c] = math.Exp(scores[c] - maxScore)
		sum += scores[c]
	}
	posterior = make(map[int]float64, len(l.Classes))
	if sum < 1e-10 {
		uniform := 1.0 / float64(len(l.Classes))
		for _, c := range l.Classes {
			posterior[c] = uniform
		}
		return label, posterior
	}
	for _, c := range l.Classes {
		posterior[c] = scores[c] / sum
	}
	return label, posterior
}

// discriminant computes delta_k(x) = x^T Sigma^-1 mu_k - 0.5 mu_k^T
// Sigma^-1 mu_k + log(pi_k).
func (l *LDA) discriminant(x []float64, c int) float64 {
	mu := l.means[c]
	xv := mat.NewVecDense(l.p, x)
	muv := mat.NewVecDense(l.p, mu)

	var siMu mat.VecDense
	siMu.MulVec(l.sigmaInv, muv)

	term1 := mat.Dot(xv, &siMu)
	term2 := 0.5 * mat.Dot(muv, &siMu)
	return term1 - term2 + math.Log(l.priors[c])
}
