package kernels

import (
	"context"
	"math"

	"github.com/bioc/CaDrA/domain/scoring"
)

// RevealerKernel implements the REVEALER-style conditional mutual
// information score: I(S;R|U), the information a candidate row R adds
// about s beyond what the current meta-feature union U already explains.
// Differential entropies of s within each conditioning subgroup are
// estimated with a Gaussian KDE resubstitution estimator (Silverman
// bandwidth), following the entropy-identity decomposition
// I(S;R|U) = H(S|U) - H(S|R,U).
type RevealerKernel struct{}

func NewRevealerKernel() *RevealerKernel { return &RevealerKernel{} }

func (k *RevealerKernel) Name() scoring.Method { return scoring.MethodRevealer }

func (k *RevealerKernel) Score(_ context.Context, a [][]uint8, rowLabels []string, colLabels []string, s []float64, opts Options) (scoring.ScoredVector, error) {
	opts = opts.WithDefaults()
	if err := validateInputs(a, rowLabels, s); err != nil {
		return nil, err
	}

	union := opts.MetaFeatureUnion
	if union == nil {
		union = make([]uint8, len(s))
	}

	values := make([]float64, len(a))
	rowIdx := make([]int, len(a))
	popcounts := make([]int, len(a))
	for i, row := range a {
		values[i] = conditionalMI(s, row, union)
		rowIdx[i] = i
		popcounts[i] = popCount(row)
	}
	return buildScoredVector(rowLabels, rowIdx, popcounts, values), nil
}

// conditionalMI computes I(S;R|U) = H(S|U) - H(S|R,U) by partitioning
// samples on U and, within each U level, on R.
func conditionalMI(s []float64, row, union []uint8) float64 {
	var total float64
	for _, u := range []uint8{0, 1} {
		var sGivenU []float64
		var groups [2][]float64
		for j := range s {
			if union[j] != u {
				continue
			}
			sGivenU = append(sGivenU, s[j])
			groups[row[j]] = append(groups[row[j]], s[j])
		}
		if len(sGivenU) < 4 {
			continue
		}
		weight := float64(len(sGivenU)) / float64(len(s))
		hSGivenU := kdeEntropy(sGivenU)
		hSGivenRU := conditionalEntropy(groups[0], groups[1], len(sGivenU))
		cmi := hSGivenU - hSGivenRU
		if cmi < 0 {
			cmi = 0
		}
		total += weight * cmi
	}
	return total
}

func conditionalEntropy(group0, group1 []float64, total int) float64 {
	var h float64
	if len(group0) >= 2 {
		h += float64(len(group0)) / float64(total) * kdeEntropy(group0)
	}
	if len(group1) >= 2 {
		h += float64(len(group1)) / float64(total) * kdeEntropy(group1)
	}
	return h
}

// kdeEntropy estimates the differential entropy of data via a Gaussian
// KDE resubstitution estimator: h(X) ~= -(1/n) * sum log( f_hat(x_i) ),
// with bandwidth chosen by Silverman's rule of thumb.
func kdeEntropy(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}
	mean, sd := meanStd(data)
	if sd == 0 {
		return 0
	}
	bandwidth := 1.06 * sd * math.Pow(float64(n), -0.2)
	if bandwidth <= 0 {
		bandwidth = sd
	}

	var sumLogDensity float64
	for i, xi := range data {
		var density float64
		for j, xj := range data {
			if i == j {
				continue
			}
			z := (xi - xj) / bandwidth
			density += math.Exp(-0.5*z*z) / (bandwidth * math.Sqrt(2*math.Pi))
		}
		density /= float64(n - 1)
		if density <= 0 {
			density = scoring.SmallestPositive
		}
		sumLogDensity += math.Log(density)
	}
	_ = mean
	return -sumLogDensity / float64(n)
}

func meanStd(data []float64) (mean, sd float64) {
	n := float64(len(data))
	for _, v := range data {
		mean += v
	}
	mean /= n
	var sumSq float64
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	sd = math.Sqrt(sumSq / n)
	return mean, sd
}
