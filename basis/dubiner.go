package basis

// Orthogonal (Dubiner) polynomials on the reference simplex with vertices
// 0, e_0, ..., e_{d-1}. In collapsed coordinates the basis function of multi-index
// (i_0, ..., i_{d-1}) is the product over directions d of
//
//	t_d^{i_d} P_{i_d}^{a_d,0}(s_d/t_d),  t_d = 1 - sum_{e>d} xi_e,  s_d = 2 xi_d - t_d
//
// with a_d = 2 sum_{e<d} i_e + d. Each factor is evaluated in homogenized form,
// see ScaledJacobiP.

// DubinerP evaluates the basis function with multi-index idx at the reference point xi
func DubinerP(idx []int, xi []float64) (val float64) {
	var (
		alpha float64
	)
	val = 1
	for d := range xi {
		s, t := collapsed(d, xi)
		p, _, _ := ScaledJacobiP(idx[d], alpha, 0, s, t)
		val *= p
		alpha += 2*float64(idx[d]) + 1
	}
	return
}

// GradDubinerP evaluates the gradient of the basis function with multi-index idx with
// respect to the reference coordinates
func GradDubinerP(idx []int, xi []float64) (grad []float64) {
	var (
		D     = len(xi)
		alpha float64
		f     = make([]float64, D)
		dfds  = make([]float64, D)
		dfdt  = make([]float64, D)
	)
	for d := 0; d < D; d++ {
		s, t := collapsed(d, xi)
		f[d], dfds[d], dfdt[d] = ScaledJacobiP(idx[d], alpha, 0, s, t)
		alpha += 2*float64(idx[d]) + 1
	}
	// Products of all factors but one, without dividing
	others := make([]float64, D)
	for d := 0; d < D; d++ {
		others[d] = 1
		for e := 0; e < D; e++ {
			if e != d {
				others[d] *= f[e]
			}
		}
	}
	grad = make([]float64, D)
	for k := 0; k < D; k++ {
		for d := 0; d <= k; d++ {
			var df float64
			if d == k {
				df = 2 * dfds[d] // ds_d/dxi_d = 2, dt_d/dxi_d = 0
			} else {
				df = dfds[d] - dfdt[d] // ds_d/dxi_k = 1, dt_d/dxi_k = -1 for k > d
			}
			grad[k] += others[d] * df
		}
	}
	return
}

func collapsed(d int, xi []float64) (s, t float64) {
	t = 1
	for e := d + 1; e < len(xi); e++ {
		t -= xi[e]
	}
	s = 2*xi[d] - t
	return
}

// DubinerMass is the integral of the squared basis function over the reference simplex
func DubinerMass(idx []int) (m float64) {
	var (
		sum int
	)
	m = 1
	for d, i := range idx {
		sum += i
		m /= float64(2*sum + d + 1)
	}
	return
}

func TriDubinerP(idx [2]int, xi [2]float64) float64 {
	return DubinerP(idx[:], xi[:])
}

func GradTriDubinerP(idx [2]int, xi [2]float64) (grad [2]float64) {
	copy(grad[:], GradDubinerP(idx[:], xi[:]))
	return
}

func TetraDubinerP(idx [3]int, xi [3]float64) float64 {
	return DubinerP(idx[:], xi[:])
}

func GradTetraDubinerP(idx [3]int, xi [3]float64) (grad [3]float64) {
	copy(grad[:], GradDubinerP(idx[:], xi[:]))
	return
}
