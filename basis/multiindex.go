package basis

// AllIntegerSums enumerates the multi-indices of dimension dim with total degree up to
// degree. Indices are ordered by total degree, within a degree by the last entry,
// recursively: (0,0), (1,0), (0,1), (2,0), (1,1), (0,2), ...
func AllIntegerSums(dim, degree int) (idx [][]int) {
	for n := 0; n <= degree; n++ {
		idx = append(idx, integerSums(dim, n)...)
	}
	return
}

func integerSums(dim, n int) (idx [][]int) {
	if dim == 1 {
		return [][]int{{n}}
	}
	for last := 0; last <= n; last++ {
		for _, head := range integerSums(dim-1, n-last) {
			ind := make([]int, 0, dim)
			ind = append(ind, head...)
			idx = append(idx, append(ind, last))
		}
	}
	return
}

// NumBasisFunctions is the dimension of the polynomials of total degree up to degree
// in dim variables, binomial(degree+dim, dim)
func NumBasisFunctions(dim, degree int) (n int) {
	n = 1
	for d := 1; d <= dim; d++ {
		n = n * (degree + d) / d
	}
	return
}
