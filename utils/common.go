package utils

const (
	// NODETOL is the tolerance used to identify coincident reference or physical points
	NODETOL = 1.e-12
)
