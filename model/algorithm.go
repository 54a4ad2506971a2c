package model

// Algorithm identifies a clustering algorithm variant.
type Algorithm string

// Supported algorithm variants. The spectral variants seed community
// detection with a hierarchical two-level k-means partition.
const (
	AlgoLouvain         Algorithm = "louvain"
	AlgoLeiden          Algorithm = "leiden"
	AlgoSpectralLouvain Algorithm = "spectral_louvain"
	AlgoSpectralLeiden  Algorithm = "spectral_leiden"
)

// Spectral reports whether the variant uses hierarchical k-means seeding.
func (a Algorithm) Spectral() bool {
	return a == AlgoSpectralLouvain || a == AlgoSpectralLeiden
}

// Base returns the underlying detection backend for a variant: spectral
// variants map to their non-spectral counterpart.
func (a Algorithm) Base() Algorithm {
	switch a {
	case AlgoSpectralLouvain:
		return AlgoLouvain
	case AlgoSpectralLeiden:
		return AlgoLeiden
	}
	return a
}

// Valid reports whether a is a known algorithm identifier.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgoLouvain, AlgoLeiden, AlgoSpectralLouvain, AlgoSpectralLeiden:
		return true
	}
	return false
}

// String returns the algorithm identifier.
func (a Algorithm) String() string { return string(a) }
