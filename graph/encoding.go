package graph

import (
	"bytes"
	"encoding/gob"
)

// graphWire mirrors Graph with exported fields for gob.
type graphWire struct {
	Offsets  []int32
	Nbrs     []int32
	Weights  []float64
	Self     []float64
	Strength []float64
	Total    float64
}

// GobEncode implements gob.GobEncoder so graphs survive snapshots.
func (g *Graph) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(graphWire{
		Offsets:  g.offsets,
		Nbrs:     g.nbrs,
		Weights:  g.weights,
		Self:     g.self,
		Strength: g.strength,
		Total:    g.total,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (g *Graph) GobDecode(data []byte) error {
	var w graphWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	g.offsets = w.Offsets
	g.nbrs = w.Nbrs
	g.weights = w.Weights
	g.self = w.Self
	g.strength = w.Strength
	g.total = w.Total
	return nil
}
