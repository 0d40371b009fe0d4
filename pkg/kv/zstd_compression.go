package kv

import (
	"lintang/cityrouter/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

type kvConditionSample struct {
	Weather     float64
	Obstruction float64
	Traffic     float64
}

type kvConditionField struct {
	Nodes []kvConditionSample
	Edges []kvConditionSample
}

func toKVSamples(samples []datastructure.ConditionSample) []kvConditionSample {
	out := make([]kvConditionSample, len(samples))
	for i, s := range samples {
		out[i] = kvConditionSample{Weather: s.Weather, Obstruction: s.Obstruction, Traffic: s.Traffic}
	}
	return out
}

func fromKVSamples(samples []kvConditionSample) []datastructure.ConditionSample {
	out := make([]datastructure.ConditionSample, len(samples))
	for i, s := range samples {
		out[i] = datastructure.ConditionSample{Weather: s.Weather, Obstruction: s.Obstruction, Traffic: s.Traffic}
	}
	return out
}

func encode(field kvConditionField) ([]byte, error) {
	return binary.Marshal(field)
}

func decode(bb []byte) (kvConditionField, error) {
	var field kvConditionField
	err := binary.Unmarshal(bb, &field)
	return field, err
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
