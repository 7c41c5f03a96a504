package annlib

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithLoggerReceivesBuildEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	idx, err := NewIVFIndex(4, 1, L2, WithSeed(1), WithLogger(logger))
	if err != nil {
		t.Fatalf("NewIVFIndex() error = %v", err)
	}
	if err := idx.Add(0, make([]float32, 4)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := idx.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if logs.FilterMessage("ivf: build complete").Len() == 0 {
		t.Error("expected a caller-supplied logger to observe the build-complete log line")
	}
}

func TestWithHNSWLoggerReceivesPruneEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	idx, err := NewHNSWIndex(2, 1, L2, WithMMax(1), WithHNSWLogger(logger))
	if err != nil {
		t.Fatalf("NewHNSWIndex() error = %v", err)
	}
	for i := int64(0); i < 4; i++ {
		if err := idx.Add(i, []float32{float32(i), float32(i)}); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if logs.FilterMessage("hnsw: pruned overflowing neighbor").Len() == 0 {
		t.Error("expected a caller-supplied logger to observe at least one prune event with MMax=1")
	}
}
