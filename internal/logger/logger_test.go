package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultIsNop(t *testing.T) {
	if Logger == nil {
		t.Fatal("Logger is nil before Initialize")
	}
	Logger.Infow("discarded", FieldFile, "x")
}

func TestInitializeLevels(t *testing.T) {
	defer func() { Logger = zap.NewNop().Sugar(); JSONOutput = false }()

	if err := Initialize(false, false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if Logger.Desugar().Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info enabled without debug")
	}
	if !Logger.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn disabled")
	}

	if err := Initialize(true, true); err != nil {
		t.Fatalf("Initialize json: %v", err)
	}
	if !JSONOutput {
		t.Fatal("JSONOutput not set")
	}
	if !Named("block").Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug disabled with debug flag")
	}
	Cleanup()
}
