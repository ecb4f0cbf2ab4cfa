package util

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	defer Logger.SetLevel(logrus.WarnLevel)

	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel(debug): %v", err)
	}
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}

	if err := SetLogLevel("nonsense"); err == nil {
		t.Error("SetLogLevel(nonsense) should fail")
	}
}

func TestWithRouter(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)
	defer Logger.SetLevel(logrus.WarnLevel)
	Logger.SetLevel(logrus.InfoLevel)

	WithRouter("core-rb5009").Info("connected")

	out := buf.String()
	if !strings.Contains(out, "router=core-rb5009") {
		t.Errorf("log output missing router field: %q", out)
	}
}
