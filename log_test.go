package gocapture

import "testing"

func TestLogCallbackRespectsLevelThreshold(t *testing.T) {
	var got []string
	SetLogCallback(func(level LogLevel, message string) { got = append(got, message) })
	defer SetLogCallback(nil)

	SetLogLevel(LogError)
	defer SetLogLevel(LogWarning)

	logf(LogDebug, "should be dropped")
	if len(got) != 0 {
		t.Fatalf("expected no messages below threshold, got %v", got)
	}

	logf(LogError, "visible message")
	if len(got) != 1 || got[0] != "visible message" {
		t.Fatalf("got %v", got)
	}
}

func TestLogLevelStrings(t *testing.T) {
	cases := map[LogLevel]string{
		LogQuiet: "quiet", LogError: "error", LogWarning: "warning",
		LogInfo: "info", LogDebug: "debug",
	}
	for level, want := range cases {
		if level.String() != want {
			t.Fatalf("%v.String() = %q, want %q", level, level.String(), want)
		}
	}
}
