// ABOUTME: Tests for the CLI help output.
// ABOUTME: Verifies the version, every mode, and the env variable listing appear.
package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf, "1.2.3")
	out := buf.String()

	if !strings.Contains(out, "kudo 1.2.3") {
		t.Error("missing version")
	}
	for _, want := range []string{"-web", "-export", "-login", "-logout", "-anonymous", "-version"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %s", want)
		}
	}
	if !strings.Contains(out, "KUDO_API_URL") {
		t.Error("help missing environment section")
	}
}
