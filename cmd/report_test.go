package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
)

func TestPrintTextReport_Live(t *testing.T) {
	resetCLIState(t)

	report := newRunReport(testTarget(), time.Now(), checker.Verdict{
		Overall: checker.StatusFail,
		Reason:  checker.VerdictBlockingSignal,
		Message: "browser reported 1 CORS blocking message(s)",
		Mode:    checker.ModeLive,
		Details: []checker.ProbeOutcome{
			{URL: "https://cms.example.com/api", Reason: checker.ReasonBlocked, CORSError: true},
			{URL: "https://cms.example.com/img.png", HTTPStatus: 200, AllowOrigin: "*", Reason: checker.ReasonObserved},
		},
		Warnings: []string{"something odd"},
	})

	var out bytes.Buffer
	if err := printReport(&out, report, formatText); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	text := out.String()

	for _, want := range []string{
		"https://cms.example.com/api",
		"status=-",
		"blocked",
		"status=200",
		"ACAO=*",
		"ACAH=-",
		"WARN something odd",
		"RESULT: FAIL - browser reported 1 CORS blocking message(s) (blocking-signal-observed)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestPrintReport_UnknownFormat(t *testing.T) {
	var out bytes.Buffer
	if err := printReport(&out, RunReport{}, "yaml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestNewRunReport(t *testing.T) {
	started := time.Now().Add(-time.Second)
	r := newRunReport(testTarget(), started, checker.Verdict{Overall: checker.StatusPass})
	if r.RunID == "" || r.TargetHost != "cms.example.com" {
		t.Fatalf("unexpected report: %+v", r)
	}
	if r.CompletedAt.Before(r.StartedAt) {
		t.Fatalf("completed %s before started %s", r.CompletedAt, r.StartedAt)
	}
}
