package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
)

// RunReport is the printed result of one run.
type RunReport struct {
	RunID       string          `json:"run_id"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	PageURL     string          `json:"page_url"`
	Origin      string          `json:"origin"`
	TargetHost  string          `json:"target_host"`
	Verdict     checker.Verdict `json:"verdict"`
}

func newRunReport(target checker.Target, started time.Time, verdict checker.Verdict) RunReport {
	return RunReport{
		RunID:       uuid.NewString(),
		StartedAt:   started.UTC(),
		CompletedAt: time.Now().UTC(),
		PageURL:     target.PageURL,
		Origin:      target.Origin,
		TargetHost:  target.HostPattern,
		Verdict:     verdict,
	}
}

func printReport(w io.Writer, report RunReport, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatText, "":
		return printTextReport(w, report)
	default:
		return &ConfigError{Field: "format", Err: fmt.Errorf("unsupported format %q (want text or json)", format)}
	}
}

func printTextReport(w io.Writer, report RunReport) error {
	v := report.Verdict
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, o := range v.Details {
		if v.Mode == checker.ModeLive {
			fmt.Fprintf(tw, "%s\tstatus=%s\tACAO=%s\tACAH=%s%s\n",
				o.URL, statusLabel(o.HTTPStatus), valueOrDash(o.AllowOrigin), valueOrDash(o.AllowHeaders), liveSuffix(o))
			continue
		}
		if o.Permitted {
			fmt.Fprintf(tw, "%s\t%s\n", formatStatusWithColor("PASS"), o.URL)
			continue
		}
		detail := string(o.Reason)
		if o.Error != "" {
			detail += ": " + o.Error
		}
		fmt.Fprintf(tw, "%s\t%s (%s)\n", formatStatusWithColor("FAIL"), o.URL, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, msg := range v.Warnings {
		fmt.Fprintf(w, "%s %s\n", formatStatusWithColor("WARN"), msg)
	}

	fmt.Fprintf(w, "%s %s - %s %s\n",
		colorBold("RESULT:"), formatStatusWithColor(string(v.Overall)), v.Message, colorInfo("("+string(v.Reason)+")"))
	return nil
}

func liveSuffix(o checker.ProbeOutcome) string {
	switch o.Reason {
	case checker.ReasonBlocked, checker.ReasonNoResponse, checker.ReasonErrorStatus:
		return "\t" + colorWarn(string(o.Reason))
	default:
		return ""
	}
}

func statusLabel(status int) string {
	if status == 0 {
		return "-"
	}
	return fmt.Sprint(status)
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
