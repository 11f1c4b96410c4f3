package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

func (v Validation) Error() string {
	return "config validation failed:\n- " + strings.Join(v.Errors, "\n- ")
}

// NormalizeAndValidate fills defaults, trims list entries, and checks the
// fields a run cannot work without. Warnings are surfaced by the caller but
// never stop a run.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.CheckKeywords = trimList(out.CheckKeywords)

	// ---- Defaults ----

	if out.App.DataDir == "" {
		out.App.DataDir = "."
	}
	if out.App.UserAgent == "" {
		out.App.UserAgent = "jobwatch/1.0"
	}
	if out.Target.URL == "" {
		out.Target.URL = "https://work.mercor.com/explore"
	}
	if out.Target.SiteName == "" {
		out.Target.SiteName = "Mercor"
	}
	if out.Target.TimeoutSeconds <= 0 {
		out.Target.TimeoutSeconds = 30
	}
	if out.Email.SMTPHost == "" {
		out.Email.SMTPHost = "smtp.gmail.com"
	}
	if out.Email.SMTPPort == 0 {
		out.Email.SMTPPort = 465
	}
	if strings.TrimSpace(out.Email.SMTPUser) == "" {
		out.Email.SMTPUser = out.Email.To
	}
	if strings.TrimSpace(out.Email.SMTPFrom) == "" {
		out.Email.SMTPFrom = out.Email.SMTPUser
	}
	if out.State.SeenFile == "" {
		out.State.SeenFile = "seen_jobs.json"
	}

	// ---- Validation rules ----

	if strings.TrimSpace(out.Email.To) == "" {
		res.addErr("email.to is required")
	}
	if out.Email.SMTPPort < 1 || out.Email.SMTPPort > 65535 {
		res.addErr("email.smtp_port must be 1..65535")
	}
	if !strings.HasPrefix(out.Target.URL, "http://") && !strings.HasPrefix(out.Target.URL, "https://") {
		res.addErr("target.url must be an http(s) URL, got %q", out.Target.URL)
	}
	if out.Target.TimeoutSeconds > 300 {
		res.addWarn("target.timeout_seconds is very high (%d); scheduled runs have a wall-clock ceiling.", out.Target.TimeoutSeconds)
	}
	if len(out.CheckKeywords) > 50 {
		res.addWarn("check_keywords has %d entries; consider tightening it.", len(out.CheckKeywords))
	}
	if out.State.ArchiveDB == "" {
		res.addWarn("state.archive_db is empty; new jobs will not be archived.")
	}

	return out, res
}
