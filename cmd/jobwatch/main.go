package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobwatch/internal/config"
	"jobwatch/internal/fetch"
	"jobwatch/internal/notify"
	"jobwatch/internal/parse"
	"jobwatch/internal/run"
	"jobwatch/internal/secrets"
	"jobwatch/internal/seen"
	"jobwatch/internal/store"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	fs := flag.NewFlagSet("jobwatch", flag.ContinueOnError)
	var (
		cfgPath = fs.String("config", "", "path to config.yml (default: <data>/config.yml, bootstrapped on first run)")
		dataDir = fs.String("data", "", "data directory for state and archive (default: $JOBWATCH_DATA_DIR or .)")
		dryRun  = fs.Bool("dry-run", false, "fetch, parse and diff only; no mail, no state write")
	)

	// Optional leading subcommand for keychain management.
	cmd := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *dataDir == "" {
		*dataDir = os.Getenv("JOBWATCH_DATA_DIR")
	}
	if *dataDir == "" {
		*dataDir = "."
	}
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Printf("[config] data dir: %v", err)
		return 2
	}

	cfg, code := loadConfig(*cfgPath, *dataDir)
	if code != 0 {
		return code
	}

	account := secrets.SMTPKeyringAccount(cfg.Email.SMTPUser, cfg.Email.SMTPHost)

	switch cmd {
	case "":
		return runOnce(cfg, *dataDir, *dryRun)
	case "setpass":
		return setPassword(account)
	case "delpass":
		if err := secrets.DeleteSMTPPassword(account); err != nil {
			log.Printf("[secrets] delete: %v", err)
			return 2
		}
		log.Printf("[secrets] password removed for %s", account)
		return 0
	default:
		log.Printf("unknown command %q (expected none, setpass, or delpass)", cmd)
		return 2
	}
}

func loadConfig(cfgPath, dataDir string) (config.Config, int) {
	var err error
	if cfgPath == "" {
		cfgPath, err = config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			log.Printf("[config] bootstrap failed: %v", err)
			return config.Config{}, 2
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("[config] load %s: %v", cfgPath, err)
		return config.Config{}, 2
	}

	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warn: %s", w)
	}
	if !res.OK() {
		log.Printf("[config] %v", res)
		return config.Config{}, 2
	}
	return cfg, 0
}

func runOnce(cfg config.Config, dataDir string, dryRun bool) int {
	timeout := time.Duration(cfg.Target.TimeoutSeconds) * time.Second

	limiter := fetch.NewHostLimiter(1.0, 2)
	fetcher := fetch.New(timeout, limiter)

	parser, err := parse.New(cfg.Target.URL, cfg.Target.SiteName)
	if err != nil {
		log.Printf("[config] %v", err)
		return 2
	}

	seenStore := seen.NewStore(filepath.Join(dataDir, cfg.State.SeenFile))

	var archive run.Archiver
	if cfg.State.ArchiveDB != "" {
		a, err := store.Open(filepath.Join(dataDir, cfg.State.ArchiveDB))
		if err != nil {
			// Archive is best-effort; a broken db must not stop the run.
			log.Printf("[warn] archive unavailable: %v", err)
		} else {
			defer a.Close()
			archive = a
		}
	}

	notifier := notify.New(buildTransport(cfg), cfg.Email.To, cfg.Target.SiteName)

	r := &run.Runner{
		Fetcher:   fetcher,
		Parser:    parser,
		Seen:      seenStore,
		Notifier:  notifier,
		Archive:   archive,
		TargetURL: cfg.Target.URL,
		Headers:   map[string]string{"User-Agent": cfg.App.UserAgent},
		Keywords:  cfg.CheckKeywords,
		DryRun:    dryRun,
	}

	res := r.Run(context.Background())
	if res.Failed() {
		log.Printf("[run] terminal state: failed stage=%s kind=%s err=%v", res.Stage, res.Kind, res.Err)
		return res.Kind.ExitCode()
	}
	log.Printf("[run] done: %d new job(s), %d warning(s)", len(res.NewJobs), len(res.Warnings))
	return 0
}

// buildTransport resolves the SMTP password up front. When it is missing the
// run still proceeds: with no new jobs nothing is sent and the run is clean,
// otherwise the send fails loudly with the notify exit code.
func buildTransport(cfg config.Config) notify.Transport {
	account := secrets.SMTPKeyringAccount(cfg.Email.SMTPUser, cfg.Email.SMTPHost)
	pw, err := secrets.SMTPPassword(account)
	if err != nil {
		log.Printf("[warn] %v", err)
		return errTransport{err: err}
	}

	return notify.NewSMTPTransport(notify.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUser,
		Password: pw,
		From:     cfg.Email.SMTPFrom,
		Timeout:  30 * time.Second,
	})
}

type errTransport struct{ err error }

func (t errTransport) Send(ctx context.Context, msg notify.Message) error { return t.err }

func setPassword(account string) int {
	fmt.Fprintf(os.Stderr, "password for %s: ", account)
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		log.Printf("[secrets] no input")
		return 2
	}
	if err := secrets.SetSMTPPassword(account, strings.TrimSpace(sc.Text())); err != nil {
		log.Printf("[secrets] set: %v", err)
		return 2
	}
	log.Printf("[secrets] password stored for %s", account)
	return 0
}
