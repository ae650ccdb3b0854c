package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-blogbook/internal/config"
	"github.com/alnah/go-blogbook/internal/fileutil"
)

// Check levels reported by doctor.
const (
	levelOK    = "ok"
	levelWarn  = "warn"
	levelError = "error"
)

// doctorCheck is one diagnostic line.
type doctorCheck struct {
	Name   string `json:"name"`
	Level  string `json:"level"`
	Detail string `json:"detail"`
}

// doctorReport collects every check and the overall status.
type doctorReport struct {
	Status   string        `json:"status"` // "ready", "warnings", "errors"
	Platform string        `json:"platform"`
	Checks   []doctorCheck `json:"checks"`
}

func (r *doctorReport) add(name, level, format string, args ...any) {
	r.Checks = append(r.Checks, doctorCheck{Name: name, Level: level, Detail: fmt.Sprintf(format, args...)})
}

// runDoctorCmd checks the browser, the environment and the configured
// content root. Warnings still exit 0; any error exits 1.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	configName := ""
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--json":
			jsonOutput = true
		case (args[i] == "--config" || args[i] == "-c") && i+1 < len(args):
			configName = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--config="):
			configName = strings.TrimPrefix(args[i], "--config=")
		}
	}

	report := diagnose(env, configName)
	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

func diagnose(env *Environment, configName string) *doctorReport {
	r := &doctorReport{Platform: runtime.GOOS + "/" + runtime.GOARCH}

	checkBrowser(r, env)
	checkSandbox(r, env)
	cfg := checkConfig(r, env, configName)
	checkContent(r, cfg)
	checkOutput(r, cfg)

	r.Status = "ready"
	for _, c := range r.Checks {
		if c.Level == levelError {
			r.Status = "errors"
			break
		}
		if c.Level == levelWarn {
			r.Status = "warnings"
		}
	}
	return r
}

func checkBrowser(r *doctorReport, env *Environment) {
	bin := env.Getenv("ROD_BROWSER_BIN")
	if bin == "" {
		var found bool
		if bin, found = launcher.LookPath(); !found {
			r.add("browser", levelError, "Chrome/Chromium not found; install it or set ROD_BROWSER_BIN")
			return
		}
	}
	if !fileutil.FileExists(bin) {
		r.add("browser", levelError, "no browser at %s", bin)
		return
	}

	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err != nil {
		r.add("browser", levelWarn, "%s (version unknown: %v)", bin, err)
		return
	}
	r.add("browser", levelOK, "%s (%s)", bin, strings.TrimSpace(string(out)))
}

func checkSandbox(r *doctorReport, env *Environment) {
	container := containerHint(env)
	ci := false
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			ci = true
			break
		}
	}

	switch {
	case env.Getenv("ROD_NO_SANDBOX") == "1":
		r.add("sandbox", levelOK, "disabled (ROD_NO_SANDBOX=1)")
	case container != "":
		r.add("sandbox", levelWarn, "container detected (%s); set ROD_NO_SANDBOX=1", container)
	case ci:
		r.add("sandbox", levelWarn, "CI detected; set ROD_NO_SANDBOX=1")
	default:
		r.add("sandbox", levelOK, "enabled")
	}
}

// containerHint names the signal that revealed a container, or "".
func containerHint(env *Environment) string {
	if env.Getenv("BLOGBOOK_CONTAINER") == "1" {
		return "BLOGBOOK_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return "/.dockerenv"
	}
	if v := env.Getenv("container"); v != "" {
		return "container=" + v
	}
	if env.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "KUBERNETES_SERVICE_HOST"
	}
	return ""
}

func checkConfig(r *doctorReport, env *Environment, name string) *config.Config {
	if name == "" {
		name = env.Getenv("BLOGBOOK_CONFIG")
	}
	if name == "" {
		r.add("config", levelOK, "defaults (no config file)")
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		r.add("config", levelError, "%v", err)
		return config.DefaultConfig()
	}
	r.add("config", levelOK, "loaded %s", name)
	return cfg
}

func checkContent(r *doctorReport, cfg *config.Config) {
	if !fileutil.DirExists(cfg.Content.Root) {
		r.add("content", levelWarn, "content root %s not found", cfg.Content.Root)
		return
	}
	r.add("content", levelOK, "content root %s", cfg.Content.Root)
}

func checkOutput(r *doctorReport, cfg *config.Config) {
	dir := os.TempDir()
	tmp, err := os.CreateTemp(dir, "blogbook-doctor-*")
	if err != nil {
		r.add("temp", levelError, "%s not writable: %v", dir, err)
		return
	}
	_ = tmp.Close()
	_ = os.Remove(tmp.Name())
	r.add("temp", levelOK, "%s writable", dir)

	parent := filepath.Dir(filepath.Clean(cfg.Output.Dir))
	if !fileutil.DirExists(parent) {
		r.add("output", levelWarn, "parent of %s does not exist", cfg.Output.Dir)
	}
}

func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintf(w, "blogbook doctor (%s)\n\n", r.Platform)
	for _, c := range r.Checks {
		fmt.Fprintf(w, "  [%-5s] %-8s %s\n", strings.ToUpper(c.Level), c.Name, c.Detail)
	}
	fmt.Fprintln(w)

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
