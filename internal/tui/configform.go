package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianshen/codefsm/internal/config"
)

// ConfigForm wraps a Huh form for editing the codefsm user configuration.
type ConfigForm struct {
	form       *huh.Form
	cfg        *config.Config
	savePath   string
	argsStr    string
	timeoutStr string
	maxSizeStr string
}

// NewConfigForm creates a config editor form populated from the given config.
func NewConfigForm(cfg *config.Config, savePath string) *ConfigForm {
	cf := &ConfigForm{
		cfg:        cfg,
		savePath:   savePath,
		argsStr:    strings.Join(cfg.Oracle.Args, " "),
		timeoutStr: cfg.Oracle.Timeout.String(),
		maxSizeStr: fmt.Sprintf("%d", cfg.Scan.MaxFileSize),
	}

	oracleGroup := huh.NewGroup(
		huh.NewInput().
			Title("Oracle command").
			Description("Executable that reads the prompt on stdin").
			Value(&cfg.Oracle.Command),
		huh.NewInput().
			Title("Oracle arguments").
			Placeholder("--print").
			Value(&cf.argsStr),
		huh.NewInput().
			Title("Timeout").
			Description("Go duration, 0 disables").
			Value(&cf.timeoutStr).
			Validate(validateDuration),
		huh.NewInput().
			Title("Prompt file directory").
			Placeholder("system temp dir").
			Value(&cfg.Oracle.TempDir),
	).Title("Oracle")

	scanGroup := huh.NewGroup(
		huh.NewInput().
			Title("Max file size (bytes)").
			Value(&cf.maxSizeStr).
			Validate(validateSize),
	).Title("Scan")

	outputGroup := huh.NewGroup(
		huh.NewInput().
			Title("Output directory").
			Value(&cfg.Output.Dir),
		huh.NewConfirm().
			Title("Record run history").
			Value(&cfg.History.Enabled),
	).Title("Output")

	cf.form = huh.NewForm(oracleGroup, scanGroup, outputGroup)

	return cf
}

// GroupCount returns the number of form groups.
func (c *ConfigForm) GroupCount() int { return 3 }

// Save copies the text fields back into the config and persists it.
func (c *ConfigForm) Save() error {
	c.cfg.Oracle.Args = strings.Fields(c.argsStr)
	if d, err := time.ParseDuration(strings.TrimSpace(c.timeoutStr)); err == nil {
		c.cfg.Oracle.Timeout = d
	}
	var size int64
	if _, err := fmt.Sscan(c.maxSizeStr, &size); err == nil {
		c.cfg.Scan.MaxFileSize = size
	}
	return config.Save(c.savePath, c.cfg)
}

// Form returns the underlying huh.Form.
func (c *ConfigForm) Form() *huh.Form { return c.form }

// Run shows the form and saves the result unless the user aborts.
func (c *ConfigForm) Run() error {
	if err := c.form.Run(); err != nil {
		return err
	}
	return c.Save()
}

// IsCompleted returns true if the form has been completed (submitted).
func (c *ConfigForm) IsCompleted() bool { return c.form.State == huh.StateCompleted }

// IsAborted returns true if the form has been aborted (cancelled).
func (c *ConfigForm) IsAborted() bool { return c.form.State == huh.StateAborted }

func validateDuration(s string) error {
	if s = strings.TrimSpace(s); s == "0" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("not a duration: %q", s)
	}
	if d < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func validateSize(s string) error {
	var n int64
	if _, err := fmt.Sscan(s, &n); err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	if n < 0 {
		return fmt.Errorf("size must not be negative")
	}
	return nil
}
