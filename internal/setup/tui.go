// Package setup implements the terminal configuration wizard.
package setup

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes the result
// to scanner.yaml.
func RunTUI() error {
	// defaults
	minLiquidityStr := "200000"
	minAgeStr := "1"
	maxAgeStr := "48"
	pollIntervalStr := "5m"
	realertHoursStr := "6"
	maxAlertsPerDayStr := "10"
	stateDir := "./state"
	confirm := false

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PUMP SCANNER CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Tune what counts as a gem.\n"))

	fmt.Println(stepStyle.Render("STEP 1: FILTERS"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Minimum Liquidity (USD)").
				Description("Tokens below this are ignored (e.g. 200000)").
				Value(&minLiquidityStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Minimum Age (hours)").
				Description("Skip tokens newer than this").
				Value(&minAgeStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Maximum Age (hours)").
				Description("Skip tokens older than this").
				Value(&maxAgeStr).
				Validate(validateDecimal),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PUMP SCANNER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: TIMING & ALERTS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll Interval").
				Description("Duration string (e.g. 30s, 5m)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewInput().
				Title("Re-alert Cooldown (hours)").
				Description("0 means a token alerts once ever").
				Value(&realertHoursStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Max Alerts Per Token Per Day").
				Value(&maxAlertsPerDayStr),
			huh.NewInput().
				Title("State Directory").
				Value(&stateDir),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PUMP SCANNER CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: CONFIRM"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write scanner.yaml? (min liq $%s, age %s-%sh, poll %s)",
					minLiquidityStr, minAgeStr, maxAgeStr, pollIntervalStr)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		fmt.Println("aborted, nothing written")
		return nil
	}

	realertHours, err := decimal.NewFromString(realertHoursStr)
	if err != nil {
		return err
	}
	realert, _ := realertHours.Float64()

	maxAlerts, err := strconv.Atoi(maxAlertsPerDayStr)
	if err != nil {
		return fmt.Errorf("max alerts per day must be an integer: %w", err)
	}

	out := map[string]any{
		"min_liquidity":                minLiquidityStr,
		"min_age_hours":                minAgeStr,
		"max_age_hours":                maxAgeStr,
		"poll_interval":                pollIntervalStr,
		"realert_hours":                realert,
		"max_alerts_per_token_per_day": maxAlerts,
		"state_dir":                    stateDir,
	}

	payload, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	if err := os.WriteFile("scanner.yaml", payload, 0o644); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("scanner.yaml written. Start with: scanner --config scanner.yaml"))
	return nil
}

func validateDecimal(s string) error {
	if _, err := decimal.NewFromString(s); err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	return nil
}
