package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/calvinmclean/stepctl/calibrate"
)

type CalibrateCommand struct {
	Plot string `long:"plot" description:"Save a plot of measured and expected times, format from the extension (.png, .svg, .pdf)"`
	Save bool   `long:"save" description:"Store the result as default_rpm in the config file"`
}

func (c *CalibrateCommand) Execute(args []string) error {
	ctl, cfg, err := openController(newLogger())
	if err != nil {
		return err
	}
	defer ctl.Close()

	fmt.Println(headerStyle.Render("Stepper max speed test"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("start %g rpm, +%g rpm per trial, %g° per trial",
		cfg.Calibration.BaseSpeed, cfg.Calibration.SpeedIncrement, cfg.Calibration.TestAngle)))
	fmt.Println()

	result, err := ctl.Calibrate()
	if len(result.Trials) > 0 {
		fmt.Println(trialTable(result))
		fmt.Println()
	}
	if err != nil {
		if errors.Is(err, calibrate.ErrUnstableBaseSpeed) {
			fmt.Println(dimStyle.Render("Lower base_speed in the calibration config and try again."))
		}
		return err
	}

	if result.Capped {
		fmt.Println(dimStyle.Render("The search stopped at its limit before the timing drifted. The motor may go faster."))
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Max speed: %g rpm", result.MaxSpeed)))

	if c.Plot != "" {
		err = calibrate.SavePlot(result, c.Plot)
		if err != nil {
			return err
		}
		fmt.Printf("Plot saved to %s\n", c.Plot)
	}

	if c.Save {
		cfg.DefaultRPM = result.MaxSpeed
		err = cfg.SaveTo(opts.Config)
		if err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
		fmt.Printf("default_rpm saved to %s\n", opts.Config)
	}

	reportDryRun(ctl)
	return nil
}

func trialTable(r calibrate.Result) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	passStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, len(r.Trials))
	for _, t := range r.Trials {
		rows = append(rows, []string{
			fmt.Sprintf("%g", t.Speed),
			t.Elapsed.Round(time.Millisecond).String(),
			t.Expected.Round(time.Millisecond).String(),
			t.Diff.Round(100 * time.Microsecond).String(),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("RPM", "Measured", "Expected", "Diff").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 3 && row >= 0 && row < len(r.Trials) {
				if r.Trials[row].Passed(r.Margin) {
					return passStyle
				}
				return failStyle
			}
			return tableCellStyle
		}).
		Render()
}
