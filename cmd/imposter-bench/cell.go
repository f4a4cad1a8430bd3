package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/oliverbestmann/imposter"
)

// cellCommand erases values into imposters and downcasts them again.
type cellCommand struct {
	name string

	count *int
}

func addCellCommand(app *kingpin.Application) *cellCommand {
	cmd := &cellCommand{name: "cell"}

	clause := app.Command(cmd.name, "Erase values into imposters and downcast them, including a wrong type first.")
	cmd.count = clause.Flag("count", "Number of values to erase.").Default("1000000").Int()

	return cmd
}

func (cmd *cellCommand) run() error {
	startTime := time.Now()

	var mismatches int

	for idx := range *cmd.count {
		imp := imposter.New(smallValue{X: float32(idx)})

		// a failed downcast must keep the value
		if _, err := imposter.Downcast[largeValue](imp); errors.Is(err, imposter.ErrTypeMismatch) {
			mismatches += 1
		}

		value, err := imposter.Downcast[smallValue](imp)
		if err != nil {
			return fmt.Errorf("downcast value %d: %w", idx, err)
		}

		if value.X != float32(idx) {
			return fmt.Errorf("downcast value %d: got %v", idx, value.X)
		}
	}

	elapsed := time.Since(startTime)

	slog.Debug("Cells done", slog.Int("count", *cmd.count), slog.Int("mismatches", mismatches))

	fmt.Printf("%-6s count=%d mismatches=%d elapsed=%s\n",
		color.CyanString("cell"), *cmd.count, mismatches, color.GreenString(elapsed.String()))

	return nil
}
