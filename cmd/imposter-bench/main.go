package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/profile"
)

type stopper interface {
	Stop()
}

type noProfile struct{}

func (noProfile) Stop() {}

func main() {
	app := kingpin.New("imposter-bench", "Compares erased vecs and imposters against boxed values.")

	verbose := app.Flag("verbose", "Log debug output, e.g. every reallocation.").Short('v').Bool()
	profileMode := app.Flag("profile", "Write a profile of the run to the current directory.").
		Default("none").Enum("none", "cpu", "mem")

	push := addPushCommand(app)
	cell := addCellCommand(app)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	prof := startProfile(*profileMode)

	var err error
	switch command {
	case push.name:
		err = push.run()
	case cell.name:
		err = cell.run()
	}

	prof.Stop()

	if err != nil {
		exitWithErr(err)
	}
}

func startProfile(mode string) stopper {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."))
	default:
		return noProfile{}
	}
}

func exitWithErr(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
