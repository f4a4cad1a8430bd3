package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
	"unsafe"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/oliverbestmann/imposter"
)

var errMissingValue = errors.New("missing value")

type smallValue struct {
	X, Y float32
}

type largeValue struct {
	Values [16]float64
}

// pushCommand fills a vec and a slice of boxed values with the same workload.
type pushCommand struct {
	name string

	count       *int
	valueType   *string
	removeEvery *int
}

type result struct {
	Name    string
	Elapsed time.Duration
	Len     int
	Cap     int
	Bytes   uint64
}

func addPushCommand(app *kingpin.Application) *pushCommand {
	cmd := &pushCommand{name: "push"}

	clause := app.Command(cmd.name, "Push values, read them back and optionally remove some.")
	cmd.count = clause.Flag("count", "Number of values to push.").Default("1000000").Int()
	cmd.valueType = clause.Flag("type", "Type of the values.").Default("small").Enum("small", "large", "string")
	cmd.removeEvery = clause.Flag("remove-every", "Remove every nth value after pushing, 0 to disable.").Default("0").Int()

	return cmd
}

func (cmd *pushCommand) run() error {
	switch *cmd.valueType {
	case "small":
		return compare(*cmd.count, *cmd.removeEvery, func(idx int) smallValue {
			return smallValue{X: float32(idx), Y: float32(-idx)}
		})

	case "large":
		return compare(*cmd.count, *cmd.removeEvery, func(idx int) largeValue {
			return largeValue{Values: [16]float64{float64(idx)}}
		})

	default:
		return compare(*cmd.count, *cmd.removeEvery, strconv.Itoa)
	}
}

func compare[T any](count, removeEvery int, makeValue func(int) T) error {
	vec, err := runVec(count, removeEvery, makeValue)
	if err != nil {
		return fmt.Errorf("erased vec: %w", err)
	}

	boxed, err := runBoxed(count, removeEvery, makeValue)
	if err != nil {
		return fmt.Errorf("boxed values: %w", err)
	}

	printResult(vec, vec.Elapsed <= boxed.Elapsed)
	printResult(boxed, boxed.Elapsed < vec.Elapsed)

	return nil
}

func runVec[T any](count, removeEvery int, makeValue func(int) T) (result, error) {
	startTime := time.Now()

	vec := imposter.NewVec[T]()
	defer vec.Drop()

	for idx := range count {
		if err := imposter.Push(vec, makeValue(idx)); err != nil {
			return result{}, fmt.Errorf("push value %d: %w", idx, err)
		}
	}

	for idx := range vec.Len() {
		if _, ok := imposter.Get[T](vec, idx); !ok {
			return result{}, fmt.Errorf("get value %d: %w", idx, errMissingValue)
		}
	}

	if removeEvery > 0 {
		for idx := vec.Len() - 1; idx >= 0; idx -= removeEvery {
			if _, ok := imposter.Remove[T](vec, idx); !ok {
				return result{}, fmt.Errorf("remove value %d: %w", idx, errMissingValue)
			}
		}
	}

	return result{
		Name:    "vec",
		Elapsed: time.Since(startTime),
		Len:     vec.Len(),
		Cap:     vec.Cap(),
		Bytes:   uint64(vec.Cap()) * uint64(vec.Type().Size),
	}, nil
}

func runBoxed[T any](count, removeEvery int, makeValue func(int) T) (result, error) {
	startTime := time.Now()

	var values []any
	for idx := range count {
		values = append(values, makeValue(idx))
	}

	for idx := range values {
		if _, ok := values[idx].(T); !ok {
			return result{}, fmt.Errorf("get value %d: %w", idx, errMissingValue)
		}
	}

	if removeEvery > 0 {
		for idx := len(values) - 1; idx >= 0; idx -= removeEvery {
			values = slices.Delete(values, idx, idx+1)
		}
	}

	var zero T

	// one interface header per slot plus one allocation per value
	bytes := uint64(cap(values))*uint64(unsafe.Sizeof(any(nil))) + uint64(len(values))*uint64(unsafe.Sizeof(zero))

	return result{
		Name:    "boxed",
		Elapsed: time.Since(startTime),
		Len:     len(values),
		Cap:     cap(values),
		Bytes:   bytes,
	}, nil
}

func printResult(r result, fastest bool) {
	elapsed := r.Elapsed.String()
	if fastest {
		elapsed = color.GreenString(elapsed)
	}

	fmt.Printf("%-6s len=%d cap=%d memory=%s elapsed=%s\n",
		color.CyanString(r.Name), r.Len, r.Cap, humanize.Bytes(r.Bytes), elapsed)
}
