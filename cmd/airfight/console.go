package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/OCAP2/airfight/internal/dispatcher"
	"github.com/OCAP2/airfight/internal/influx"
)

// console reads commands from in until ctx ends or the input closes. It
// reports whether the operator asked to quit.
func (a *app) console(ctx context.Context, in io.Reader, out io.Writer) bool {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return false
		case line, ok := <-lines:
			if !ok {
				a.logger.Debug("Console input closed")
				return false
			}
			if quit := a.execute(line, out); quit {
				return true
			}
		}
	}
}

// execute runs one console line and prints its result.
func (a *app) execute(line string, out io.Writer) (quit bool) {
	e, ok := dispatcher.ParseLine(line)
	if !ok {
		return false
	}
	if e.Command == "quit" || e.Command == "exit" {
		return true
	}

	res, err := a.dispatcher.Dispatch(e)
	switch {
	case err != nil:
		fmt.Fprintf(out, "error: %v\n", err)
	case res != nil:
		fmt.Fprintln(out, res)
	}
	return false
}

// registerCommands adds the commands served by the binary itself.
func (a *app) registerCommands(d *dispatcher.Dispatcher) {
	d.Register("help", func(dispatcher.Event) (any, error) {
		return "commands: " + strings.Join(append(d.Commands(), "quit"), ", "), nil
	})
	d.Register("version", func(dispatcher.Event) (any, error) {
		return fmt.Sprintf("%s %s (built %s)", binaryName, Version, BuildDate), nil
	})
	d.Register("metric", a.handleMetric, dispatcher.Logged())
}

// handleMetric writes an operator supplied point to InfluxDB.
func (a *app) handleMetric(e dispatcher.Event) (any, error) {
	if a.influx == nil {
		return nil, errors.New("influx telemetry is disabled")
	}
	bucket, point, err := influx.ParseMetric(e.Args)
	if err != nil {
		return nil, err
	}
	if err := a.influx.WritePoint(context.Background(), bucket, point); err != nil {
		return nil, err
	}
	return fmt.Sprintf("metric written to %s", bucket), nil
}
