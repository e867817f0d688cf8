package app

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nrs-cansat/telemetry/internal/receiver"
	"github.com/nrs-cansat/telemetry/internal/storage"
)

// console is the line-oriented operator interface:
//
//	start            enable csv logging
//	stop             disable csv logging
//	servo <a> <b>    set servo angles (debounced)
//	<anything else>  send as an opaque control token
type console struct {
	csvLog *storage.CSVLog
	sender *receiver.CommandSender
	logger *slog.Logger
}

// runConsole reads operator commands until EOF or cancellation.
func runConsole(ctx context.Context, in io.Reader, c console) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.handle(line)
	}
}

func (c console) handle(line string) {
	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case "start":
		c.csvLog.Start()
		c.logger.Info("csv logging enabled", slog.Uint64("rows", c.csvLog.Rows()))
		return

	case "stop":
		c.csvLog.Stop()
		c.logger.Info("csv logging disabled", slog.Uint64("rows", c.csvLog.Rows()))
		return

	case "servo":
		if len(fields) != 3 {
			c.logger.Warn("usage: servo <angle1> <angle2>")
			return
		}
		servo1, err1 := strconv.Atoi(fields[1])
		servo2, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			c.logger.Warn("servo angles must be integers", slog.String("input", line))
			return
		}
		if c.sender == nil {
			c.logger.Warn("servo command ignored: no wired link")
			return
		}
		if err := c.sender.SetAngles(servo1, servo2); err != nil {
			c.logger.Warn("servo command rejected", slog.String("error", err.Error()))
		}
		return
	}

	if c.sender == nil {
		c.logger.Warn("control token ignored: no wired link", slog.String("token", line))
		return
	}
	if err := c.sender.SendToken(line); err != nil {
		c.logger.Warn("control token failed", slog.String("error", err.Error()))
	}
}
