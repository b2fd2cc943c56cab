// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	pb "gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/substake/scan"
)

func fatal(args ...interface{}) {
	w := fatalWriter()
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func fatalWriter() io.Writer {
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		return os.Stdout
	}
	outf, _ := os.Stdout.Stat()
	errf, _ := os.Stderr.Stat()
	if outf != nil && errf != nil && os.SameFile(outf, errf) {
		return os.Stderr
	}
	return io.MultiWriter(os.Stdout, os.Stderr)
}

func initLogger(ctx *cli.Context) {
	logLevel := ctx.GlobalInt(verbosityFlag.Name)
	log15.Root().SetHandler(log15.LvlFilterHandler(log15.Lvl(logLevel), log15.StderrHandler))
}

// parseRange reads an index range given as "COUNT" (meaning 0:COUNT) or
// "START:END" (END exclusive).
func parseRange(s string) (start, count uint32, err error) {
	if s == "" {
		return 0, 0, errors.New("empty range")
	}
	if a, b, found := strings.Cut(s, ":"); found {
		from, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return 0, 0, errors.Errorf("malformed range %q", s)
		}
		to, err := strconv.ParseUint(b, 10, 32)
		if err != nil {
			return 0, 0, errors.Errorf("malformed range %q", s)
		}
		if to <= from {
			return 0, 0, errors.Errorf("range %q must have END > START", s)
		}
		return uint32(from), uint32(to - from), nil
	}
	n, err2 := strconv.ParseUint(s, 10, 32)
	if err2 != nil || n == 0 {
		return 0, 0, errors.Errorf("malformed range %q", s)
	}
	return 0, uint32(n), nil
}

// clampBatch bounds an operator-supplied chunk size to [1, maxBatchSize].
func clampBatch(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxBatchSize {
		return maxBatchSize
	}
	return n
}

// clampParallel bounds the fan-out width to [1, maxParallel].
func clampParallel(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxParallel {
		return maxParallel
	}
	return n
}

// scanProgress returns a progress callback rendering a console bar, or nil
// when the output is not a terminal or quiet mode is on.
func scanProgress(total int, quiet bool) (scan.Progress, func()) {
	if quiet || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil, func() {}
	}
	bar := pb.New(total)
	bar.Output = os.Stderr
	bar.Start()
	return func(done, _ int) {
		bar.Set(done)
	}, func() { bar.Finish() }
}
