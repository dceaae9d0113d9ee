// Package batch unpacks line-oriented input on a pool of workers while
// keeping the output in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yokitheyo/unpacker/unpack"
)

const maxLineBytes = 1 << 20

type Options struct {
	// Workers is the pool size; zero or less means runtime.NumCPU().
	Workers int
	Logger  *log.Logger
}

type Summary struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

type job struct {
	seq    int // position among dispatched lines, contiguous from 0
	lineNo int
	line   string
}

type result struct {
	job
	out string
	err error
}

// Run reads r line by line, unpacks every non-blank line and writes one
// "<line>\t<unpacked>" or "<line>\terror: <reason>" row per line to w.
func Run(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, workers)
	results := make(chan result, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work(runCtx, jobs, results)
		}()
	}

	readErr := make(chan error, 1)
	go func() {
		defer close(jobs)
		readErr <- dispatch(runCtx, r, jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	logger.Debug("batch started", "workers", workers)
	sum, err := collect(results, w, logger, cancel)
	if err != nil {
		return sum, fmt.Errorf("write results: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	if err := <-readErr; err != nil {
		return sum, fmt.Errorf("read input: %w", err)
	}
	logger.Debug("batch finished", "total", sum.Total, "valid", sum.Valid, "invalid", sum.Invalid)
	return sum, nil
}

func dispatch(ctx context.Context, r io.Reader, jobs chan<- job) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	seq, lineNo := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		select {
		case jobs <- job{seq: seq, lineNo: lineNo, line: line}:
			seq++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

func work(ctx context.Context, jobs <-chan job, results chan<- result) {
	for j := range jobs {
		out, err := unpack.Unpack(j.line)
		select {
		case results <- result{job: j, out: out, err: err}:
		case <-ctx.Done():
			return
		}
	}
}

// collect writes results in sequence order. After a write error it keeps
// draining so that workers can exit.
func collect(results <-chan result, w io.Writer, logger *log.Logger, cancel context.CancelFunc) (Summary, error) {
	bw := bufio.NewWriter(w)
	pending := make(map[int]result)
	next := 0
	var sum Summary
	var writeErr error

	for res := range results {
		if writeErr != nil {
			continue
		}
		pending[res.seq] = res
		for {
			cur, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			sum.Total++
			var err error
			if cur.err != nil {
				sum.Invalid++
				logger.Debug("line rejected", "line", cur.lineNo, "reason", unpack.Reason(cur.err))
				_, err = fmt.Fprintf(bw, "%s\terror: %s\n", cur.line, unpack.Reason(cur.err))
			} else {
				sum.Valid++
				_, err = fmt.Fprintf(bw, "%s\t%s\n", cur.line, cur.out)
			}
			if err != nil {
				writeErr = err
				cancel()
				break
			}
		}
	}

	if writeErr != nil {
		return sum, writeErr
	}
	return sum, bw.Flush()
}
