// Package das enumerates datasets and runs through the Data Aggregation
// System command line client.
package das

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"github.com/flynn-archive/go-shlex"
	"go.uber.org/zap"
)

// DefaultCommand is the DAS client executable.
const DefaultCommand = "dasgoclient"

// Querier executes DAS queries.
type Querier interface {
	// Query returns non-empty lines of the query result.
	Query(ctx context.Context, query string) ([]string, error)
}

// Command runs an external DAS client as "<argv...> --query <query>".
type Command struct {
	argv []string
}

// NewCommand parses the shell-like command line of the DAS client.
// Empty line means DefaultCommand.
func NewCommand(line string) (*Command, error) {
	if strings.TrimSpace(line) == "" {
		line = DefaultCommand
	}

	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse DAS command %q: %w", line, err)
	}

	if len(argv) == 0 {
		return nil, errors.New("empty DAS command")
	}

	return &Command{argv: argv}, nil
}

// Query implements Querier.
func (c *Command) Query(ctx context.Context, query string) ([]string, error) {
	args := append(c.argv[1:len(c.argv):len(c.argv)], "--query", query)

	cmd := exec.CommandContext(ctx, c.argv[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return nil, fmt.Errorf("run %s %q: %w: %s", c.argv[0], query, err, strings.TrimSpace(stderr.String()))
	}

	return splitLines(stdout.Bytes()), nil
}

func splitLines(data []byte) []string {
	var res []string

	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			res = append(res, line)
		}
	}

	return res
}

// Pattern turns a "{}" placeholder of the dataset pattern into the DAS
// wildcard.
func Pattern(pattern string) string {
	return strings.ReplaceAll(pattern, "{}", "*")
}

// DatasetRuns lists datasets matching the pattern and the runs of each of
// them.
func DatasetRuns(ctx context.Context, q Querier, pattern string, log *zap.Logger) (dqm.Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}

	datasets, err := q.Query(ctx, "dataset dataset="+Pattern(pattern))
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	c := make(dqm.Catalog, len(datasets))

	for _, ds := range datasets {
		runs, err := q.Query(ctx, "run dataset="+ds)
		if err != nil {
			return nil, fmt.Errorf("list runs of %s: %w", ds, err)
		}

		c.Add(ds, "")
		for i := range runs {
			c.Add(ds, runs[i])
		}

		log.Debug("dataset runs listed",
			zap.String("dataset", ds),
			zap.Int("runs", len(runs)))
	}

	return c, nil
}
