// Copyright (c) 2024 LevelGraph Go Contributors
// Copyright (c) 2026 hnswix Contributors
//
// Permission is hereby granted, free of charge, to any person
// obtaining a copy of this software and associated documentation
// files (the "Software"), to deal in the Software without
// restriction, including without limitation the rights to use,
// copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the
// Software is furnished to do so, subject to the following
// conditions:
//
// The above copyright notice and this permission notice shall be
// included in all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES
// OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
// NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
// HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY,
// WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nnidx/hnswix"
	"github.com/nnidx/hnswix/store"
)

func main() {
	cli := &CLI{
		Out: os.Stdout,
		Err: os.Stderr,
	}
	os.Exit(cli.Run(os.Args[1:]))
}

// CLI is the thin command façade over an Index: it has no correctness
// requirements of its own, only operator convenience.
type CLI struct {
	Out io.Writer
	Err io.Writer
}

func (c *CLI) Run(args []string) int {
	if len(args) < 1 {
		c.printUsage()
		return 1
	}

	cmd := args[0]
	cmdArgs := args[1:]

	var err error
	switch cmd {
	case "add":
		err = c.runAdd(cmdArgs)
	case "remove":
		err = c.runRemove(cmdArgs)
	case "update":
		err = c.runUpdate(cmdArgs)
	case "search":
		err = c.runSearch(cmdArgs)
	case "save":
		err = c.runSave(cmdArgs)
	case "load":
		err = c.runLoad(cmdArgs)
	case "rebuild":
		err = c.runRebuild(cmdArgs)
	case "help", "-h", "--help":
		c.printUsage()
		return 0
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", cmd)
		c.printUsage()
		return 1
	}

	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (c *CLI) printUsage() {
	fmt.Fprint(c.Out, `hnswix CLI

Usage:
  hnswix <command> [arguments]

Commands:
  add <id> <v1,v2,...>       Insert or replace a point
  remove <id>                Soft-delete a point
  update <id> <v1,v2,...>    Replace a point's vector
  search <k> <v1,v2,...>     Find the k nearest points
  save                       Persist the current snapshot
  load                       Load the persisted snapshot
  rebuild                    Drop adjacency and reinsert live points
  help                       Show this help message

Global Flags:
  -db <path>   Path to the LevelDB-backed snapshot store (default: hnswix.db)
  -name <name> Snapshot name within the store (default: default)
`)
}

func (c *CLI) open(args []string) (*hnswix.Index, []string, error) {
	fs := flag.NewFlagSet("hnswix", flag.ContinueOnError)
	fs.SetOutput(c.Err)
	dbPath := fs.String("db", "hnswix.db", "path to the snapshot store")
	name := fs.String("name", "default", "snapshot name")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	st, err := store.OpenLevelDB(*dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	ix, err := hnswix.Open(*name, hnswix.WithStore(st))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}
	return ix, fs.Args(), nil
}

func parseVector(s string) (hnswix.Vector, error) {
	parts := strings.Split(s, ",")
	v := make(hnswix.Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func (c *CLI) runAdd(args []string) error {
	ix, remaining, err := c.open(args)
	if err != nil {
		return err
	}
	defer ix.Close()

	if len(remaining) != 2 {
		return fmt.Errorf("usage: hnswix add <id> <v1,v2,...>")
	}
	v, err := parseVector(remaining[1])
	if err != nil {
		return err
	}
	if err := ix.AddPoint(context.Background(), remaining[0], v); err != nil {
		return fmt.Errorf("failed to add point: %w", err)
	}
	fmt.Fprintln(c.Out, "Point added.")
	return nil
}

func (c *CLI) runRemove(args []string) error {
	ix, remaining, err := c.open(args)
	if err != nil {
		return err
	}
	defer ix.Close()

	if len(remaining) != 1 {
		return fmt.Errorf("usage: hnswix remove <id>")
	}
	if err := ix.RemovePoint(context.Background(), remaining[0]); err != nil {
		return fmt.Errorf("failed to remove point: %w", err)
	}
	fmt.Fprintln(c.Out, "Point removed.")
	return nil
}

func (c *CLI) runUpdate(args []string) error {
	ix, remaining, err := c.open(args)
	if err != nil {
		return err
	}
	defer ix.Close()

	if len(remaining) != 2 {
		return fmt.Errorf("usage: hnswix update <id> <v1,v2,...>")
	}
	v, err := parseVector(remaining[1])
	if err != nil {
		return err
	}
	if err := ix.UpdatePoint(context.Background(), remaining[0], v); err != nil {
		return fmt.Errorf("failed to update point: %w", err)
	}
	fmt.Fprintln(c.Out, "Point updated.")
	return nil
}

func (c *CLI) runSearch(args []string) error {
	ix, remaining, err := c.open(args)
	if err != nil {
		return err
	}
	defer ix.Close()

	if len(remaining) != 2 {
		return fmt.Errorf("usage: hnswix search <k> <v1,v2,...>")
	}
	k, err := strconv.Atoi(remaining[0])
	if err != nil {
		return fmt.Errorf("invalid k: %w", err)
	}
	v, err := parseVector(remaining[1])
	if err != nil {
		return err
	}
	results, err := ix.SearchKNN(context.Background(), v, k)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	for _, r := range results {
		fmt.Fprintf(c.Out, "%s\t%.6f\n", r.ID, r.Score)
	}
	return nil
}

func (c *CLI) runSave(args []string) error {
	ix, _, err := c.open(args)
	if err != nil {
		return err
	}
	defer ix.Close()

	if err := ix.Save(context.Background()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	fmt.Fprintln(c.Out, "Snapshot saved.")
	return nil
}

func (c *CLI) runLoad(args []string) error {
	ix, _, err := c.open(args)
	if err != nil {
		return err
	}
	defer ix.Close()

	if err := ix.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	fmt.Fprintf(c.Out, "Snapshot loaded, %d points.\n", ix.Len())
	return nil
}

func (c *CLI) runRebuild(args []string) error {
	ix, _, err := c.open(args)
	if err != nil {
		return err
	}
	defer ix.Close()

	err = ix.RebuildFromSnapshot(context.Background(), func(pct int) {
		fmt.Fprintf(c.Out, "\rrebuilding... %d%%", pct)
	})
	fmt.Fprintln(c.Out)
	if err != nil {
		return fmt.Errorf("failed to rebuild: %w", err)
	}
	fmt.Fprintln(c.Out, "Rebuild complete.")
	return nil
}
