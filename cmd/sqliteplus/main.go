// Command sqliteplus is a small front end for the sqliteplus library: it
// opens a database, executes statements given as arguments or read line by
// line from standard input, prints each result table, and commits before
// exiting.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kcyq98/sqliteplus"
)

func main() {
	path := flag.String("db", ":memory:", "database file to open")
	commit := flag.Bool("commit", true, "commit before exiting")
	flag.Parse()

	ctx := context.Background()

	engine, err := sqliteplus.Open(ctx, *path)
	if err != nil {
		log.Fatalf("opening %s: %v", *path, err)
	}
	defer func() {
		_ = engine.Close()
	}()

	if flag.NArg() > 0 {
		for _, stmt := range flag.Args() {
			run(ctx, engine, stmt)
		}
	} else {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			stmt := strings.TrimSpace(sc.Text())
			if stmt == "" {
				continue
			}
			run(ctx, engine, stmt)
		}
		if err := sc.Err(); err != nil {
			log.Fatalf("reading input: %v", err)
		}
	}

	if *commit {
		if err := engine.Commit(ctx); err != nil {
			log.Fatalf("committing: %v", err)
		}
	}
}

func run(ctx context.Context, engine *sqliteplus.Engine, stmt string) {
	if err := engine.Exec(ctx, stmt); err != nil {
		fmt.Fprintln(os.Stderr, engine.DescribeError())
		return
	}
	if err := engine.Results().Fprint(os.Stdout); err != nil {
		log.Fatalf("printing results: %v", err)
	}
}
