// SPDX-License-Identifier: AGPL-3.0-or-later

// Command sentinel is a thin demonstration CLI over the store/collection
// engine: enough to exercise init, insert, get, and list end-to-end
// against a real store root. It is not the full CLI surface; a richer front end
// (subcommands for every operation, JSON filter/sort parsing) is left to
// the external collaborator the design describes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/cyberpath-hq/sentinel/internal/sentinelerr"
	"github.com/cyberpath-hq/sentinel/internal/store"
	"github.com/cyberpath-hq/sentinel/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "init":
		err = runInit(args)
	case "insert":
		err = runInsert(args)
	case "get":
		err = runGet(args)
	case "list":
		err = runList(args)
	default:
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Logger.Error(command+" failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "", "store root directory")
	_ = fs.Parse(args)

	if *path == "" {
		return errors.New("init requires -path")
	}

	passphrase := os.Getenv("SENTINEL_PASSPHRASE")
	_, err := store.Open(*path, passphrase)
	if err != nil {
		return err
	}
	fmt.Println("store initialized at", *path)
	return nil
}

func runInsert(args []string) error {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	path := fs.String("store", "", "store root directory")
	coll := fs.String("collection", "", "collection name")
	id := fs.String("id", "", "document id (auto-generated UUID if omitted)")
	data := fs.String("data", "{}", "document data as a JSON object")
	_ = fs.Parse(args)

	s, err := store.Open(*path, os.Getenv("SENTINEL_PASSPHRASE"))
	if err != nil {
		return err
	}
	c, err := s.Collection(*coll)
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal([]byte(*data), &parsed); err != nil {
		return fmt.Errorf("invalid -data JSON: %w", err)
	}

	docID := *id
	if docID == "" {
		docID = uuid.NewString()
	}

	d, err := c.Insert(context.Background(), docID, parsed)
	if err != nil {
		return err
	}
	fmt.Printf("inserted %s (version %d)\n", d.ID, d.Version)
	return nil
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	path := fs.String("store", "", "store root directory")
	coll := fs.String("collection", "", "collection name")
	id := fs.String("id", "", "document id")
	_ = fs.Parse(args)

	s, err := store.Open(*path, os.Getenv("SENTINEL_PASSPHRASE"))
	if err != nil {
		return err
	}
	c, err := s.Collection(*coll)
	if err != nil {
		return err
	}

	d, err := c.Get(context.Background(), *id)
	if err != nil {
		return err
	}
	if d == nil {
		fmt.Println("not found")
		return nil
	}

	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := fs.String("store", "", "store root directory")
	coll := fs.String("collection", "", "collection name")
	_ = fs.Parse(args)

	s, err := store.Open(*path, os.Getenv("SENTINEL_PASSPHRASE"))
	if err != nil {
		return err
	}
	c, err := s.Collection(*coll)
	if err != nil {
		return err
	}

	return c.StreamDocumentIDs(context.Background(), func(id string) error {
		fmt.Println(id)
		return nil
	})
}

func exitCodeFor(err error) int {
	var integrity *sentinelerr.IntegrityViolation
	if errors.As(err, &integrity) {
		return 2
	}
	var ioErr *sentinelerr.IoFailed
	if errors.As(err, &ioErr) {
		return 3
	}
	return 1
}

func printUsage() {
	fmt.Println("Usage: sentinel <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init    -path P")
	fmt.Println("  insert  -store P -collection C -id I -data JSON")
	fmt.Println("  get     -store P -collection C -id I")
	fmt.Println("  list    -store P -collection C")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SENTINEL_PASSPHRASE  optional passphrase for signing-key operations")
}
