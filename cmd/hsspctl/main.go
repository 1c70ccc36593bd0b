// hsspctl is a small command-line front door over package hssp: create,
// list, verify, and extract archives, and build a path index sidecar
// for large ones via package index.
//
// Author: in the spirit of the teacher's mphdb -- single binary,
// verb dispatched off the positional args, one die()/warn() pair for
// error reporting.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	flag "github.com/opencoff/pflag"

	"github.com/acridotheres/hssp2"
	"github.com/acridotheres/hssp2/index"
)

func main() {
	if len(os.Args) < 2 {
		die("usage: %s create|list|verify|extract|index ...", os.Args[0])
	}

	verb := os.Args[1]
	args := os.Args[2:]

	switch verb {
	case "create":
		cmdCreate(args)
	case "list":
		cmdList(args)
	case "verify":
		cmdVerify(args)
	case "extract":
		cmdExtract(args)
	case "index":
		cmdIndex(args)
	default:
		die("unknown verb %q", verb)
	}
}

func cmdCreate(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	out := fs.StringP("output", "o", "", "output `FILE`")
	version := fs.UintP("version", "v", 1, "container `VERSION` (1, 2, or 3)")
	password := fs.StringP("password", "p", "", "encrypt with `PASSWORD`")
	main := fs.IntP("main", "m", -1, "`INDEX` of the main file (-1 for none)")
	fs.Parse(args)

	if *out == "" {
		die("create: -o OUTPUT is required")
	}
	paths := fs.Args()
	if len(paths) == 0 {
		die("create: no input files given")
	}

	entries, closers := collectEntries(paths)
	defer closeAll(closers)

	var mainFile *uint32
	if *main >= 0 {
		m := uint32(*main)
		mainFile = &m
	}

	var enc *hssp.EncryptionParams
	if *password != "" {
		enc = &hssp.EncryptionParams{Password: *password}
	}

	f, err := os.Create(*out)
	if err != nil {
		die("create: %s", err)
	}
	defer f.Close()

	patch, err := hssp.Create(uint8(*version), entries, enc, mainFile, f, 64*1024)
	if err != nil {
		die("create: %s", err)
	}
	if err := hssp.WriteHash(f, patch); err != nil {
		die("create: writing checksum: %s", err)
	}

	fmt.Printf("%s: %d entries\n", *out, len(entries))
}

// collectEntries walks each command-line path: a bare file becomes one
// SourceEntry, a directory is walked with filepath.WalkDir and becomes
// one directory-marker entry per subdirectory plus one file entry per
// regular file, all relative to the walked root.
func collectEntries(paths []string) ([]hssp.SourceEntry, []*os.File) {
	var entries []hssp.SourceEntry
	var closers []*os.File

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			die("create: %s", err)
		}

		if !info.IsDir() {
			f, err := os.Open(root)
			if err != nil {
				die("create: %s", err)
			}
			closers = append(closers, f)
			entries = append(entries, hssp.SourceEntry{
				Path:   filepath.Base(root),
				Length: uint64(info.Size()),
				Source: f,
			})
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == root {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)

			if d.IsDir() {
				entries = append(entries, hssp.SourceEntry{Path: rel, Directory: true})
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			closers = append(closers, f)
			entries = append(entries, hssp.SourceEntry{
				Path:   rel,
				Length: uint64(info.Size()),
				Source: f,
			})
			return nil
		})
		if err != nil {
			die("create: walking %s: %s", root, err)
		}
	}

	return entries, closers
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	password := fs.StringP("password", "p", "", "decrypt with `PASSWORD`")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 1 {
		die("list: usage: list ARCHIVE")
	}

	f, meta := openArchive(rest[0], password)
	defer f.Close()

	fmt.Printf("%s: version %d, %d entries, checksum %#x\n", rest[0], meta.Version, len(meta.Files), meta.Checksum)
	if meta.Encryption != nil {
		fmt.Printf("  encrypted, password %s\n", matchWord(meta.Encryption.Matches()))
	}
	if meta.MainFile != nil {
		fmt.Printf("  main file: entry %d\n", *meta.MainFile)
	}
	for _, e := range meta.Files {
		kind := "file"
		if e.Directory {
			kind = "dir "
		}
		fmt.Printf("  %s  %10d  %s\n", kind, e.Length, e.Path)
	}
}

func matchWord(ok bool) string {
	if ok {
		return "matches"
	}
	return "does not match"
}

func cmdVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 1 {
		die("verify: usage: verify ARCHIVE")
	}

	f, err := os.Open(rest[0])
	if err != nil {
		die("verify: %s", err)
	}
	defer f.Close()

	meta, err := hssp.ReadMetadata(f, nil)
	if err != nil {
		die("verify: %s", err)
	}

	ok, err := hssp.VerifyIntegrity(f, meta)
	if err != nil {
		die("verify: %s", err)
	}
	if !ok {
		fmt.Printf("%s: FAIL (checksum mismatch)\n", rest[0])
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", rest[0])
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	out := fs.StringP("output", "o", "", "output `FILE`")
	password := fs.StringP("password", "p", "", "decrypt with `PASSWORD`")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		die("extract: usage: extract ARCHIVE PATH -o OUT")
	}
	if *out == "" {
		die("extract: -o OUTPUT is required")
	}
	archivePath, wantPath := rest[0], rest[1]

	f, meta := openArchive(archivePath, password)
	defer f.Close()

	entry, err := meta.Find(wantPath)
	if err != nil {
		die("extract: %s", err)
	}

	sink, err := os.Create(*out)
	if err != nil {
		die("extract: %s", err)
	}
	defer sink.Close()

	source, err := meta.Source(f)
	if err != nil {
		die("extract: %s", err)
	}

	if err := hssp.Extract(source, entry, sink, 64*1024, 0); err != nil {
		die("extract: %s", err)
	}
	fmt.Printf("%s: extracted %q (%d bytes)\n", archivePath, wantPath, entry.Length)
}

func cmdIndex(args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	out := fs.StringP("output", "o", "", "sidecar output `FILE`")
	password := fs.StringP("password", "p", "", "decrypt with `PASSWORD`")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 1 {
		die("index: usage: index ARCHIVE -o OUT.hsspidx")
	}
	if *out == "" {
		die("index: -o OUTPUT is required")
	}

	f, meta := openArchive(rest[0], password)
	defer f.Close()

	ix, err := index.Build(meta)
	if err != nil {
		die("index: %s", err)
	}

	sidecar, err := os.Create(*out)
	if err != nil {
		die("index: %s", err)
	}
	defer sidecar.Close()

	if err := index.Persist(ix, sidecar); err != nil {
		die("index: %s", err)
	}
	fmt.Printf("%s: indexed %d entries into %s\n", rest[0], ix.Len(), *out)
}

func openArchive(path string, password *string) (*os.File, *hssp.Metadata) {
	f, err := os.Open(path)
	if err != nil {
		die("%s", err)
	}

	var pw *string
	if *password != "" {
		pw = password
	}

	meta, err := hssp.ReadMetadata(f, pw)
	if err != nil {
		f.Close()
		die("%s: %s", path, err)
	}
	return f, meta
}

func die(format string, args ...interface{}) {
	warn(format, args...)
	os.Exit(1)
}

func warn(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	if n := len(s); n == 0 || s[n-1] != '\n' {
		s += "\n"
	}
	fmt.Fprintf(os.Stderr, "%s: %s", os.Args[0], s)
}
