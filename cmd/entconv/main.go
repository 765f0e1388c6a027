// entconv converts a map's text entity lump (.ent) into a level YAML file
// that the server can spawn with "map <name>".
//
// Usage:
//
//	go run ./cmd/entconv [-charset windows-1252] [-o levels] maps/e1m1.ent
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l1jgo/edictbridge/internal/data"
	"github.com/l1jgo/edictbridge/internal/world"
	"gopkg.in/yaml.v3"
)

func main() {
	outDir := flag.String("o", "levels", "output directory")
	charsetName := flag.String("charset", "windows-1252", "encoding of the entity lump")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: entconv [-charset name] [-o dir] file.ent...")
		os.Exit(2)
	}

	cs, err := world.NewCharset(*charsetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	failed := false
	for _, in := range flag.Args() {
		if err := convert(in, *outDir, cs); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", in, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func convert(inputPath, outDir string, cs *world.Charset) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	// ---- Parse in host encoding, write YAML as UTF-8 ----
	lvl, err := data.ParseEntityLump(name, cs.Decode(string(raw)))
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(lvl)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	header := fmt.Sprintf("# Generated by entconv from %s\n# %d entities\n\n", filepath.Base(inputPath), lvl.Count())
	outputPath := filepath.Join(outDir, name+".yaml")
	if err := os.WriteFile(outputPath, append([]byte(header), out...), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	classes := map[string]int{}
	for _, e := range lvl.Entities {
		classes[e.Classname()]++
	}
	fmt.Printf("Wrote %s: %d entities, %d classes\n", outputPath, lvl.Count(), len(classes))
	return nil
}
