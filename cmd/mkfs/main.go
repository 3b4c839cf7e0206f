// Command mkfs packs a host directory into a boot-block/inode/data-block
// filesystem image consumable by fsimage.Reader, mirroring the teacher's
// cmd/ie32to64 converter tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kflint/vtkernel/fsimage"
)

var (
	outPath   string
	rtcNames  []string
	dirMarker string
)

func main() {
	root := &cobra.Command{
		Use:   "mkfs <source-dir>",
		Short: "Build a read-only kernel filesystem image from a host directory",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	flags := root.Flags()
	flags.StringVarP(&outPath, "out", "o", "fs.img", "output image path")
	flags.StringSliceVar(&rtcNames, "rtc", nil, "names to register as RTC device entries instead of files")
	flags.StringVar(&dirMarker, "dir-name", ".", "name for the self-referential directory entry")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mkfs:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	srcDir := args[0]
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", srcDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	rtcSet := make(map[string]bool, len(rtcNames))
	for _, n := range rtcNames {
		rtcSet[n] = true
	}

	b := fsimage.NewBuilder().AddDirectory(dirMarker)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if rtcSet[name] {
			b.AddRTCDevice(name)
			continue
		}
		data, err := os.ReadFile(filepath.Join(srcDir, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if len(name) > fsimage.FileNameLength {
			return fmt.Errorf("name %q exceeds %d bytes", name, fsimage.FileNameLength)
		}
		b.AddFile(name, data)
	}

	img, err := b.Build()
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, img, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("mkfs: wrote %s (%s)\n", outPath, humanSize(len(img)))
	return nil
}

func humanSize(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	units := []string{"KiB", "MiB", "GiB"}
	f := float64(n)
	for _, u := range units {
		f /= 1024
		if f < 1024 {
			return fmt.Sprintf("%.1f%s", f, u)
		}
	}
	return strings.TrimSpace(fmt.Sprintf("%.1fGiB", f))
}
