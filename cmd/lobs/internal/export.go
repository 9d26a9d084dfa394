package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/goplus/lobs/formula"
	"github.com/goplus/lobs/internal/exporters"
	"github.com/goplus/lobs/internal/loader"
	"github.com/goplus/lobs/internal/logger"
	"github.com/goplus/lobs/pkgs/buildsys"
	"github.com/goplus/lobs/pkgs/errs"
)

var exportWatch bool

var exportCmd = &cobra.Command{
	Use:   "export [tag] [path]",
	Short: "Write the build scripts of a package",
	Long: `Export loads the package described at path (a lobs.hcl file or a
directory containing one, "." by default) and writes its build scripts with
the exporter tag. The tag may be omitted when export.default_tag is set.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVarP(&exportWatch, "watch", "w", false, "Export again whenever a description changes")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	reg := exporters.Default()
	tag, path, err := exportArgs(reg, cfg.Export.DefaultTag, args)
	if err != nil {
		return err
	}
	if _, err := reg.Lookup(tag); err != nil {
		return err
	}
	if exportWatch {
		return watch(cmd.Context(), cmd.OutOrStdout(), reg, tag, path)
	}
	_, err = export(cmd.Context(), cmd.OutOrStdout(), reg, tag, path)
	return err
}

// exportArgs splits the arguments of the export command. A single argument
// is a tag when one is registered under that name, a path otherwise.
func exportArgs(reg *buildsys.Registry, defaultTag string, args []string) (tag, path string, err error) {
	switch len(args) {
	case 2:
		return args[0], args[1], nil
	case 1:
		if reg.Has(args[0]) || defaultTag == "" {
			return args[0], ".", nil
		}
		return defaultTag, args[0], nil
	}
	if defaultTag == "" {
		return "", "", errors.WithHint(
			errors.Wrap(errs.ErrUnknownExporter, "no exporter given"),
			"pass a tag (see lobs tags) or set export.default_tag")
	}
	return defaultTag, ".", nil
}

// export loads the package at path and exports it with tag. The package is
// returned whenever it could be loaded.
func export(ctx context.Context, out io.Writer, reg *buildsys.Registry, tag, path string) (*formula.Package, error) {
	pkg, err := loader.New(reg).Load(ctx, path)
	if err != nil {
		return nil, err
	}
	e, err := reg.New(tag, pkg)
	if err != nil {
		return pkg, err
	}
	if err := e.Export(ctx); err != nil {
		return pkg, err
	}
	fmt.Fprintf(out, "Exported %s %s with %s\n", pkg.Meta.Name, pkg.Meta.Version, tag)
	return pkg, nil
}

const watchDebounce = 200 * time.Millisecond

// watch exports once, then again each time a description file of the
// package graph changes, until ctx is done. Failed exports are reported and
// watching continues.
func watch(ctx context.Context, out io.Writer, reg *buildsys.Registry, tag, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()

	// Directories are watched rather than files so that editors replacing a
	// file on save are noticed.
	dirs := make(map[string]bool)
	files := make(map[string]bool)
	addDir := func(dir string) {
		if dirs[dir] {
			return
		}
		if err := w.Add(dir); err != nil {
			logger.Logger.Warnw("cannot watch directory", "dir", dir, "error", err)
			return
		}
		dirs[dir] = true
	}
	if abs, err := filepath.Abs(path); err == nil {
		if fi, err := os.Stat(abs); err == nil && !fi.IsDir() {
			abs = filepath.Dir(abs)
		}
		addDir(abs)
	}

	run := func() {
		pkg, err := export(ctx, out, reg, tag, path)
		if err != nil {
			fmt.Fprintln(out, "Export failed:", err)
			logger.Logger.Errorw("export failed", "tag", tag, "path", path, "error", err)
		}
		if pkg == nil {
			return
		}
		for _, f := range loader.Files(pkg) {
			files[f] = true
			addDir(filepath.Dir(f))
		}
	}
	run()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !files[ev.Name] && filepath.Base(ev.Name) != loader.FileName {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logger.Logger.Debugw("description changed", "file", ev.Name, "op", ev.Op.String())
			pending = time.After(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Warnw("watcher error", "error", err)
		case <-pending:
			pending = nil
			run()
		}
	}
}
