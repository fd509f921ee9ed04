package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/relay"
	"github.com/sagarc03/relay/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Import files into relay storage",
	Long: `Import local files into relay storage without going through HTTP.

Each file is stored under a logical name built from --dest and the file's
path, exactly as if it had been uploaded to <base_path><name>. Stored files
are never replaced.

Examples:
  # Add a single file, served at /upload/file.txt
  relay add /path/to/file.txt

  # Add with a destination prefix, served at /upload/shared/photo.jpg
  relay add --dest shared/ /path/to/photo.jpg

  # Add a directory recursively
  relay add -r /path/to/assets

  # Skip names that are already stored
  relay add --no-clobber /path/to/file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDest      string
	addRecursive bool
	addNoClobber bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().StringVarP(&addDest, "dest", "d", "", "logical name prefix")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addNoClobber, "no-clobber", "n", false, "skip names that are already stored instead of failing")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(addCmd)
}

// fileEntry represents a file to be added with its source path and logical name.
type fileEntry struct {
	sourcePath string
	name       string
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	service, root, err := openService(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	signer := relay.NewSigner(cfg.Auth.Secret)

	// Collect files from all arguments
	var files []fileEntry
	for _, arg := range args {
		entries, collectErr := collectFiles(arg, addRecursive, addDest)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, entries...)
	}

	if len(files) == 0 {
		slog.Info("no files to add")
		return nil
	}

	added := 0
	skipped := 0

	for _, entry := range files {
		f, openErr := os.Open(entry.sourcePath)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", entry.sourcePath, openErr)
		}

		info, statErr := f.Stat()
		if statErr != nil {
			_ = f.Close()
			return fmt.Errorf("stat %s: %w", entry.sourcePath, statErr)
		}

		req := relay.UploadRequest{
			Name:  entry.name,
			Size:  info.Size(),
			Token: signer.Sign(entry.name, info.Size()),
		}

		_, uploadErr := service.Upload(ctx, req, f)
		_ = f.Close()

		if errors.Is(uploadErr, relay.ErrConflict) && addNoClobber {
			skipped++
			if !addQuiet {
				slog.Info("skipped (exists)", "name", entry.name)
			}
			continue
		}
		if uploadErr != nil {
			return fmt.Errorf("add %s: %w", entry.name, uploadErr)
		}

		added++
		if !addQuiet {
			slog.Info("added", "name", entry.name, "key", relay.StorageKey(entry.name), "size", info.Size())
		}
	}

	slog.Info("add complete", "added", added, "skipped", skipped)
	return nil
}

// collectFiles gathers files from a path, optionally recursively.
// Returns a list of file entries with source paths and logical names.
func collectFiles(path string, recursive bool, destPrefix string) ([]fileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	// Normalize dest prefix - ensure it ends with / if non-empty
	destPrefix = strings.TrimPrefix(destPrefix, "/")
	if destPrefix != "" && !strings.HasSuffix(destPrefix, "/") {
		destPrefix += "/"
	}

	if !info.IsDir() {
		return []fileEntry{{sourcePath: path, name: destPrefix + filepath.Base(path)}}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	var entries []fileEntry
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath, relErr := filepath.Rel(path, walkPath)
		if relErr != nil {
			return relErr
		}

		entries = append(entries, fileEntry{
			sourcePath: walkPath,
			name:       destPrefix + filepath.ToSlash(relPath),
		})
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return entries, nil
}
