package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/prodhub/internal/client/api"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
	"github.com/spf13/cobra"
)

func (a *App) pushCmd() *cobra.Command {
	var (
		repoID   string
		branchID string
		message  string
		maxSize  int64
	)
	cmd := &cobra.Command{
		Use:   "push DIR",
		Short: "Upload a project folder as a new commit",
		Long: `Upload every file under DIR as one commit. Hidden files and folders
are skipped; paths relative to DIR are kept. Example:
  prodhubctl push ./NightDrive --repo 3f0c... -m "new drums"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if repoID == "" {
				return errors.New("--repo is required")
			}
			files, err := collectFiles(args[0], maxSize)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files found in %s", args[0])
			}

			c := a.client()
			if branchID == "" {
				b, err := c.DefaultBranch(cmd.Context(), repoID)
				if err != nil {
					return err
				}
				branchID = b.ID
			}

			fmt.Fprintf(a.out, "Pushing %d files\n", len(files))
			commit, err := c.Push(cmd.Context(), repoID, branchID, message, files, func(p int) {
				fmt.Fprintf(a.out, "\rUploading: %d%%", p)
			})
			fmt.Fprintln(a.out)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Committed %s (%d files)\n", commit.ID, len(commit.Files))
			return nil
		},
	}
	cmd.Flags().StringVar(&repoID, "repo", "", "repository id")
	cmd.Flags().StringVar(&branchID, "branch", "", "branch id (default branch when empty)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().Int64Var(&maxSize, "max-size", 0, "per-file size limit in bytes (server default when 0)")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

// collectFiles walks root and returns every regular, non-hidden file with
// its slash-separated path relative to root. Each file is validated the
// same way the server validates uploads.
func collectFiles(root string, limit int64) ([]api.LocalFile, error) {
	var files []api.LocalFile
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		f := api.LocalFile{
			Path:         p,
			RelativePath: filepath.ToSlash(rel),
			Size:         info.Size(),
			ContentType:  contentTypeOf(d.Name()),
		}
		if err := transfer.ValidateFile(f.RelativePath, f.Size, f.ContentType, limit); err != nil {
			return err
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// contentTypeOf guesses a MIME type from the extension. FL Studio project
// and preset files are left untyped, which the server accepts.
func contentTypeOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".flp", ".fst":
		return ""
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
