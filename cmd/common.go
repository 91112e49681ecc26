package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/insightloom/internal/pipeline"
	"github.com/KaramelBytes/insightloom/internal/utils"
)

// openSession loads path with the configured limits and, when requested,
// applies one cleaning run before returning.
func openSession(cmd *cobra.Command, path string, delim delimiterValue, clean *cleanFlags) (*pipeline.Session, error) {
	c, err := settings()
	if err != nil {
		return nil, err
	}
	limits := c.Limits()
	s, err := pipeline.Open(path, pipeline.Options{
		Limits:    &limits,
		Delimiter: rune(delim),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	if clean != nil && clean.enabled {
		rep, err := s.Clean(clean.options(c.MissingThreshold))
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Cleaned %s: %d rows, %d columns removed\n", s.Source, rep.RowsRemoved, rep.ColsRemoved)
	}
	return s, nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte, what string) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write %s: %w", what, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", what, path)
	return nil
}

// render encodes v as JSON or calls md for the markdown form.
func render(format formatValue, v any, md func() string) ([]byte, error) {
	if format == formatJSON {
		return utils.PrettyJSON(v)
	}
	return []byte(md()), nil
}
