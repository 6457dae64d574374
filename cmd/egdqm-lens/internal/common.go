package common

import (
	"fmt"

	"github.com/cms-egamma/egdqm/pkg/archive"
	"github.com/spf13/cobra"
)

const (
	flagArchivePath  = "path"
	flagArchiveUsage = "Path to the archive file"
)

// Errf returns formatted error in errFmt format if err is not nil.
func Errf(errFmt string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf(errFmt, err)
}

// AddArchivePathFlag adds the required archive path flag to cmd.
func AddArchivePathFlag(cmd *cobra.Command, v *string) {
	cmd.Flags().StringVar(v, flagArchivePath, "", flagArchiveUsage)
	err := cmd.MarkFlagRequired(flagArchivePath)
	if err != nil {
		panic(fmt.Errorf("mark required flag %s failed: %w", flagArchivePath, err))
	}
}

// OpenArchive opens the archive read-only.
func OpenArchive(path string) (*archive.Archive, error) {
	return archive.Open(path, archive.ModeRead)
}
