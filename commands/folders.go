package commands

import (
	"fmt"
	"strings"

	"pvelist/models"

	"github.com/spf13/cobra"
)

func newSetFolderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setfolder <vmid> <folder>",
		Short: "assign a VM or container to a local folder",
		Long:  `assign a VM or container to a local folder, shown by "list --group"`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vmid, err := parseVMID(args[0])
			if err != nil {
				return err
			}

			db, err := models.SetupModels(a.conf)
			if err != nil {
				return err
			}
			assignment, err := models.SetFolder(db, vmid, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "VMID %d assigned to folder '%s'.\n", assignment.VMID, assignment.Folder)
			return nil
		},
	}
}
