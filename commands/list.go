package commands

import (
	"context"
	"fmt"

	"pvelist/models"
	"pvelist/views"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var grouped bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "print VMs and containers sorted by VMID",
		Long:  `print VMs and containers sorted by VMID`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.Context(), grouped)
		},
	}
	cmd.Flags().BoolVar(&grouped, "group", false, "group the table by local folder")
	return cmd
}

// runList is the login, list, render sequence. Failures are reported on the
// output and never turned into an exit status.
func (a *app) runList(ctx context.Context, grouped bool) error {
	client, session, ok := a.connect(ctx)
	if !ok {
		return nil
	}

	resources, err := client.ListVMsAndContainers(ctx, session)
	if err != nil {
		logFailure("Failed to fetch resources", err)
		fmt.Fprintln(a.out, "Failed to retrieve the VM and container list.")
		return nil
	}
	if len(resources) == 0 {
		fmt.Fprintln(a.out, "No VMs or LXCs found.")
		return nil
	}

	fmt.Fprintln(a.out)
	defer fmt.Fprintln(a.out, "\nVerification complete.")
	if !grouped {
		views.RenderTable(a.out, resources)
		return nil
	}

	db, err := models.SetupModels(a.conf)
	if err != nil {
		log.Errorf("Folders unavailable, printing a flat table: %v", err)
		views.RenderTable(a.out, resources)
		return nil
	}
	folders, err := models.LoadFolders(db)
	if err != nil {
		log.Errorf("Folders unavailable, printing a flat table: %v", err)
		views.RenderTable(a.out, resources)
		return nil
	}
	models.ApplyFolders(resources, folders)
	views.RenderGrouped(a.out, resources)
	return nil
}
