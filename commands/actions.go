package commands

import (
	"fmt"
	"strconv"

	"pvelist/proxmox"
	"pvelist/views"

	"github.com/spf13/cobra"
)

func parseVMID(arg string) (int, error) {
	vmid, err := strconv.Atoi(arg)
	if err != nil || vmid <= 0 {
		return 0, fmt.Errorf("invalid VMID %q", arg)
	}
	return vmid, nil
}

func newActionCmd(a *app, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <vmid>",
		Short: "send the " + action + " power action to a VM or container",
		Long:  "send the " + action + " power action to a VM or container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vmid, err := parseVMID(args[0])
			if err != nil {
				return err
			}

			client, session, ok := a.connect(cmd.Context())
			if !ok {
				return fmt.Errorf("login failed")
			}

			resources, err := client.ListVMsAndContainers(cmd.Context(), session)
			if err != nil {
				return fmt.Errorf("failed to retrieve resources: %w", err)
			}
			resource, err := proxmox.FindResource(resources, vmid)
			if err != nil {
				return err
			}

			upid, err := client.PerformAction(cmd.Context(), session, resource, action)
			if err != nil {
				return fmt.Errorf("action %s failed: %w", action, err)
			}
			fmt.Fprintf(a.out, "Success! Task ID: %s\n", upid)
			return nil
		},
	}
}

func newNodesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "print the cluster nodes",
		Long:  `print the cluster nodes`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, session, ok := a.connect(cmd.Context())
			if !ok {
				return nil
			}

			nodes, err := client.ListNodes(cmd.Context(), session)
			if err != nil {
				logFailure("Failed to fetch nodes", err)
				fmt.Fprintln(a.out, "Failed to retrieve the node list.")
				return nil
			}
			fmt.Fprintln(a.out)
			views.RenderNodes(a.out, nodes)
			return nil
		},
	}
}
