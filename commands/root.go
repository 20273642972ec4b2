// Package commands wires the pvelist command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"pvelist/config"
	"pvelist/proxmox"
	"pvelist/utils"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	conf     *config.Config
	prompter *utils.Prompter
	out      io.Writer
}

// NewRootCmd builds the command tree reading answers from stdin.
func NewRootCmd() *cobra.Command {
	return newRootCmd(utils.NewPrompter(os.Stdin, os.Stdout))
}

func newRootCmd(prompter *utils.Prompter) *cobra.Command {
	a := &app{prompter: prompter}

	var grouped bool
	cmd := &cobra.Command{
		Use:   "pvelist",
		Short: "list Proxmox VE virtual machines and containers",
		Long: `Logs in to a Proxmox VE cluster and prints its VMs and containers sorted by VMID.
Missing connection settings are asked for interactively.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.Context(), grouped)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("host", "", "Proxmox IP or hostname (PVE_HOST)")
	flags.Int("port", proxmox.DefaultPort, "Proxmox API port (PVE_PORT)")
	flags.String("user", "", "user name without realm (PVE_USER)")
	flags.String("realm", "", "login realm, e.g. pam, pve or an LDAP/AD realm (PVE_REALM)")
	flags.Bool("verify-tls", false, "verify the server certificate (PVE_VERIFY_TLS)")
	flags.Int("timeout", 0, "request timeout in seconds (PVE_TIMEOUT_SECONDS)")
	cmd.Flags().BoolVar(&grouped, "group", false, "group the table by local folder")

	cmd.AddCommand(newListCmd(a))
	cmd.AddCommand(newNodesCmd(a))
	for _, action := range []string{"start", "stop", "shutdown", "reboot", "suspend", "resume"} {
		cmd.AddCommand(newActionCmd(a, action))
	}
	cmd.AddCommand(newSetFolderCmd(a))
	cmd.AddCommand(newServeCmd(a))
	return cmd
}

// init loads the configuration and applies the flags set on the command line.
func (a *app) init(cmd *cobra.Command) error {
	conf, err := config.LoadConfig()
	if err != nil {
		return err
	}
	setupLog(conf)

	flags := cmd.Flags()
	if flags.Changed("host") {
		conf.PVEHost, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		conf.PVEPort, _ = flags.GetInt("port")
	}
	if flags.Changed("user") {
		conf.PVEUser, _ = flags.GetString("user")
	}
	if flags.Changed("realm") {
		conf.PVERealm, _ = flags.GetString("realm")
	}
	if flags.Changed("verify-tls") {
		conf.PVEVerifyTLS, _ = flags.GetBool("verify-tls")
	}
	if flags.Changed("timeout") {
		conf.PVETimeoutSeconds, _ = flags.GetInt("timeout")
	}

	a.conf = conf
	a.out = cmd.OutOrStdout()
	return nil
}

// credentials fills in every missing connection setting from the prompter.
func (a *app) credentials() (proxmox.Credentials, error) {
	ask := func(value *string, label string, password bool) error {
		if *value != "" {
			return nil
		}
		var err error
		if password {
			*value, err = a.prompter.AskPassword(label)
		} else {
			*value, err = a.prompter.Ask(label)
		}
		return err
	}

	if err := ask(&a.conf.PVEHost, "Enter Proxmox IP/Hostname: ", false); err != nil {
		return proxmox.Credentials{}, err
	}
	if err := ask(&a.conf.PVEUser, "Enter Proxmox Username (e.g., user): ", false); err != nil {
		return proxmox.Credentials{}, err
	}
	if err := ask(&a.conf.PVERealm, "Enter Proxmox Realm (e.g., pam, pve, or company.com): ", false); err != nil {
		return proxmox.Credentials{}, err
	}
	if err := ask(&a.conf.PVEPassword, "Enter Proxmox Password: ", true); err != nil {
		return proxmox.Credentials{}, err
	}

	return proxmox.Credentials{
		Username: a.conf.PVEUser,
		Realm:    a.conf.PVERealm,
		Password: a.conf.PVEPassword,
	}, nil
}

func (a *app) client() *proxmox.Client {
	return proxmox.NewClient(proxmox.Options{
		BaseURL:   proxmox.BaseURL(a.conf.PVEHost, a.conf.PVEPort),
		VerifyTLS: a.conf.PVEVerifyTLS,
		Timeout:   a.conf.Timeout(),
	})
}

// connect logs in and reports false after printing the abort message.
func (a *app) connect(ctx context.Context) (*proxmox.Client, *proxmox.Session, bool) {
	creds, err := a.credentials()
	if err != nil {
		log.Errorf("Could not read connection settings: %v", err)
		fmt.Fprintln(a.out, "\nScript aborted due to login failure.")
		return nil, nil, false
	}

	fmt.Fprintln(a.out, strings.Repeat("-", 40))
	fmt.Fprintf(a.out, "Attempting connection to: %s:%d\n", a.conf.PVEHost, a.conf.PVEPort)

	client := a.client()
	session, err := client.Login(ctx, creds)
	if err != nil {
		logFailure("Login failed", err)
		fmt.Fprintln(a.out, "\nScript aborted due to login failure.")
		return nil, nil, false
	}
	return client, session, true
}

// logFailure logs err with the HTTP status when there is one.
func logFailure(prefix string, err error) {
	entry := log.WithError(err)
	if status := proxmox.StatusCode(err); status != 0 {
		entry = entry.WithField("status", status)
	}
	entry.Error(prefix)
}
