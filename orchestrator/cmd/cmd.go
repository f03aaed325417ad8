/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"github.com/nuts-foundation/irma-broker/core"
	"github.com/nuts-foundation/irma-broker/orchestrator"
	"github.com/nuts-foundation/irma-broker/storage"
	storageCmd "github.com/nuts-foundation/irma-broker/storage/cmd"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagSet defines the set of flags that sets the engine configuration
func FlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("irma", pflag.ContinueOnError)

	defs := orchestrator.DefaultConfig()
	flags.String("irma.serverurl", defs.ServerURL, "Base URL of the IRMA API server, e.g. https://irma.example.com. Must use HTTPS in strict mode.")
	flags.String("irma.signingkeyfile", defs.SigningKeyFile, "PEM file containing the private key session requests are signed with (or the shared secret for HS* algorithms).")
	flags.String("irma.publickeyfile", defs.PublicKeyFile, "PEM file containing the public key of the IRMA API server (or the shared secret for HS* algorithms).")
	flags.Duration("irma.clienttimeout", defs.ClientTimeout, "Timeout for calls to the IRMA API server.")
	flags.Duration("irma.clockskew", defs.ClockSkew, "Allowed clock difference with the IRMA API server when validating the timestamps of session results.")
	flags.Duration("irma.sessionttl", defs.SessionTTL, "Time IRMA session records are kept. 0 keeps them forever.")
	flags.Duration("irma.relyingsessionttl", defs.RelyingSessionTTL, "Time relying sessions and their proofs are kept. 0 keeps them forever.")
	flags.Duration("irma.poll.interval", defs.Poll.Interval, "Interval at which the IRMA API server is polled when waiting for a session to complete.")
	flags.Duration("irma.poll.timeout", defs.Poll.Timeout, "Maximum time to wait for a session to complete. 0 waits until the caller gives up.")
	flags.String("irma.poll.onerror", defs.Poll.OnError, "What to assume when polling the IRMA API server fails: 'notfound' aborts the session, 'fail' keeps it pending and reports the error.")
	kindFlags(flags, "disclosure", defs.Disclosure, true)
	kindFlags(flags, "signature", defs.Signature, true)
	kindFlags(flags, "issuance", defs.Issuance, false)

	return flags
}

func kindFlags(flags *pflag.FlagSet, name string, defs orchestrator.KindConfig, hasResult bool) {
	prefix := "irma." + name + "."
	flags.String(prefix+"endpoint", defs.Endpoint, fmt.Sprintf("Path (relative to the server URL) of the IRMA API server's %s endpoint.", name))
	flags.Int(prefix+"validity", defs.Validity, fmt.Sprintf("Validity (in seconds) of %s session requests.", name))
	flags.Int(prefix+"timeout", defs.Timeout, fmt.Sprintf("Timeout (in seconds) the IRMA API server applies to %s sessions.", name))
	flags.String(prefix+"request.algorithm", defs.Request.Algorithm, fmt.Sprintf("JWS algorithm %s session requests are signed with.", name))
	flags.String(prefix+"request.issuer", defs.Request.Issuer, fmt.Sprintf("Issuer (iss) of %s session requests.", name))
	flags.String(prefix+"request.subject", defs.Request.Subject, fmt.Sprintf("Subject (sub) of %s session requests.", name))
	if hasResult {
		flags.String(prefix+"result.algorithm", defs.Result.Algorithm, fmt.Sprintf("JWS algorithm the IRMA API server signs %s results with.", name))
		flags.String(prefix+"result.subject", defs.Result.Subject, fmt.Sprintf("Expected subject (sub) of %s results.", name))
	}
}

// serviceLoader returns a started Service and a function that stops it.
type serviceLoader func(cmd *cobra.Command) (orchestrator.Service, func(), error)

// Cmd contains the session sub-commands, which start an IRMA session, print its QR code and wait for it to complete.
func Cmd() *cobra.Command {
	cmd := newCmd(loadService)
	cmd.PersistentFlags().AddFlagSet(core.FlagSet())
	cmd.PersistentFlags().AddFlagSet(storageCmd.FlagSet())
	cmd.PersistentFlags().AddFlagSet(FlagSet())
	return cmd
}

func newCmd(loader serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Starts IRMA sessions from the command line",
	}
	cmd.PersistentFlags().String("relying-session", "", "ID of the relying session proofs are stored in. A new relying session is created when not set.")
	cmd.AddCommand(discloseCmd(loader))
	cmd.AddCommand(signCmd(loader))
	cmd.AddCommand(issueCmd(loader))
	return cmd
}

func discloseCmd(loader serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disclose [attribute] [label]",
		Short: "Asks the user to disclose an attribute",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := args[0]
			if len(args) > 1 {
				label = args[1]
			}
			return runSession(cmd, loader, orchestrator.Disclosure, orchestrator.SingleAttribute(args[0], label), orchestrator.StartOptions{})
		},
	}
	return cmd
}

func signCmd(loader serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [attribute] [message]",
		Short: "Asks the user to sign a message with an attribute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, loader, orchestrator.Signature, orchestrator.SingleAttribute(args[0], args[0]), orchestrator.StartOptions{Message: args[1]})
		},
	}
	return cmd
}

func issueCmd(loader serviceLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue [credential]",
		Short: "Issues a credential to the user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attributes, err := cmd.Flags().GetStringToString("attribute")
			if err != nil {
				return err
			}
			if len(attributes) == 0 {
				return errors.New("at least one --attribute must be given")
			}
			validity, err := cmd.Flags().GetInt64("validity")
			if err != nil {
				return err
			}
			credential := orchestrator.Credential{Credential: args[0], Validity: validity, Attributes: attributes}
			return runSession(cmd, loader, orchestrator.Issuance, nil, orchestrator.StartOptions{Credentials: []orchestrator.Credential{credential}})
		},
	}
	cmd.Flags().StringToString("attribute", nil, "Attribute of the credential as name=value, can be repeated.")
	cmd.Flags().Int64("validity", 0, "Expiry of the credential as Unix timestamp. When not set, the IRMA API server's default applies.")
	return cmd
}

func runSession(cmd *cobra.Command, loader serviceLoader, kind orchestrator.Kind, content orchestrator.Content, options orchestrator.StartOptions) error {
	service, stop, err := loader(cmd)
	if err != nil {
		return err
	}
	defer stop()
	ctx := cmd.Context()

	relyingSessionID, err := cmd.Flags().GetString("relying-session")
	if err != nil {
		return err
	}
	if relyingSessionID == "" {
		relyingSessionID = service.NewRelyingSession()
	}
	options.CallbackData = relyingSessionID

	started, err := service.Start(ctx, kind, content, options)
	if err != nil {
		return err
	}
	qr, err := json.Marshal(started.QRContent)
	if err != nil {
		return err
	}
	cmd.Printf("Started IRMA %s session %s, scan the QR code with the IRMA app:\n", strings.ToLower(string(kind)), started.RemoteSessionID)
	printQrCode(cmd.OutOrStdout(), string(qr))

	result, err := service.WaitForCompletion(ctx, kind, started.RemoteSessionID)
	if err != nil {
		return err
	}
	cmd.Printf("Session status: %s\n", result.Status)
	if result.Status != orchestrator.Completed {
		return fmt.Errorf("IRMA session %s was not completed (remote status: %s)", started.RemoteSessionID, result.RemoteStatus)
	}
	if result.ProofStatus != "" {
		cmd.Printf("Proof status: %s\n", result.ProofStatus)
	}
	if kind == orchestrator.Issuance {
		return nil
	}
	attributes, err := service.GetAttributes(ctx, relyingSessionID)
	if err != nil {
		return err
	}
	cmd.Printf("Relying session: %s\n", relyingSessionID)
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd.Printf("\t%s: %s\n", name, strings.Join(attributes[name], ", "))
	}
	return nil
}

func printQrCode(writer io.Writer, content string) {
	config := qrterminal.Config{
		HalfBlocks: false,
		BlackChar:  qrterminal.WHITE,
		WhiteChar:  qrterminal.BLACK,
		Level:      qrterminal.M,
		Writer:     writer,
		QuietZone:  1,
	}
	qrterminal.GenerateWithConfig(content, config)
}

// loadService configures and starts the storage and IRMA engines using the command's flags.
func loadService(cmd *cobra.Command) (orchestrator.Service, func(), error) {
	system := core.NewSystem()
	storageEngine := storage.New()
	irmaEngine := orchestrator.NewEngine(storageEngine)
	system.RegisterEngine(storageEngine)
	system.RegisterEngine(irmaEngine)
	if err := system.Load(cmd.Flags()); err != nil {
		return nil, nil, err
	}
	if err := system.Configure(); err != nil {
		_ = system.Shutdown()
		return nil, nil, err
	}
	if err := system.Start(); err != nil {
		_ = system.Shutdown()
		return nil, nil, err
	}
	return irmaEngine, func() {
		_ = system.Shutdown()
	}, nil
}
