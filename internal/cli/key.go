// Package cli — key.go implements the "receipted key" command group for
// managing the stored API credential.
//
// The key lives as a GROQ_API_KEY line in a local dotenv file (".env" by
// default, configurable via receipted.jsonc). The view subcommand only
// ever shows a masked form; there is deliberately no way to print the
// full key back out.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/receipted/internal/config"
	"github.com/mmr-tortoise/receipted/internal/credential"
	"github.com/mmr-tortoise/receipted/internal/model"
)

// NewKeyCommand creates the "key" command group with its view, set, and
// remove subcommands.
func NewKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored inference API key",
		Long: `Manage the API key used to authorize inference calls.

The key is stored as a ` + credential.DefaultKeyName + ` line in a local dotenv
file. Other entries in the file are preserved by set and remove.

Examples:
  receipted key view
  receipted key set gsk_live_...
  receipted key remove`,
	}

	cmd.AddCommand(newKeyViewCommand())
	cmd.AddCommand(newKeySetCommand())
	cmd.AddCommand(newKeyRemoveCommand())

	return cmd
}

// keyStore resolves the credential store from the effective config, so
// `key` subcommands and extraction agree on which dotenv file is in use.
func keyStore() (*credential.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid configuration", err)
	}
	return credential.NewStore(cfg.EnvFile), nil
}

// newKeyViewCommand creates "key view": print the masked key.
func newKeyViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the stored API key in masked form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keyStore()
			if err != nil {
				return err
			}

			masked, err := store.View()
			if err != nil {
				if errors.Is(err, model.ErrMissingCredential) {
					return model.WrapCLIError(model.ExitMissingCredential, "no API key found", err)
				}
				return err
			}

			if IsJSONOutput() {
				printKeyJSON(map[string]string{"key": masked, "file": store.Path})
			} else {
				fmt.Printf("Current API key (%s): %s\n", store.Path, masked)
			}
			return nil
		},
	}
}

// newKeySetCommand creates "key set <value>": store a new key.
func newKeySetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>",
		Short: "Store a new API key, overwriting any existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keyStore()
			if err != nil {
				return err
			}

			if err := store.Set(args[0]); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to store API key", err)
			}
			VerboseLog("Wrote %s to %s", store.KeyName, store.Path)

			if IsJSONOutput() {
				printKeyJSON(map[string]string{"key": credential.Mask(args[0]), "file": store.Path})
			} else {
				fmt.Printf("API key updated in %s\n", store.Path)
			}
			return nil
		},
	}
}

// newKeyRemoveCommand creates "key remove": delete the stored key.
func newKeyRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keyStore()
			if err != nil {
				return err
			}

			// Removing an absent key is a no-op, matching the contract
			// that absence is a state, not an error, for remove.
			if err := store.Remove(); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to remove API key", err)
			}

			if IsJSONOutput() {
				printKeyJSON(map[string]string{"removed": store.KeyName, "file": store.Path})
			} else {
				fmt.Printf("API key removed from %s\n", store.Path)
			}
			return nil
		},
	}
}

// printKeyJSON prints a small key-command result object on stdout.
func printKeyJSON(fields map[string]string) {
	data, _ := json.MarshalIndent(fields, "", "  ")
	fmt.Println(string(data))
}
