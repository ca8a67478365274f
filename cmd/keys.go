package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/secrets"
	"github.com/securevault/securevault/internal/ui"
	"github.com/securevault/securevault/internal/utils"
	"github.com/securevault/securevault/internal/workflows"
)

// PasswordEnvVar supplies the key export/import password non-interactively.
const PasswordEnvVar = "SECUREVAULT_PASSWORD"

var (
	keysForce    bool
	keysPassword bool
	keysOutput   string
)

func init() {
	keyGenerateCmd.Flags().BoolVarP(&keysForce, "force", "f", false, "replace an existing key")
	keyImportCmd.Flags().BoolVarP(&keysForce, "force", "f", false, "replace an existing key")
	keyExportCmd.Flags().BoolVarP(&keysPassword, "password", "p", false, "protect the exported key with a password")
	keyExportCmd.Flags().StringVarP(&keysOutput, "output", "o", "", "write the exported key to a file")

	keysCmd.AddCommand(keyGenerateCmd)
	keysCmd.AddCommand(keyExportCmd)
	keysCmd.AddCommand(keyImportCmd)
}

func resetKeysCommandState() {
	keysForce = false
	keysPassword = false
	keysOutput = ""
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the vault encryption key",
}

var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates a new vault key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys generate command")
		spinner, cleanup := startSpinner("Generating key...", verbose)
		defer cleanup()

		result, err := workflows.KeyGenerate(context.Background(), workflows.KeyGenerateOptions{
			Force:     keysForce,
			StorePath: storePath,
		})
		if err != nil {
			return finishWithError(spinner, err)
		}

		msg := ui.CheckMark() + " Generated a new key at " + ui.Path.Sprint(result.KeyPath)
		if result.Replaced {
			msg += "\n" + ui.Warning.Sprint("!") + " The previous key was replaced; files encrypted with it can no longer be decrypted"
		}
		msg += "\n" + ui.Arrow() + " Back it up with " + ui.Code.Sprint("securevault keys export --password")
		spinner.FinalMSG = msg
		return nil
	},
}

var keyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Prints the vault key for backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys export command")

		opts := workflows.KeyExportOptions{OutputPath: keysOutput, StorePath: storePath}
		if keysPassword {
			password, err := readPassword("Password for the exported key: ", true)
			if err != nil {
				return err
			}
			opts.Password = password
		}

		result, err := workflows.KeyExport(context.Background(), opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, formatError(err))
			if isUnexpectedError(err) {
				return err
			}
			return nil
		}

		if result.OutputPath != "" {
			fmt.Println(ui.CheckMark() + " Key written to " + ui.Path.Sprint(result.OutputPath))
			return nil
		}
		fmt.Println(result.Key)
		return nil
	},
}

var keyImportCmd = &cobra.Command{
	Use:   "import [key]",
	Short: "Installs an exported key",
	Long: `Installs a key produced by 'securevault keys export'. The key is read from
the argument or, when none is given, from stdin. Password protected keys
prompt for their password.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting keys import command")

		var data string
		if len(args) == 1 {
			data = args[0]
		} else {
			piped, err := utils.ReadPipedKey(os.Stdin)
			if err != nil {
				return Logger.ErrorfAndReturn("failed to read key: %v", err)
			}
			data = piped
		}

		opts := workflows.KeyImportOptions{Data: data, Force: keysForce, StorePath: storePath}
		if secrets.IsWrappedKey(data) {
			password, err := readPassword("Password: ", false)
			if err != nil {
				return err
			}
			opts.Password = password
		}

		spinner, cleanup := startSpinner("Importing key...", verbose)
		defer cleanup()

		result, err := workflows.KeyImport(context.Background(), opts)
		if err != nil {
			return finishWithError(spinner, err)
		}

		spinner.FinalMSG = ui.CheckMark() + " Key installed at " + ui.Path.Sprint(result.KeyPath)
		return nil
	},
}

// readPassword takes the password from SECUREVAULT_PASSWORD or prompts for
// it, asking twice when confirm is set.
func readPassword(prompt string, confirm bool) (string, error) {
	if password := os.Getenv(PasswordEnvVar); password != "" {
		Logger.Debugf("Using password from %s", PasswordEnvVar)
		return password, nil
	}

	password, err := utils.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", verrors.ErrInvalidPassword
	}

	if confirm {
		again, err := utils.ReadPassword("Confirm password: ")
		if err != nil {
			return "", err
		}
		if again != password {
			return "", fmt.Errorf("%w: passwords do not match", verrors.ErrInvalidPassword)
		}
	}

	return password, nil
}
