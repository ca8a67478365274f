package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"

	verrors "github.com/securevault/securevault/internal/errors"
	"github.com/securevault/securevault/internal/ui"
)

// startSpinner creates and starts a spinner with the given message when not
// in verbose or debug mode. The returned cleanup function prints FinalMSG
// with a trailing newline, so FinalMSG values need none.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Cleared so s.Stop() does not print it a second time.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// formatError renders a workflow error with a hint where one helps.
func formatError(err error) string {
	msg := ui.CrossMark() + " " + verrors.UserMessage(err)

	switch {
	case errors.Is(err, verrors.ErrKeyNotFound):
		msg += "\n" + ui.Arrow() + " Import your key with " + ui.Code.Sprint("securevault keys import") +
			" or run " + ui.Code.Sprint("securevault keys generate")
	case errors.Is(err, verrors.ErrKeyExists):
		msg += "\n" + ui.Arrow() + " Use " + ui.Flag.Sprint("--force") +
			" to replace it. Files encrypted under the current key will no longer decrypt"
	case errors.Is(err, verrors.ErrAmbiguousID):
		msg += "\n" + ui.Arrow() + " Give more characters of the id, see " + ui.Code.Sprint("securevault ls")
	case errors.Is(err, verrors.ErrFileNotFound), errors.Is(err, verrors.ErrItemNotFound):
		msg += "\n" + ui.Arrow() + " Run " + ui.Code.Sprint("securevault ls") + " to see ids in the current folder"
	case errors.Is(err, verrors.ErrOutputExists):
		msg += "\n" + ui.Arrow() + " Use " + ui.Flag.Sprint("--force") + " to overwrite or " +
			ui.Flag.Sprint("--output") + " to choose another path"
	}

	return msg
}

// isUnexpectedError reports whether err should produce a non-zero exit on
// top of the formatted message.
func isUnexpectedError(err error) bool {
	expected := []error{
		verrors.ErrFileNotFound,
		verrors.ErrFolderNotFound,
		verrors.ErrItemNotFound,
		verrors.ErrFolderExists,
		verrors.ErrInvalidName,
		verrors.ErrRootFolder,
		verrors.ErrNotPreviewable,
		verrors.ErrAmbiguousID,
		verrors.ErrNoFilesFound,
		verrors.ErrKeyExists,
		verrors.ErrOutputExists,
		verrors.ErrInvalidDateFormat,
	}
	for _, target := range expected {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

// finishWithError sets the spinner message for err and returns the error
// the command should exit with.
func finishWithError(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatError(err)
	if isUnexpectedError(err) {
		return err
	}
	return nil
}
