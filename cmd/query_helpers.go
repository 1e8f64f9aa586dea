package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	apperrors "sqlagent/cli/internal/errors"
	"sqlagent/cli/internal/keychain"
	"sqlagent/cli/internal/logging"
	"sqlagent/cli/internal/render"
	"sqlagent/cli/internal/sqlexec"
)

// storedDSN loads the DSN saved by 'sqlagent connect'.
func storedDSN() (string, error) {
	km, err := keychain.GetManager()
	if err != nil {
		return "", err
	}
	return km.LoadDBDSN()
}

// runLocalQuery re-runs sql read-only against the user's database and prints
// the rows the same way the agent's response is shown.
func runLocalQuery(ctx context.Context, sql string) error {
	dsn, origin, err := sqlexec.ResolveDSN(storedDSN)
	if errors.Is(err, sqlexec.ErrNoDSN) {
		pterm.Warning.Println("No database connection configured")
		pterm.Println("   Run 'sqlagent connect' or set SQLAGENT_DSN")
		return err
	}
	if err != nil {
		return apperrors.Wrap(apperrors.QueryFailed, "resolve database", err)
	}
	app.log.Debug("local query", zap.String("dsn_origin", origin), logging.Secret("dsn", dsn))

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var exec *sqlexec.Executor
	err = withSpinner(os.Stdout, "Connecting to "+sqlexec.DatabaseName(dsn), func() error {
		var cerr error
		exec, cerr = sqlexec.Connect(connectCtx, dsn, app.log)
		return cerr
	})
	if err != nil {
		return apperrors.Wrap(apperrors.QueryFailed, "connect", err)
	}
	defer exec.Close()
	exec.Limit = app.cfg.RowPreview

	var res *sqlexec.Result
	err = withSpinner(os.Stdout, render.QueryingText, func() error {
		var qerr error
		res, qerr = exec.RunSelect(ctx, sql)
		return qerr
	})
	if err != nil {
		return apperrors.Wrap(apperrors.QueryFailed, "run query", err)
	}

	title := pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Local Result")
	body := fmt.Sprintf("Rows: %d  (%s, read-only)", res.RowCount, res.Elapsed.Round(time.Millisecond))
	if rows := render.RowsJSON(res.Rows, app.cfg.RowPreview); rows != "" {
		body += "\n\n" + rows
	}
	pterm.DefaultBox.WithTitle(title).Println(body)
	pterm.Println()
	return nil
}
