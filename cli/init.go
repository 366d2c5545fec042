package cli

import (
	"fmt"

	actx "go.hackfix.me/crudkit/app/context"
	aerrors "go.hackfix.me/crudkit/app/errors"
)

// The Init command creates the application database, and writes the
// configuration file with default values.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit != "" {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("already initialized with version %s", appCtx.VersionInit), nil, "")
	}

	if err := appCtx.DB.Init(appCtx.Version.Semantic, appCtx.Logger); err != nil {
		return aerrors.NewRuntimeError("failed initializing database", err, "")
	}

	if err := appCtx.Config.Save(); err != nil {
		return aerrors.NewRuntimeError("failed saving configuration", err, "")
	}

	appCtx.Logger.Info("initialized", "version", appCtx.Version.Semantic,
		"config", appCtx.Config.Path())

	return nil
}
