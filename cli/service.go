package cli

import (
	"errors"

	"github.com/alecthomas/kong"

	actx "go.hackfix.me/crudkit/app/context"
	aerrors "go.hackfix.me/crudkit/app/errors"
	"go.hackfix.me/crudkit/authz"
	"go.hackfix.me/crudkit/crud"
	"go.hackfix.me/crudkit/db/models"
	"go.hackfix.me/crudkit/resource/services"
)

// Service manages services via the same handlers used by the web API. CLI
// calls are made by a local caller with the admin role.
type Service struct {
	Add struct {
		Name              string    `arg:"" help:"Service name."`
		Port              portField `arg:"" help:"Service port."`
		Description       string    `help:"Service description."`
		MaxAccessDuration string    `help:"The maximum access duration per client. Defaults to the configured value."`
	} `kong:"cmd,help='Add a new service.'"`
	Show struct {
		Name string `arg:"" help:"Service name."`
	} `kong:"cmd,help='Show the details of a service.'"`
	Update struct {
		Name              string  `arg:"" help:"Service name."`
		NewName           *string `name:"name" help:"New service name."`
		Port              *uint16 `help:"Service port."`
		Description       *string `help:"Service description."`
		MaxAccessDuration string  `help:"The maximum access duration per client."`
	} `kong:"cmd,help='Update a service.'"`
	Remove struct {
		Name string `arg:"" help:"Service name."`
	} `kong:"cmd,help='Remove a service.',aliases='rm'"`
	List struct {
		Name  string `help:"Only list services whose name matches this glob pattern."`
		Limit int    `help:"Maximum number of services to list. Defaults to the configured value."`
		Order string `default:"name" help:"Column to sort by. Prefix with '-' for descending order, e.g. --order=-port."`
	} `kong:"cmd,help='List services.',aliases='ls'"`
}

// Run the service command.
func (c *Service) Run(kctx *kong.Context, appCtx *actx.Context) error {
	h, err := newServiceHandlers(appCtx)
	if err != nil {
		return err
	}

	caller, err := localCaller(appCtx)
	if err != nil {
		return err
	}

	ctx := appCtx.Ctx
	opts := crud.Options{"source": "cli"}

	switch kctx.Args[1] {
	case "add":
		data := crud.Payload{
			services.KeyName:        c.Add.Name,
			services.KeyPort:        int(c.Add.Port),
			services.KeyDescription: c.Add.Description,
		}
		if c.Add.MaxAccessDuration != "" {
			data[services.KeyMaxAccessDuration] = c.Add.MaxAccessDuration
		}
		_, err = h.Create(opts)(ctx, data, caller)
	case "show":
		var id uint64
		if id, err = serviceID(appCtx, c.Show.Name); err != nil {
			return err
		}
		var svc models.Service
		if svc, err = h.Detail(opts)(ctx, id, caller); err != nil {
			return err //nolint:wrapcheck // Descriptive enough.
		}
		return renderServices(appCtx.Stdout, []models.Service{svc}, true)
	case "update":
		var id uint64
		if id, err = serviceID(appCtx, c.Update.Name); err != nil {
			return err
		}
		data := crud.Payload{}
		if c.Update.NewName != nil {
			data[services.KeyName] = *c.Update.NewName
		}
		if c.Update.Port != nil {
			data[services.KeyPort] = int(*c.Update.Port)
		}
		if c.Update.Description != nil {
			data[services.KeyDescription] = *c.Update.Description
		}
		if c.Update.MaxAccessDuration != "" {
			data[services.KeyMaxAccessDuration] = c.Update.MaxAccessDuration
		}
		_, err = h.Update(opts)(ctx, id, data, caller)
	case "remove", "rm":
		var id uint64
		if id, err = serviceID(appCtx, c.Remove.Name); err != nil {
			return err
		}
		_, err = h.Delete(opts)(ctx, id, caller)
	case "list", "ls":
		filters := crud.Payload{services.KeyOrder: c.List.Order}
		if c.List.Name != "" {
			filters[services.KeyName] = c.List.Name
		}
		if c.List.Limit > 0 {
			filters[services.KeyLimit] = c.List.Limit
		}
		var svcs []models.Service
		if svcs, err = h.List(opts)(ctx, filters, caller); err != nil {
			return err //nolint:wrapcheck // Descriptive enough.
		}
		if len(svcs) == 0 {
			return nil
		}
		return renderServices(appCtx.Stdout, svcs, false)
	}

	return err //nolint:wrapcheck // Descriptive enough.
}

func newServiceHandlers(appCtx *actx.Context) (*services.Handlers, error) {
	svcCfg := appCtx.Config.Services
	h, err := services.NewHandlers(appCtx.DB, appCtx.Logger,
		services.WithDefaultMaxAccessDuration(svcCfg.DefaultMaxAccessDuration.V),
		services.WithListLimit(svcCfg.ListLimit.V),
	)
	if err != nil {
		return nil, aerrors.NewRuntimeError("failed creating service handlers", err, "")
	}

	return h, nil
}

// localCaller returns the caller of CLI commands, named after the current
// system user.
func localCaller(appCtx *actx.Context) (*authz.Caller, error) {
	user := "local"
	if appCtx.Env != nil {
		if u := appCtx.Env.Get("USER"); u != "" {
			user = u
		}
	}

	return authz.NewCaller(user, authz.RoleAdmin)
}

// serviceID returns the ID of the service with the given name.
func serviceID(appCtx *actx.Context, name string) (uint64, error) {
	svc := &models.Service{Name: name}
	if err := svc.Load(appCtx.DB.NewContext(), appCtx.DB); err != nil {
		return 0, err //nolint:wrapcheck // Descriptive enough.
	}
	return svc.ID, nil
}

type portField uint16

func (p portField) Validate() error {
	if p == 0 {
		return errors.New("must be greater than 0")
	}
	return nil
}
