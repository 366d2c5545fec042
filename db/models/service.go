package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.hackfix.me/crudkit/db/types"
)

// Service is a network service whose access metadata is managed as a resource.
type Service struct {
	ID                uint64        `json:"id"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Port              uint16        `json:"port"`
	MaxAccessDuration time.Duration `json:"max_access_duration"`
}

// ServiceOrderColumns are the columns services can be sorted by.
var ServiceOrderColumns = []string{"id", "name", "port", "created_at", "updated_at"}

// Save stores the service data in the database.
func (s *Service) Save(ctx context.Context, d types.Querier, update bool) error {
	timeNow := d.TimeNow().UTC()
	if !update {
		insertStmt := `INSERT INTO services
		(id, created_at, updated_at, name, description, port, max_access_duration)
		VALUES (NULL, ?, ?, ?, ?, ?, ?)`
		res, err := d.ExecContext(ctx, insertStmt,
			timeNow, timeNow, s.Name, s.Description, s.Port, s.MaxAccessDuration)
		if err != nil {
			return types.Err("service", fmt.Sprintf("name '%s'", s.Name), err)
		}

		if s.ID, err = lastInsertID(res); err != nil {
			return err
		}
		s.CreatedAt = timeNow
		s.UpdatedAt = timeNow

		return nil
	}

	filter, filterStr, err := s.createFilter()
	if err != nil {
		return err
	}

	args := append([]any{timeNow, s.Name, s.Description, s.Port, s.MaxAccessDuration}, filter.Args...)
	updateStmt := fmt.Sprintf(`UPDATE services
		SET updated_at = ?,
		    name = ?,
		    description = ?,
		    port = ?,
		    max_access_duration = ?
		WHERE %s`, filter.Where)
	res, err := d.ExecContext(ctx, updateStmt, args...)
	if err != nil {
		return types.Err("service", filterStr, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	}
	if n == 0 {
		return types.NoResultError{ModelName: "service", ID: filterStr}
	}
	if n > 1 {
		return types.IntegrityError{Msg: fmt.Sprintf("updated %d services", n)}
	}
	s.UpdatedAt = timeNow

	return nil
}

// Load the service data from the database. Either the service ID or Name must
// be set for the lookup.
func (s *Service) Load(ctx context.Context, d types.Querier) error {
	filter, filterStr, err := s.createFilter()
	if err != nil {
		return err
	}
	filter.Where = "s." + filter.Where

	services, err := Services(ctx, d, filter)
	if err != nil {
		return err
	}

	if len(services) == 0 {
		return types.NoResultError{ModelName: "service", ID: filterStr}
	}

	// The unique constraints on both services.id and services.name should
	// return only a single result.
	if len(services) > 1 {
		return types.IntegrityError{Msg: fmt.Sprintf("loaded %d services", len(services))}
	}
	*s = *services[0]

	return nil
}

// Delete removes the service data from the database. Either the service ID or
// Name must be set for the lookup. It returns an error if the service doesn't
// exist.
func (s *Service) Delete(ctx context.Context, d types.Querier) error {
	filter, filterStr, err := s.createFilter()
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(`DELETE FROM services WHERE %s`, filter.Where)

	res, err := d.ExecContext(ctx, stmt, filter.Args...)
	if err != nil {
		return types.Err("service", filterStr, err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "service", ID: filterStr}
	}

	return nil
}

func (s *Service) createFilter() (*types.Filter, string, error) {
	switch {
	case s.ID != 0:
		return types.NewFilter("id = ?", []any{s.ID}), fmt.Sprintf("ID %d", s.ID), nil
	case s.Name != "":
		return types.NewFilter("name = ?", []any{s.Name}), fmt.Sprintf("name '%s'", s.Name), nil
	default:
		return nil, "", types.InvalidInputError{Msg: "either service ID or Name must be set"}
	}
}

// Services returns one or more services from the database. An optional filter
// can be passed to limit and sort the results. Filter conditions must refer to
// columns with the "s." alias.
func Services(ctx context.Context, d types.Querier, filter *types.Filter) (services []*Service, rerr error) {
	where, args := filter.WhereClause()
	query := fmt.Sprintf(`SELECT
			s.id, s.created_at, s.updated_at, s.name, s.description, s.port,
			s.max_access_duration
		FROM services s %s %s %s`,
		where, orderClause(filter, "s", ServiceOrderColumns, "name"), filter.LimitClause())

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "services", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing services rows: %w", err)
		}
	}()

	services = make([]*Service, 0)
	for rows.Next() {
		var s Service
		err = rows.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Name, &s.Description,
			&s.Port, &s.MaxAccessDuration)
		if err != nil {
			return nil, types.ScanError{ModelName: "service", Err: err}
		}
		services = append(services, &s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over services rows: %w", err)
	}

	return services, nil
}

// IsNoResult reports whether err indicates that a record doesn't exist.
func IsNoResult(err error) bool {
	var nrerr types.NoResultError
	return errors.As(err, &nrerr)
}
