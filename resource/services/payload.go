package services

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.hackfix.me/crudkit/crud"
	"go.hackfix.me/crudkit/db/models"
	"go.hackfix.me/crudkit/db/types"
	"go.hackfix.me/crudkit/xtime"
)

// Payload keys of service data.
const (
	KeyName              = "name"
	KeyDescription       = "description"
	KeyPort              = "port"
	KeyMaxAccessDuration = "max_access_duration"
)

// Filter keys of list calls, in addition to KeyName and KeyPort.
const (
	KeyLimit  = "limit"
	KeyOffset = "offset"
	KeyOrder  = "order"
)

// MaxListLimit is the maximum number of services returned by a single list call.
const MaxListLimit = 1000

var nameRx = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{0,62}$`)

// processCreate validates the data of a new service, and returns it with
// typed values. Unset optional values are filled in from the options.
func processCreate(data crud.Payload, opts crud.Options) (crud.Payload, error) {
	if err := checkKeys(data, KeyName, KeyDescription, KeyPort, KeyMaxAccessDuration); err != nil {
		return nil, err
	}

	if _, ok := data[KeyName]; !ok {
		return nil, types.InvalidInputError{Msg: "service name is required"}
	}
	if _, ok := data[KeyPort]; !ok {
		return nil, types.InvalidInputError{Msg: "service port is required"}
	}

	base := models.Service{
		MaxAccessDuration: opts.Duration("default_max_access_duration", time.Hour),
	}

	return mergeService(base, data)
}

// processUpdate validates a partial update of svc, and returns the complete
// service data with typed values.
func processUpdate(data crud.Payload, svc models.Service) (crud.Payload, error) {
	if err := checkKeys(data, KeyName, KeyDescription, KeyPort, KeyMaxAccessDuration); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, types.InvalidInputError{Msg: "nothing to update"}
	}

	return mergeService(svc, data)
}

func mergeService(svc models.Service, data crud.Payload) (crud.Payload, error) {
	var err error
	if v, ok := data[KeyName]; ok {
		if svc.Name, err = toString(KeyName, v); err != nil {
			return nil, err
		}
		if !nameRx.MatchString(svc.Name) {
			return nil, types.InvalidInputError{Msg: fmt.Sprintf("invalid service name '%s'", svc.Name)}
		}
	}
	if v, ok := data[KeyDescription]; ok {
		if svc.Description, err = toString(KeyDescription, v); err != nil {
			return nil, err
		}
		svc.Description = strings.TrimSpace(svc.Description)
	}
	if v, ok := data[KeyPort]; ok {
		if svc.Port, err = toPort(v); err != nil {
			return nil, err
		}
	}
	if v, ok := data[KeyMaxAccessDuration]; ok {
		if svc.MaxAccessDuration, err = toDuration(v); err != nil {
			return nil, err
		}
	}
	if svc.MaxAccessDuration <= 0 {
		return nil, types.InvalidInputError{Msg: "max access duration must be positive"}
	}

	return crud.Payload{
		KeyName:              svc.Name,
		KeyDescription:       svc.Description,
		KeyPort:              svc.Port,
		KeyMaxAccessDuration: svc.MaxAccessDuration,
	}, nil
}

// processFilters validates list filters, and returns them with typed values.
// Unset pagination and order values are filled in from the options.
func processFilters(filters crud.Payload, opts crud.Options) (crud.Payload, error) {
	if err := checkKeys(filters, KeyName, KeyPort, KeyLimit, KeyOffset, KeyOrder); err != nil {
		return nil, err
	}

	out := crud.Payload{
		KeyLimit:  opts.Int(KeyLimit, 100),
		KeyOffset: 0,
		KeyOrder:  opts.String(KeyOrder, "name"),
	}

	var err error
	if v, ok := filters[KeyName]; ok {
		var pattern string
		if pattern, err = toString(KeyName, v); err != nil {
			return nil, err
		}
		if pattern != "" {
			out[KeyName] = pattern
		}
	}
	if v, ok := filters[KeyPort]; ok {
		if out[KeyPort], err = toPort(v); err != nil {
			return nil, err
		}
	}
	for _, key := range []string{KeyLimit, KeyOffset} {
		v, ok := filters[key]
		if !ok {
			continue
		}
		n, err := toInt(key, v)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, types.InvalidInputError{Msg: fmt.Sprintf("%s must not be negative", key)}
		}
		out[key] = n
	}
	if v, ok := filters[KeyOrder]; ok {
		order, err := toString(KeyOrder, v)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(models.ServiceOrderColumns, strings.TrimPrefix(order, "-")) {
			return nil, types.InvalidInputError{Msg: fmt.Sprintf("invalid order '%s'", order)}
		}
		out[KeyOrder] = order
	}

	if limit, _ := out[KeyLimit].(int); limit == 0 || limit > MaxListLimit {
		out[KeyLimit] = MaxListLimit
	}

	return out, nil
}

// queryFilter converts processed list filters into a database filter.
func queryFilter(filters crud.Payload) *types.Filter {
	filter := &types.Filter{Where: "1=1", Args: []any{}}
	if pattern, ok := filters[KeyName].(string); ok {
		filter = filter.And(types.NewFilter("s.name GLOB ?", []any{pattern}))
	}
	if port, ok := filters[KeyPort].(uint16); ok {
		filter = filter.And(types.NewFilter("s.port = ?", []any{port}))
	}
	filter.Limit, _ = filters[KeyLimit].(int)
	filter.Offset, _ = filters[KeyOffset].(int)
	filter.Order, _ = filters[KeyOrder].(string)

	return filter
}

// serviceFromPayload returns a service with the values of processed data.
func serviceFromPayload(data crud.Payload) models.Service {
	var svc models.Service
	svc.Name, _ = data[KeyName].(string)
	svc.Description, _ = data[KeyDescription].(string)
	svc.Port, _ = data[KeyPort].(uint16)
	svc.MaxAccessDuration, _ = data[KeyMaxAccessDuration].(time.Duration)
	return svc
}

func checkKeys(data crud.Payload, allowed ...string) error {
	for key := range data {
		if !slices.Contains(allowed, key) {
			return types.InvalidInputError{Msg: fmt.Sprintf("unknown field '%s'", key)}
		}
	}
	return nil
}

func toString(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", types.InvalidInputError{Msg: fmt.Sprintf("%s must be a string", key)}
	}
	return s, nil
}

func toInt(key string, v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case uint16:
		return int(val), nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) <= math.MaxInt32 {
			return int(val), nil
		}
	case string:
		if n, err := strconv.Atoi(val); err == nil {
			return n, nil
		}
	}
	return 0, types.InvalidInputError{Msg: fmt.Sprintf("%s must be an integer", key)}
}

func toPort(v any) (uint16, error) {
	n, err := toInt(KeyPort, v)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > math.MaxUint16 {
		return 0, types.InvalidInputError{Msg: fmt.Sprintf("port must be between 1 and %d", math.MaxUint16)}
	}
	return uint16(n), nil
}

func toDuration(v any) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case xtime.Duration:
		return time.Duration(val), nil
	case float64:
		return time.Duration(val), nil
	case string:
		dur, err := xtime.ParseDuration(val)
		if err != nil {
			return 0, types.InvalidInputError{
				Msg: fmt.Sprintf("invalid %s '%s': %s", KeyMaxAccessDuration, val, err),
			}
		}
		return dur, nil
	}
	return 0, types.InvalidInputError{Msg: fmt.Sprintf("%s must be a duration", KeyMaxAccessDuration)}
}
