package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/models"
)

// Validate reports every invalid value of cfg at once.
func Validate(cfg types.Config) error {
	var errs []error
	if cfg.Resource.Model == "" {
		errs = append(errs, errors.New("Resource.Model must not be empty"))
	}
	if !strings.HasPrefix(cfg.Resource.RoutingPrefix, "/") {
		errs = append(errs, fmt.Errorf("Resource.RoutingPrefix %q must start with /", cfg.Resource.RoutingPrefix))
	}
	if cfg.API.Port < 0 || cfg.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("API.Port %d is out of range", cfg.API.Port))
	}
	if _, err := types.ParseStoreType(string(cfg.Store.Type)); err != nil {
		errs = append(errs, err)
	}
	switch cfg.Store.Type {
	case types.StoreMongo:
		if cfg.Store.URI == "" {
			errs = append(errs, errors.New("Store.URI is required by the mongo store"))
		}
	case types.StoreBoltDB, types.StoreSQLite:
		if cfg.Store.Path == "" {
			errs = append(errs, fmt.Errorf("Store.Path is required by the %s store", cfg.Store.Type))
		}
	}
	if _, err := types.ParseBusType(string(cfg.Bus.Type)); err != nil {
		errs = append(errs, err)
	}
	if (cfg.Bus.Type == types.BusRedis || cfg.Bus.Type == types.BusNATS) && cfg.Bus.Address == "" {
		errs = append(errs, fmt.Errorf("Bus.Address is required by the %s bus", cfg.Bus.Type))
	}
	if cfg.Store.RetryInterval <= 0 || cfg.Bus.RetryInterval <= 0 {
		errs = append(errs, errors.New("retry intervals must be positive"))
	}
	if !strings.HasPrefix(cfg.Realtime.Path, "/") {
		errs = append(errs, fmt.Errorf("Realtime.Path %q must start with /", cfg.Realtime.Path))
	}

	if len(errs) == 0 {
		return nil
	}
	return models.WrapBaseError(errors.Join(errs...), "invalid configuration").
		WithCode(models.ConfigurationError).
		WithComponent("Config")
}
