package nats

import (
	"errors"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/dsx-project/dsx/pkg/models"
)

const (
	transportServerComponent = "BusServer"
	transportClientComponent = "BusClient"
)

// NewConfigurationError creates a new error for a configuration error
func NewConfigurationError(message string, args ...interface{}) *models.BaseError {
	return models.NewBaseError(message, args...).
		WithComponent(transportServerComponent).
		WithCode(models.ConfigurationError)
}

// interceptConnectionError adds a hint to errors returned while dialing.
func interceptConnectionError(err error, servers string) error {
	if errors.Is(err, nats.ErrNoServers) || strings.Contains(err.Error(), "connection refused") {
		return models.WrapBaseError(err, "failed to connect to NATS at %s", servers).
			WithComponent(transportClientComponent).
			WithCode(models.NetworkFailure).
			WithHint("check that a NATS server is listening at Bus.Address, or run one in process with Bus.Type=embedded")
	}
	return models.WrapBaseError(err, "failed to connect to NATS at %s", servers).
		WithComponent(transportClientComponent).
		WithCode(models.NetworkFailure)
}
