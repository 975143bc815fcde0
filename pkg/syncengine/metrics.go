package syncengine

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dsx-project/dsx/pkg/telemetry"
)

var (
	Meter = otel.GetMeterProvider().Meter("syncengine")

	intentsHandled = telemetry.Must(telemetry.NewCounter(Meter,
		"syncengine.intents.handled", "Number of intents applied to the store and fanned out"))

	intentsDropped = telemetry.Must(telemetry.NewCounter(Meter,
		"syncengine.intents.dropped", "Number of intents dropped before any broadcast"))

	busEchoes = telemetry.Must(telemetry.NewCounter(Meter,
		"syncengine.bus.echoes", "Number of self-originated bus messages discarded"))

	storeDuration = telemetry.Must(telemetry.NewHistogram(Meter,
		"syncengine.store.duration", "Time taken by the store write of an intent"))
)

const (
	AttrOpKey     = attribute.Key("op")
	AttrOriginKey = attribute.Key("origin")
	AttrReasonKey = attribute.Key("reason")

	reasonMalformed   = "malformed"
	reasonUnavailable = "store_unavailable"
	reasonStoreError  = "store_error"
	reasonNoMatch     = "no_match"
)
