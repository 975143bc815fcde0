package types

import (
	"fmt"
	"strings"
)

type StoreType string

const (
	StoreMongo    StoreType = "mongo"
	StoreBoltDB   StoreType = "boltdb"
	StoreSQLite   StoreType = "sqlite"
	StoreInMemory StoreType = "inmemory"
	StoreDisabled StoreType = "disabled"
)

var StoreTypes = []StoreType{StoreMongo, StoreBoltDB, StoreSQLite, StoreInMemory, StoreDisabled}

func ParseStoreType(s string) (StoreType, error) {
	for _, t := range StoreTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown store type %q, expected one of %v", s, StoreTypes)
}

func (t *StoreType) UnmarshalText(text []byte) error {
	parsed, err := ParseStoreType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type BusType string

const (
	BusRedis    BusType = "redis"
	BusNATS     BusType = "nats"
	BusEmbedded BusType = "embedded"
	BusDisabled BusType = "disabled"
)

var BusTypes = []BusType{BusRedis, BusNATS, BusEmbedded, BusDisabled}

func ParseBusType(s string) (BusType, error) {
	for _, t := range BusTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown bus type %q, expected one of %v", s, BusTypes)
}

func (t *BusType) UnmarshalText(text []byte) error {
	parsed, err := ParseBusType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
