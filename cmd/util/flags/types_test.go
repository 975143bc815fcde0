//go:build unit || !integration

package flags

import (
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/config/types"
)

type FlagTypesSuite struct {
	suite.Suite
}

func TestFlagTypesSuite(t *testing.T) {
	suite.Run(t, new(FlagTypesSuite))
}

func (s *FlagTypesSuite) TestAttributeParserKeepsJSONTypes() {
	for input, expected := range map[string]interface{}{
		"age=36":         float64(36),
		"connected=true": true,
		"name=ada":       "ada",
		`nick="ada"`:     "ada",
		"empty=":         "",
		"tags=[1,2]":     []interface{}{float64(1), float64(2)},
		"note=x=y":       "x=y",
		"missing=null":   nil,
	} {
		_, value, err := AttributeParser(input)
		s.Require().NoError(err, input)
		s.Equal(expected, value, input)
	}
}

func (s *FlagTypesSuite) TestAttributeParserRejectsMissingSeparator() {
	_, _, err := AttributeParser("name")
	s.Error(err)
	_, _, err = AttributeParser("=ada")
	s.Error(err)
}

func (s *FlagTypesSuite) TestAttributesFlagCollectsRepeatedValues() {
	var attrs map[string]interface{}
	flag := AttributesFlag(&attrs)
	s.Require().NoError(flag.Set("name=ada"))
	s.Require().NoError(flag.Set("age=36"))
	s.Require().NoError(flag.Set("name=grace"))

	s.Equal(map[string]interface{}{"name": "grace", "age": float64(36)}, attrs)
	s.Equal("age=36, name=grace", flag.String())
	s.Equal("key=value", flag.Type())
}

func (s *FlagTypesSuite) TestStoreTypeFlag() {
	value := types.StoreMongo
	flag := StoreTypeFlag(&value)
	s.Require().NoError(flag.Set("boltdb"))
	s.Equal(types.StoreBoltDB, value)
	s.Equal("boltdb", flag.String())
	s.Error(flag.Set("cassandra"))
}

func (s *FlagTypesSuite) TestBusTypeFlag() {
	value := types.BusRedis
	flag := BusTypeFlag(&value)
	s.Require().NoError(flag.Set("embedded"))
	s.Equal(types.BusEmbedded, value)
	s.Error(flag.Set("kafka"))
}

func (s *FlagTypesSuite) TestSortByFlag() {
	var value []table.SortBy
	flag := SortByFlag(&value)
	s.Require().NoError(flag.Set("-Updated, UUID"))
	s.Equal([]table.SortBy{
		{Name: "Updated", Mode: table.Dsc},
		{Name: "UUID", Mode: table.Asc},
	}, value)
	s.Equal("-Updated,UUID", flag.String())

	s.Error(flag.Set("UUID,-"))
}
