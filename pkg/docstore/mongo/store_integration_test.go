//go:build integration

package mongo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/docstore/test"
)

// Run with DSX_TEST_MONGO_URI pointing at a disposable server.
type MongoStoreTestSuite struct {
	test.StoreSuite
	store *Store
}

func TestMongoStoreTestSuite(t *testing.T) {
	if os.Getenv("DSX_TEST_MONGO_URI") == "" {
		t.Skip("DSX_TEST_MONGO_URI not set")
	}
	suite.Run(t, new(MongoStoreTestSuite))
}

func (s *MongoStoreTestSuite) SetupTest() {
	s.Ctx = context.Background()
	s.store = NewStore(Params{
		URI:        os.Getenv("DSX_TEST_MONGO_URI"),
		Database:   "dsx_test",
		Collection: "users",
	})
	s.Require().NoError(s.store.Connect(s.Ctx))
	s.Require().NoError(s.store.DeleteAll(s.Ctx))
	s.Store = s.store
}

func (s *MongoStoreTestSuite) TearDownTest() {
	_ = s.store.DeleteAll(s.Ctx)
	_ = s.store.Close(s.Ctx)
}
