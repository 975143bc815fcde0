// Package test holds the behaviour every docstore.Store backend must share.
// Backend packages embed StoreSuite and assign Store in SetupTest.
package test

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
)

type StoreSuite struct {
	suite.Suite
	Ctx   context.Context
	Store docstore.Store
}

func (s *StoreSuite) TestUpsertThenFindOne() {
	doc := models.NewDocument("u1", models.Attributes{
		"name":      "ada",
		"age":       float64(36),
		"connected": false,
		"address":   map[string]interface{}{"city": "London"},
	})
	s.Require().NoError(s.Store.Upsert(s.Ctx, doc))

	found, err := s.Store.FindOne(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal(doc, found)
}

func (s *StoreSuite) TestUpsertKeepsOneRecordPerKey() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, models.NewDocument("u1", models.Attributes{"name": "ada"})))
	s.Require().NoError(s.Store.Upsert(s.Ctx, models.NewDocument("u1", models.Attributes{"team": "core"})))

	all, err := s.Store.FindAll(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(models.Attributes{"name": "ada", "team": "core"}, all[0].Attributes)
}

func (s *StoreSuite) TestUpdateLeavesAbsentAndNullFieldsUntouched() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, models.NewDocument("u1", models.Attributes{
		"name": "ada", "team": "core", "connected": true,
	})))

	matched, err := s.Store.Update(s.Ctx, "u1", models.Attributes{"team": "infra", "name": nil})
	s.Require().NoError(err)
	s.True(matched)

	found, err := s.Store.FindOne(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal(models.Attributes{"name": "ada", "team": "infra", "connected": true}, found.Attributes)
}

func (s *StoreSuite) TestUpdateMissingKeyIsNoop() {
	matched, err := s.Store.Update(s.Ctx, "ghost", models.Attributes{"connected": true})
	s.Require().NoError(err)
	s.False(matched)

	_, err = s.Store.FindOne(s.Ctx, "ghost")
	s.True(docstore.IsNotFound(err), "expected not found, got %v", err)
}

func (s *StoreSuite) TestUpdateWithOnlyNullsMatchesNothing() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, models.NewDocument("u1", models.Attributes{"name": "ada"})))

	matched, err := s.Store.Update(s.Ctx, "u1", models.Attributes{"name": nil, models.KeyField: "u1"})
	s.Require().NoError(err)
	s.False(matched)

	found, err := s.Store.FindOne(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal(models.Attributes{"name": "ada"}, found.Attributes)
}

func (s *StoreSuite) TestFindOneMissing() {
	_, err := s.Store.FindOne(s.Ctx, "missing")
	s.Require().Error(err)
	s.True(docstore.IsNotFound(err))
	s.False(docstore.IsUnavailable(err))
}

func (s *StoreSuite) TestDeleteOne() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, models.NewDocument("u1", models.Attributes{"name": "ada"})))
	s.Require().NoError(s.Store.Upsert(s.Ctx, models.NewDocument("u2", models.Attributes{"name": "bob"})))

	s.Require().NoError(s.Store.DeleteOne(s.Ctx, "u1"))
	// deleting twice is not an error
	s.Require().NoError(s.Store.DeleteOne(s.Ctx, "u1"))

	_, err := s.Store.FindOne(s.Ctx, "u1")
	s.True(docstore.IsNotFound(err))
	_, err = s.Store.FindOne(s.Ctx, "u2")
	s.NoError(err)
}

func (s *StoreSuite) TestDeleteAllThenFindAll() {
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.Store.Upsert(s.Ctx, models.NewDocument(fmt.Sprintf("u%d", i), models.Attributes{"i": float64(i)})))
	}
	all, err := s.Store.FindAll(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 5)

	s.Require().NoError(s.Store.DeleteAll(s.Ctx))

	all, err = s.Store.FindAll(s.Ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *StoreSuite) TestConcurrentUpsertsOnDifferentKeys() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.NoError(s.Store.Upsert(s.Ctx, models.NewDocument(fmt.Sprintf("k%02d", i), models.Attributes{"i": float64(i)})))
		}(i)
	}
	wg.Wait()

	all, err := s.Store.FindAll(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 20)
}

func (s *StoreSuite) TestAvailable() {
	s.True(s.Store.Available())
}
