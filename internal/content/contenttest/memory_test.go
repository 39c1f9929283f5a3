package contenttest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"chapterpress/internal/content/contenttest"
	"chapterpress/internal/models"
)

func TestMemory_RepositoryContract(t *testing.T) {
	contenttest.RunRepositoryContract(t, contenttest.New().Repositories())
}

func TestMemory_ErrAndWrites(t *testing.T) {
	m := contenttest.New()
	repos := m.Repositories()

	_, err := repos.Categories.Create(context.Background(), &models.Category{Name: "A", Slug: "a"})
	assert.NoError(t, err)
	assert.Equal(t, 1, m.Writes)

	m.Err = errors.New("boom")
	_, err = repos.Categories.List(context.Background())
	assert.EqualError(t, err, "boom")
}
