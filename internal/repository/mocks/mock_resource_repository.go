package mocks

import (
	"context"

	"cmsapi/internal/filter"
	"cmsapi/internal/schema"

	"github.com/stretchr/testify/mock"
)

type MockResourceRepository[T any] struct {
	mock.Mock
}

func (m *MockResourceRepository[T]) FindAll(ctx context.Context, f *filter.Filter, populate []string) ([]T, error) {
	args := m.Called(ctx, f, populate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockResourceRepository[T]) FindByID(ctx context.Context, id uint, populate []string) (*T, error) {
	args := m.Called(ctx, id, populate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResourceRepository[T]) Count(ctx context.Context, f *filter.Filter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResourceRepository[T]) Search(ctx context.Context, plan schema.SearchPlan, term filter.SearchTerm, f *filter.Filter, populate []string) ([]T, error) {
	args := m.Called(ctx, plan, term, f, populate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockResourceRepository[T]) Create(ctx context.Context, data map[string]any) (*T, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResourceRepository[T]) Update(ctx context.Context, id uint, data map[string]any) error {
	args := m.Called(ctx, id, data)
	return args.Error(0)
}

func (m *MockResourceRepository[T]) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResourceRepository[T]) UpdateRelations(ctx context.Context, id uint, values map[string]any) error {
	args := m.Called(ctx, id, values)
	return args.Error(0)
}

func (m *MockResourceRepository[T]) RelatedIDs(ctx context.Context, id uint, alias string) ([]uint, error) {
	args := m.Called(ctx, id, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}
