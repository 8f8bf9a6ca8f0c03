package mocks

import (
	"context"

	"cmsapi/internal/filter"

	"github.com/stretchr/testify/mock"
)

type MockResourceService[T any] struct {
	mock.Mock
}

func (m *MockResourceService[T]) FetchAll(ctx context.Context, params filter.Params) ([]T, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockResourceService[T]) Fetch(ctx context.Context, id uint) (*T, error) {
	args := m.Called(ctx, id)
	return m.record(args)
}

func (m *MockResourceService[T]) Count(ctx context.Context, params filter.Params) (int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResourceService[T]) Add(ctx context.Context, values map[string]any) (*T, error) {
	args := m.Called(ctx, values)
	return m.record(args)
}

func (m *MockResourceService[T]) Edit(ctx context.Context, id uint, values map[string]any) (*T, error) {
	args := m.Called(ctx, id, values)
	return m.record(args)
}

func (m *MockResourceService[T]) Remove(ctx context.Context, id uint) (*T, error) {
	args := m.Called(ctx, id)
	return m.record(args)
}

func (m *MockResourceService[T]) Search(ctx context.Context, params filter.Params) ([]T, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockResourceService[T]) AddRelation(ctx context.Context, id uint, values map[string]any) (*T, error) {
	args := m.Called(ctx, id, values)
	return m.record(args)
}

func (m *MockResourceService[T]) EditRelation(ctx context.Context, id uint, values map[string]any) (*T, error) {
	args := m.Called(ctx, id, values)
	return m.record(args)
}

func (m *MockResourceService[T]) RemoveRelation(ctx context.Context, id uint, values map[string]any) (*T, error) {
	args := m.Called(ctx, id, values)
	return m.record(args)
}

func (m *MockResourceService[T]) record(args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}
