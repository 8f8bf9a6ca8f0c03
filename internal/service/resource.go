package service

import (
	"context"
	"errors"
	"fmt"

	"cmsapi/internal/filter"
	"cmsapi/internal/model"
	"cmsapi/internal/repository"
	"cmsapi/internal/schema"

	"go.uber.org/zap"
)

// ResourceService defines the use cases shared by every content resource.
type ResourceService[T model.Entity] interface {
	// FetchAll lists records matching params (filters, _sort, _start, _limit).
	FetchAll(ctx context.Context, params filter.Params) ([]T, error)

	// Fetch returns one record with its auto-populated associations.
	Fetch(ctx context.Context, id uint) (*T, error)

	// Count counts records matching the filters of params.
	Count(ctx context.Context, params filter.Params) (int64, error)

	// Add creates a record from values, then links its relations.
	Add(ctx context.Context, values map[string]any) (*T, error)

	// Edit updates the attributes of a record, then its relations.
	Edit(ctx context.Context, id uint, values map[string]any) (*T, error)

	// Remove detaches a record from all of its associations and deletes it.
	// It returns the record as it was before removal.
	Remove(ctx context.Context, id uint) (*T, error)

	// Search matches the _q parameter against every searchable attribute.
	Search(ctx context.Context, params filter.Params) ([]T, error)

	// AddRelation links more related records; singular associations are replaced.
	AddRelation(ctx context.Context, id uint, values map[string]any) (*T, error)

	// EditRelation replaces the related records of the given associations.
	EditRelation(ctx context.Context, id uint, values map[string]any) (*T, error)

	// RemoveRelation unlinks the given related records.
	RemoveRelation(ctx context.Context, id uint, values map[string]any) (*T, error)
}

type resourceService[T model.Entity] struct {
	schema *schema.Model
	repo   repository.ResourceRepository[T]
	log    *zap.Logger
}

// NewResourceService constructs a ResourceService for the resource described by m.
func NewResourceService[T model.Entity](m *schema.Model, repo repository.ResourceRepository[T], log *zap.Logger) ResourceService[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &resourceService[T]{schema: m, repo: repo, log: log.With(zap.String("resource", m.Name))}
}

func NewCustomerService(repo repository.ResourceRepository[model.Customer], log *zap.Logger) ResourceService[model.Customer] {
	return NewResourceService(model.CustomerSchema, repo, log)
}

func NewSellerService(repo repository.ResourceRepository[model.Seller], log *zap.Logger) ResourceService[model.Seller] {
	return NewResourceService(model.SellerSchema, repo, log)
}

func NewTypeService(repo repository.ResourceRepository[model.Type], log *zap.Logger) ResourceService[model.Type] {
	return NewResourceService(model.TypeSchema, repo, log)
}

func (s *resourceService[T]) FetchAll(ctx context.Context, params filter.Params) ([]T, error) {
	f, err := filter.Convert(s.schema, params)
	if err != nil {
		return nil, err
	}
	return s.repo.FindAll(ctx, f, s.schema.Populate())
}

func (s *resourceService[T]) Fetch(ctx context.Context, id uint) (*T, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	rec, err := s.repo.FindByID(ctx, id, s.schema.Populate())
	if err != nil {
		return nil, mapNotFound(err)
	}
	return rec, nil
}

func (s *resourceService[T]) Count(ctx context.Context, params filter.Params) (int64, error) {
	f, err := filter.Convert(s.schema, params)
	if err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, f)
}

func (s *resourceService[T]) Add(ctx context.Context, values map[string]any) (*T, error) {
	relations, data, err := s.schema.Split(values)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	id := (*created).Identifier()
	if err := s.repo.UpdateRelations(ctx, id, relations); err != nil {
		return nil, fmt.Errorf("link relations of %s %d: %w", s.schema.Name, id, err)
	}
	return s.Fetch(ctx, id)
}

func (s *resourceService[T]) Edit(ctx context.Context, id uint, values map[string]any) (*T, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	relations, data, err := s.schema.Split(values)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := s.repo.Update(ctx, id, data); err != nil {
			return nil, mapNotFound(err)
		}
	} else if _, err := s.Fetch(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRelations(ctx, id, relations); err != nil {
		return nil, fmt.Errorf("update relations of %s %d: %w", s.schema.Name, id, err)
	}
	return s.Fetch(ctx, id)
}

func (s *resourceService[T]) Remove(ctx context.Context, id uint) (*T, error) {
	rec, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRelations(ctx, id, s.schema.ClearPayload()); err != nil {
		return nil, fmt.Errorf("detach %s %d: %w", s.schema.Name, id, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.log.Debug("record removed", zap.Uint("id", id))
	return rec, nil
}

func (s *resourceService[T]) Search(ctx context.Context, params filter.Params) ([]T, error) {
	f, err := filter.Convert(s.schema, params)
	if err != nil {
		return nil, err
	}
	term := filter.ParseSearch(params.Query())
	s.log.Debug("search",
		zap.String("query", term.Query),
		zap.Bool("numeric", term.Number != nil),
		zap.Bool("boolean", term.Bool != nil),
	)
	return s.repo.Search(ctx, s.schema.SearchPlan(), term, f, s.schema.Populate())
}

func (s *resourceService[T]) EditRelation(ctx context.Context, id uint, values map[string]any) (*T, error) {
	if err := s.onlyAliases(values); err != nil {
		return nil, err
	}
	if _, err := s.Fetch(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRelations(ctx, id, values); err != nil {
		return nil, err
	}
	return s.Fetch(ctx, id)
}

func (s *resourceService[T]) AddRelation(ctx context.Context, id uint, values map[string]any) (*T, error) {
	return s.mutateRelations(ctx, id, values, true)
}

func (s *resourceService[T]) RemoveRelation(ctx context.Context, id uint, values map[string]any) (*T, error) {
	return s.mutateRelations(ctx, id, values, false)
}

// mutateRelations adds or removes the given identifiers against the current
// ones. Plural associations get the union or difference; a singular one is
// set to the last given identifier, or cleared when it holds a removed one.
func (s *resourceService[T]) mutateRelations(ctx context.Context, id uint, values map[string]any, add bool) (*T, error) {
	if err := s.onlyAliases(values); err != nil {
		return nil, err
	}
	if _, err := s.Fetch(ctx, id); err != nil {
		return nil, err
	}

	payload := make(map[string]any, len(values))
	for alias, v := range values {
		a, _ := s.schema.Association(alias)
		given, err := schema.NormalizeIDs(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.schema.Name, alias, err)
		}
		if len(given) == 0 {
			continue
		}
		if a.Nature.Singular() && add {
			payload[alias] = given[len(given)-1]
			continue
		}

		current, err := s.repo.RelatedIDs(ctx, id, alias)
		if err != nil {
			return nil, err
		}
		switch {
		case a.Nature.Plural() && add:
			payload[alias] = union(current, given)
		case a.Nature.Plural():
			payload[alias] = difference(current, given)
		case len(current) > 0 && len(difference(current, given)) == 0:
			payload[alias] = nil
		}
	}

	if err := s.repo.UpdateRelations(ctx, id, payload); err != nil {
		return nil, err
	}
	return s.Fetch(ctx, id)
}

func (s *resourceService[T]) onlyAliases(values map[string]any) error {
	for k := range values {
		if !s.schema.IsAlias(k) {
			return fmt.Errorf("%w: %s.%s is not a relation", schema.ErrUnknownField, s.schema.Name, k)
		}
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func union(current, given []uint) []uint {
	out := append([]uint{}, current...)
	seen := make(map[uint]struct{}, len(current))
	for _, id := range current {
		seen[id] = struct{}{}
	}
	for _, id := range given {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func difference(current, given []uint) []uint {
	drop := make(map[uint]struct{}, len(given))
	for _, id := range given {
		drop[id] = struct{}{}
	}
	out := make([]uint, 0, len(current))
	for _, id := range current {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
