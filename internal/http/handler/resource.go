package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	"cmsapi/internal/filter"
	"cmsapi/internal/model"
	"cmsapi/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Find lists records. A non-empty _q switches to full-text search.
func Find[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := queryParams(c)
		var (
			out []T
			err error
		)
		if params.Query() != "" {
			out, err = svc.Search(c.UserContext(), params)
		} else {
			out, err = svc.FetchAll(c.UserContext(), params)
		}
		if err != nil {
			return err
		}
		if out == nil {
			out = []T{}
		}
		return c.JSON(out)
	}
}

// FindOne returns a record by id.
func FindOne[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		rec, err := svc.Fetch(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	}
}

// Count returns the number of records matching the filters.
func Count[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.Count(c.UserContext(), queryParams(c))
		if err != nil {
			return err
		}
		return c.JSON(n)
	}
}

func Create[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		values, err := bodyValues(c)
		if err != nil {
			return err
		}
		rec, err := svc.Add(c.UserContext(), values)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

func Update[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		values, err := bodyValues(c)
		if err != nil {
			return err
		}
		rec, err := svc.Edit(c.UserContext(), id, values)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	}
}

// Destroy deletes a record and responds with it as it was.
func Destroy[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		rec, err := svc.Remove(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	}
}

func relationHandler[T model.Entity](action func(c *fiber.Ctx, id uint, values map[string]any) (*T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		values, err := bodyValues(c)
		if err != nil {
			return err
		}
		rec, err := action(c, id, values)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	}
}

// CreateRelation links more related records.
func CreateRelation[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return relationHandler(func(c *fiber.Ctx, id uint, values map[string]any) (*T, error) {
		return svc.AddRelation(c.UserContext(), id, values)
	})
}

// UpdateRelation replaces related records.
func UpdateRelation[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return relationHandler(func(c *fiber.Ctx, id uint, values map[string]any) (*T, error) {
		return svc.EditRelation(c.UserContext(), id, values)
	})
}

// DestroyRelation unlinks related records.
func DestroyRelation[T model.Entity](svc service.ResourceService[T]) fiber.Handler {
	return relationHandler(func(c *fiber.Ctx, id uint, values map[string]any) (*T, error) {
		return svc.RemoveRelation(c.UserContext(), id, values)
	})
}

// queryParams keeps every value of repeated keys.
func queryParams(c *fiber.Ctx) filter.Params {
	params := filter.Params{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		params.Add(string(key), string(value))
	})
	return params
}

func pathID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// bodyValues decodes a JSON object body. An empty body is an empty object.
func bodyValues(c *fiber.Ctx) (map[string]any, error) {
	values := map[string]any{}
	body := c.Body()
	if len(body) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, errInvalidBody
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}
