package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"cmsapi/internal/service"
)

// UploadFile streams a multipart file (field name: file) to object storage.
// The optional ref, refId and field form values attach it to a resource.
func UploadFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		var ref *service.UploadRef
		if res := c.FormValue("ref"); res != "" {
			refID, err := strconv.ParseUint(c.FormValue("refId"), 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid refId")
			}
			ref = &service.UploadRef{Resource: res, ID: uint(refID), Field: c.FormValue("field")}
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		file, err := svc.Upload(c.UserContext(), service.UploadInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Ref:         ref,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(file)
	}
}

// ListFiles lists files with limit & offset, optionally narrowed to the
// files of one resource row or field.
func ListFiles(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		var relatedID uint
		if raw := c.Query("related_id"); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return errInvalidID
			}
			relatedID = uint(n)
		}

		res, err := svc.List(c.UserContext(), service.FileListQuery{
			Limit:       limit,
			Offset:      offset,
			RelatedType: c.Query("related_type"),
			RelatedID:   relatedID,
			Field:       c.Query("field"),
		})
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GetFile returns file metadata with a presigned download URL.
func GetFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		f, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(f)
	}
}

// DownloadFile streams the stored object.
func DownloadFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		rc, f, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return err
		}
		c.Attachment(f.Name)
		if f.Mime != "" {
			c.Set(fiber.HeaderContentType, f.Mime)
		}
		// fasthttp closes rc once the body is written
		size := int(f.Size)
		if size <= 0 {
			size = -1
		}
		return c.SendStream(rc, size)
	}
}

func DeleteFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
