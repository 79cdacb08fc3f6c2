package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/FeeFox/internal/pkg/importer"
	"github.com/ManuelReschke/FeeFox/internal/pkg/usercontext"
)

// HandleImport bulk imports profiles from a multipart CSV or XLSX upload. Admin only.
func (bc *BillingController) HandleImport(c *fiber.Ctx) error {
	fh, err := c.FormFile(FormFieldImportFile)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, ErrCodeBadRequest, "multipart field 'file' is required")
	}

	f, err := fh.Open()
	if err != nil {
		return handleServiceError(c, "Import", err)
	}
	defer f.Close()

	rows, err := importer.Parse(f, fh.Filename)
	if err != nil {
		if errors.Is(err, importer.ErrUnsupportedFormat) || errors.Is(err, importer.ErrEmptyFile) || errors.Is(err, importer.ErrTooManyRows) {
			return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		}
		return jsonError(c, fiber.StatusUnprocessableEntity, ErrCodeValidation, "file could not be parsed: "+err.Error())
	}

	generate := false
	switch c.FormValue(FormFieldGenerateMonthly) {
	case "1", "true", "on", "yes":
		generate = true
	}

	res, err := bc.svc.ImportProfiles(c.UserContext(), rows, generate)
	if err != nil {
		return handleServiceError(c, "Import", err)
	}
	bc.changed()

	log.Infof("[Import] %s imported by user %d: %d created, %d updated", fh.Filename, usercontext.GetUserID(c), res.Created, res.Updated)
	return c.JSON(res)
}
