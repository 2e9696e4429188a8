package controller

import (
	"io"
	"sems_backend/internal/service"
	"sems_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// readUpload reads the multipart "file" field, checks its size and that it is an xlsx workbook.
func readUpload(ctx *gin.Context, maxMB int) (service.ImportUpload, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return service.ImportUpload{}, util.NewValidationError("file is required")
	}
	if maxMB > 0 && header.Size > int64(maxMB)<<20 {
		return service.ImportUpload{}, util.NewValidationError("file exceeds %d MB", maxMB)
	}

	f, err := header.Open()
	if err != nil {
		return service.ImportUpload{}, err
	}
	defer f.Close()

	reader, err := util.SniffSpreadsheet(f)
	if err != nil {
		return service.ImportUpload{}, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return service.ImportUpload{}, err
	}

	upload := service.ImportUpload{FileName: header.Filename, Data: data}
	if claims := util.GetUserFromContext(ctx); claims != nil {
		upload.UploadedBy = claims.UserID
	}
	return upload, nil
}
