package util

import (
	"errors"
	"net/http"
	"sems_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

// MessageResponse is returned by endpoints that have nothing else to say.
type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// PageResponse wraps paginated lists.
type PageResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Pages int64       `json:"pages"`
}

func NewPageResponse(items interface{}, total int64, page, limit int) PageResponse {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return PageResponse{Items: items, Total: total, Page: page, Limit: limit, Pages: pages}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorResponse{Error: message})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "authentication required")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "you do not have permission to access this resource")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "unexpected server error")
}

// HandleError writes the response for err and aborts the request.
func HandleError(c *gin.Context, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("Internal server error",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
}

// BindError renders a gin binding failure as a 400.
func BindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: ValidationMessage(err)})
}

func classify(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Kind.Status(), appErr.Message
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, "resource not found"
	}
	if isDuplicateKey(err) {
		return http.StatusConflict, "record already exists (duplicate value)"
	}
	if isForeignKeyViolation(err) {
		return http.StatusBadRequest, "invalid reference: related record does not exist or is still in use"
	}
	return http.StatusInternalServerError, "unexpected server error"
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1451 || myErr.Number == 1452
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// ValidationMessage flattens validator errors into "field: rule" pairs.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				parts = append(parts, fe.Field()+" is required")
			case "min", "gte":
				parts = append(parts, fe.Field()+" must be at least "+fe.Param())
			case "max", "lte":
				parts = append(parts, fe.Field()+" must be at most "+fe.Param())
			default:
				parts = append(parts, fe.Field()+" is invalid ("+fe.Tag()+")")
			}
		}
		return "validation failed: " + strings.Join(parts, ", ")
	}
	return "invalid request body: " + err.Error()
}
