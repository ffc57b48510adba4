package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garagedesk/garagedesk/pkg/apperror"
)

// Page is the list envelope every paginated endpoint returns.
type Page struct {
	Data        any   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// Error writes the standardized error response for err.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// Data wraps a single resource under the data key.
func Data(c *gin.Context, code int, resource any) {
	c.JSON(code, gin.H{"data": resource})
}

// Message is the envelope for mutating operations: a message plus the
// affected resource. Pass nil to omit the resource.
func Message(c *gin.Context, code int, message string, resource any) {
	if resource == nil {
		c.JSON(code, gin.H{"message": message})
		return
	}
	c.JSON(code, gin.H{"message": message, "data": resource})
}
