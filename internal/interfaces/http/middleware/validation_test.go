package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablekit/backoffice/internal/interfaces/http/dto"
)

type lineInput struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type ticketInput struct {
	Status string      `json:"status" binding:"required,oneof=pending preparing"`
	Notes  string      `json:"notes" binding:"max=5"`
	Items  []lineInput `json:"items" binding:"required,min=1,dive"`
}

func bindTicket(body string) []dto.ValidationDetail {
	SetupValidator()

	var details []dto.ValidationDetail
	router := gin.New()
	router.POST("/x", func(c *gin.Context) {
		var in ticketInput
		details = ValidationDetails(c.ShouldBindJSON(&in))
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)
	return details
}

func detailFor(details []dto.ValidationDetail, field string) string {
	for _, d := range details {
		if d.Field == field {
			return d.Message
		}
	}
	return ""
}

func TestValidationDetails_UsesJSONNames(t *testing.T) {
	details := bindTicket(`{"status":"served","notes":"far too long","items":[{"quantity":0}]}`)

	require.Len(t, details, 3)
	assert.Equal(t, "Must be one of: pending preparing", detailFor(details, "status"))
	assert.Equal(t, "Must be at most 5 characters", detailFor(details, "notes"))
	assert.Equal(t, "This field is required", detailFor(details, "items[0].quantity"))
}

func TestValidationDetails_EmptySlice(t *testing.T) {
	details := bindTicket(`{"status":"pending","items":[]}`)

	require.Len(t, details, 1)
	assert.Equal(t, "Must contain at least 1 entries", detailFor(details, "items"))
}

func TestValidationDetails_NotAValidatorError(t *testing.T) {
	assert.Nil(t, ValidationDetails(nil))
	assert.Nil(t, bindTicket(`{"status":`))
}
