package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type bindMessages map[string]map[string]string

func bindQuery(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": resolveBindError(err, messages, fallback)})
		return false
	}
	return true
}

// validateMessage runs the binding tags of an inbound websocket payload through
// the same validator gin uses for HTTP requests.
func validateMessage(req any, messages bindMessages, fallback string) error {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return errors.New(resolveBindError(err, messages, fallback))
	}
	return nil
}

func resolveBindError(err error, messages bindMessages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if fieldMsgs, ok := messages[verr.Field()]; ok {
				if msg, ok := fieldMsgs[verr.Tag()]; ok {
					return msg
				}
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "invalid request"
}
