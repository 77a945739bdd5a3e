package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength     = 20
	maxRoomNameLength = 40
	maxChatLength     = 120
	maxLanguageLength = 16
	maxCanvasBytes    = 256 * 1024
	maxMessageBytes   = maxCanvasBytes + 4*1024
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("name", func(fl validator.FieldLevel) bool {
			_, err := validateName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("roomname", func(fl validator.FieldLevel) bool {
			_, err := validateRoomName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("chat", func(fl validator.FieldLevel) bool {
			_, err := validateChat(fl.Field().String())
			return err == nil
		})
	})
}

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validateRoomName(name string) (string, error) {
	return validateText("room name", name, maxRoomNameLength)
}

// validateChat only rejects control characters.
func validateChat(text string) (string, error) {
	return checkText("message", text, maxChatLength, hasNoControl)
}

func validateText(label, text string, maxLen int) (string, error) {
	return checkText(label, text, maxLen, isSafeText)
}

func checkText(label, text string, maxLen int, allowed func(string) bool) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len([]rune(trimmed)) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !allowed(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func hasNoControl(text string) bool {
	for _, r := range text {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}
