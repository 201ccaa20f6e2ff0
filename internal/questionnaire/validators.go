package questionnaire

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxDescriptionLength = 80

// Step validators. Each takes the raw user input and returns the value to
// store, or an error whose message is shown to the user as-is.

func ValidateNonEmpty(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("the answer cannot be empty, please try again")
	}
	return trimmed, nil
}

func ValidateDescription(raw string) (string, error) {
	trimmed, err := ValidateNonEmpty(raw)
	if err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(trimmed); n > maxDescriptionLength {
		return "", fmt.Errorf("description is too long: %d characters (maximum %d)", n, maxDescriptionLength)
	}
	return trimmed, nil
}

// ValidateTicker checks only the '$' prefix and total length. Uppercase is
// requested by the prompt but not enforced.
func ValidateTicker(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "$") || utf8.RuneCountInString(trimmed) > 6 {
		return "", fmt.Errorf("invalid ticker format, must start with '$' and be up to 5 characters long in uppercase 💔")
	}
	if trimmed == "$" {
		return "", fmt.Errorf("invalid ticker format, must start with '$' and be up to 5 characters long in uppercase 💔")
	}
	return trimmed, nil
}

func ValidateLink(raw string) (string, error) {
	trimmed, err := ValidateNonEmpty(raw)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return "", fmt.Errorf("please send a full link starting with http:// or https://")
	}
	return trimmed, nil
}

// fdvMillions parses an FDV choice value like "$25M" into 25. Returns -1
// for values that do not look like FDV choices.
func fdvMillions(value string) int {
	v := strings.TrimSuffix(strings.TrimPrefix(value, "$"), "M")
	if v == value {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
