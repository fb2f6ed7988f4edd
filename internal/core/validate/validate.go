// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// Title validates a todo title is non-empty after trimming whitespace.
func Title(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

// TitleField returns a criterio validator for todo titles.
func TitleField(field, title string) error {
	return criterio.Run(field, title, Title)
}
