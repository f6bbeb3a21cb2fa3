package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin/stdout are attached to a terminal,
// i.e. whether it's safe to launch an interactive huh prompt rather than
// requiring --value or piped stdin.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// PromptForValue interactively collects a JSON document value for `put`
// when the caller omitted --value and stdin isn't piped.
func PromptForValue(collection, key string) (string, error) {
	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("Value for %s/%s", collection, key)).
				Description("Enter a JSON document, e.g. {\"name\":\"alice\"}").
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("value must not be empty")
					}
					return nil
				}).
				Value(&value),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompting for value: %w", err)
	}
	return value, nil
}
