package cli

import (
	"errors"

	"github.com/manifoldco/promptui"
)

func promptForUsername() (string, error) {
	prompt := promptui.Prompt{
		Label:     "Username:",
		Templates: promptTemplates(),
		Validate:  required("please enter a username"),
	}
	return prompt.Run()
}

func promptForPassword() (string, error) {
	prompt := promptui.Prompt{
		Label:     "Password:",
		Templates: promptTemplates(),
		Mask:      rune('•'),
		Validate:  required("please enter a password"),
	}
	return prompt.Run()
}

func promptTemplates() *promptui.PromptTemplates {
	return &promptui.PromptTemplates{
		Prompt:  "{{ . | bold }} ",
		Valid:   "{{ . | green }} ",
		Invalid: "{{ . | red }} ",
		Success: "{{ . | bold }} ",
	}
}

func required(msg string) promptui.ValidateFunc {
	return func(input string) error {
		if input == "" {
			return errors.New(msg)
		}
		return nil
	}
}
