// Package messages holds the user-facing texts of the agent.
package messages

import (
	"fmt"
	"strings"

	"github.com/aretw0/kinder/pkg/domain"
)

// Commands accepted in the final steps. Matching is case-insensitive.
const (
	CommandNext    = "next"
	CommandRestart = "restart"
)

// Catalog is the set of texts sent to users.
// Every field can be overridden from the configuration file.
type Catalog struct {
	GreetFirst string `yaml:"greet_first" mapstructure:"greet_first"`
	GreetAgain string `yaml:"greet_again" mapstructure:"greet_again"`

	AskAge    string `yaml:"ask_age" mapstructure:"ask_age"`
	AskGender string `yaml:"ask_gender" mapstructure:"ask_gender"`
	AskCity   string `yaml:"ask_city" mapstructure:"ask_city"`
	AskStatus string `yaml:"ask_status" mapstructure:"ask_status"`

	FirstBatch    string `yaml:"first_batch" mapstructure:"first_batch"`
	NextBatch     string `yaml:"next_batch" mapstructure:"next_batch"`
	FinalHint     string `yaml:"final_hint" mapstructure:"final_hint"`
	PageExhausted string `yaml:"page_exhausted" mapstructure:"page_exhausted"`
	NoMoreResults string `yaml:"no_more_results" mapstructure:"no_more_results"`

	InvalidInput  string `yaml:"invalid_input" mapstructure:"invalid_input"`
	TextOnly      string `yaml:"text_only" mapstructure:"text_only"`
	DirectoryDown string `yaml:"directory_down" mapstructure:"directory_down"`
	NotFound      string `yaml:"not_found" mapstructure:"not_found"`
	Internal      string `yaml:"internal" mapstructure:"internal"`
}

// Default returns the built-in English catalog.
func Default() Catalog {
	return Catalog{
		GreetFirst: "I am Kinder, a bot that finds interesting people.\nFollow the instructions and enter your search details.",
		GreetAgain: "Let's try to find your match again!",

		AskAge:    "Enter the age:",
		AskGender: "Enter the gender\n(1 - female, 2 - male):",
		AskCity:   "Enter the city ID\nExample: 1 - Moscow, 2 - Saint Petersburg, 158 - Vladivostok:",
		AskStatus: "Enter the relationship status:\n0 - not specified\n1 - single\n2 - in a relationship\n3 - engaged\n4 - married\n5 - it's complicated:",

		FirstBatch:    fmt.Sprintf("These people may interest you!\nSend %q for more profiles or %q to search again.", CommandNext, CommandRestart),
		NextBatch:     "Okay, here are more people:",
		FinalHint:     fmt.Sprintf("Send %q for more profiles or %q to search again.", CommandNext, CommandRestart),
		PageExhausted: fmt.Sprintf("No new people on this page. Send %q to keep looking.", CommandNext),
		NoMoreResults: fmt.Sprintf("There are no more profiles. Want another search? Send %q.", CommandRestart),

		InvalidInput:  "Invalid input. Please try again.",
		TextOnly:      "Only text messages are accepted.",
		DirectoryDown: "The search service is unavailable right now. Please try again later.",
		NotFound:      "No people found.",
		Internal:      "Something went wrong. Please start over.",
	}
}

// Merge returns c with every empty field taken from fallback.
func (c Catalog) Merge(fallback Catalog) Catalog {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	return Catalog{
		GreetFirst:    pick(c.GreetFirst, fallback.GreetFirst),
		GreetAgain:    pick(c.GreetAgain, fallback.GreetAgain),
		AskAge:        pick(c.AskAge, fallback.AskAge),
		AskGender:     pick(c.AskGender, fallback.AskGender),
		AskCity:       pick(c.AskCity, fallback.AskCity),
		AskStatus:     pick(c.AskStatus, fallback.AskStatus),
		FirstBatch:    pick(c.FirstBatch, fallback.FirstBatch),
		NextBatch:     pick(c.NextBatch, fallback.NextBatch),
		FinalHint:     pick(c.FinalHint, fallback.FinalHint),
		PageExhausted: pick(c.PageExhausted, fallback.PageExhausted),
		NoMoreResults: pick(c.NoMoreResults, fallback.NoMoreResults),
		InvalidInput:  pick(c.InvalidInput, fallback.InvalidInput),
		TextOnly:      pick(c.TextOnly, fallback.TextOnly),
		DirectoryDown: pick(c.DirectoryDown, fallback.DirectoryDown),
		NotFound:      pick(c.NotFound, fallback.NotFound),
		Internal:      pick(c.Internal, fallback.Internal),
	}
}

// Prompt returns the question asked while the user is at step.
func (c Catalog) Prompt(step domain.Step) string {
	switch step {
	case domain.StepNone, domain.StepAge:
		return c.AskAge
	case domain.StepGender:
		return c.AskGender
	case domain.StepCity:
		return c.AskCity
	case domain.StepStatus:
		return c.AskStatus
	case domain.StepFinal:
		return c.FinalHint
	case domain.StepAgain:
		return c.NoMoreResults
	}
	return c.Internal
}

// Invalid is the reply to a rejected input at step. It is identical for repeated failures.
func (c Catalog) Invalid(step domain.Step) string {
	return c.InvalidInput + "\n" + c.Prompt(step)
}

// Restarted is the reply to the global restart command.
func (c Catalog) Restarted() string {
	return c.GreetAgain + "\n" + c.AskAge
}

// IsCommand reports whether text is the given command, ignoring case and surrounding space.
func IsCommand(text, command string) bool {
	return strings.EqualFold(strings.TrimSpace(text), command)
}
