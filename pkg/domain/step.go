package domain

import "fmt"

// Step is the position of a user in the criteria collection dialog.
type Step int

const (
	StepNone Step = iota // Session just created, nothing asked yet
	StepAge
	StepGender
	StepCity
	StepStatus
	StepFinal // Results delivered, waiting for "next" or "restart"
	StepAgain // Directory exhausted, waiting for "restart"
)

var stepNames = [...]string{
	StepNone:   "none",
	StepAge:    "age",
	StepGender: "gender",
	StepCity:   "city",
	StepStatus: "status",
	StepFinal:  "final",
	StepAgain:  "again",
}

// Steps returns every dialog step in declaration order.
func Steps() []Step {
	return []Step{StepNone, StepAge, StepGender, StepCity, StepStatus, StepFinal, StepAgain}
}

// String implements fmt.Stringer.
func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Valid reports whether s is one of the declared steps.
func (s Step) Valid() bool {
	return s >= StepNone && s <= StepAgain
}

// MarshalText implements encoding.TextMarshaler so sessions serialize with readable steps.
func (s Step) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid step %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Step) UnmarshalText(text []byte) error {
	step, err := ParseStep(string(text))
	if err != nil {
		return err
	}
	*s = step
	return nil
}

// ParseStep converts a step name back into a Step.
func ParseStep(name string) (Step, error) {
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return StepNone, fmt.Errorf("unknown step %q", name)
}
